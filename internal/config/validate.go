package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate ensures the configuration is usable.
//
// A missing Gemini API key is not a validation error: the daemon still runs
// and every verification attempt fails with a configuration error until a
// key is supplied.
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"overlay.max_entries": c.Overlay.MaxEntries,
		"history.capacity":    c.History.Capacity,
	})
}

func (c *Config) validateGemini() error {
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return errors.New("gemini.temperature must be between 0 and 2")
	}
	if c.Gemini.TopP < 0 || c.Gemini.TopP > 1 {
		return errors.New("gemini.top_p must be between 0 and 1")
	}
	if c.Gemini.TopK < 0 {
		return errors.New("gemini.top_k must not be negative")
	}
	if c.Gemini.RequestsPerMinute < 0 {
		return errors.New("gemini.requests_per_minute must not be negative")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.IntervalMillis < 250 {
		return errors.New("monitor.interval_ms must be at least 250")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.FrameQuality < 2 || c.Capture.FrameQuality > 31 {
		return errors.New("capture.frame_quality must be between 2 and 31")
	}
	if c.Capture.CaptionWindowSeconds <= 0 {
		return errors.New("capture.caption_window_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
