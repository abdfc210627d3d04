package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Gemini contains configuration for the remote claim-verification API.
type Gemini struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
	TopP           float64 `toml:"top_p"`
	TopK           int     `toml:"top_k"`
	// RequestsPerMinute caps outbound verification calls. Zero disables the cap.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// Monitor contains configuration for the playback poll loop.
type Monitor struct {
	IntervalMillis        int  `toml:"interval_ms"`
	SkipUnchangedCaptions bool `toml:"skip_unchanged_captions"`
}

// Capture contains configuration for frame sampling and caption reading.
type Capture struct {
	// Frames controls whether a still frame accompanies each caption sample.
	// Disable for text-only polling.
	Frames               bool   `toml:"frames"`
	FFmpegBinary         string `toml:"ffmpeg_binary"`
	FrameQuality         int    `toml:"frame_quality"`
	CaptionWindowSeconds int    `toml:"caption_window_seconds"`
	CaptionSegments      int    `toml:"caption_segments"`
}

// Overlay contains configuration for the floating results panel.
type Overlay struct {
	MaxEntries int `toml:"max_entries"`
}

// History contains configuration for the in-memory result history.
type History struct {
	Capacity int `toml:"capacity"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for factwatch.
//
// Configuration sections by subsystem:
//   - Paths: state/log directories and API bind address
//   - Gemini: verification API credentials and generation settings
//   - Monitor: poll interval and duplicate-caption suppression
//   - Capture: ffmpeg frame sampling and caption look-back
//   - Overlay: panel size
//   - History: aggregator capacity
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Gemini  Gemini  `toml:"gemini"`
	Monitor Monitor `toml:"monitor"`
	Capture Capture `toml:"capture"`
	Overlay Overlay `toml:"overlay"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/factwatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("factwatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SettingsDBPath returns the SQLite database holding persisted toggles.
func (c *Config) SettingsDBPath() string {
	return filepath.Join(c.Paths.StateDir, "factwatch.db")
}

// SocketPath returns the IPC socket the daemon listens on.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "factwatch.sock")
}

// LockPath returns the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "factwatchd.lock")
}

// PollInterval returns the monitor period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalMillis) * time.Millisecond
}

// CaptionWindow returns the caption look-back window as a duration.
func (c *Config) CaptionWindow() time.Duration {
	return time.Duration(c.Capture.CaptionWindowSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// GeminiConfig contains the verification client settings in the shape the
// client package expects.
type GeminiConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	TimeoutSeconds    int
	Temperature       float64
	TopP              float64
	TopK              int
	RequestsPerMinute int
}

// GetGemini returns the trimmed verification client settings.
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:            strings.TrimSpace(c.Gemini.APIKey),
		BaseURL:           strings.TrimSpace(c.Gemini.BaseURL),
		Model:             strings.TrimSpace(c.Gemini.Model),
		TimeoutSeconds:    c.Gemini.TimeoutSeconds,
		Temperature:       c.Gemini.Temperature,
		TopP:              c.Gemini.TopP,
		TopK:              c.Gemini.TopK,
		RequestsPerMinute: c.Gemini.RequestsPerMinute,
	}
}
