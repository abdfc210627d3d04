package config

const (
	defaultStateDir             = "~/.local/share/factwatch"
	defaultLogDir               = "~/.local/share/factwatch/logs"
	defaultAPIBind              = "127.0.0.1:7488"
	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel          = "gemini-2.0-flash"
	defaultGeminiTimeoutSeconds = 30
	defaultGeminiTemperature    = 0.2
	defaultGeminiTopP           = 0.8
	defaultGeminiTopK           = 40
	defaultMonitorIntervalMS    = 5000
	defaultFFmpegBinary         = "ffmpeg"
	defaultFrameQuality         = 4
	defaultCaptionWindowSeconds = 10
	defaultCaptionSegments      = 3
	defaultOverlayMaxEntries    = 5
	defaultHistoryCapacity      = 100
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
			Temperature:    defaultGeminiTemperature,
			TopP:           defaultGeminiTopP,
			TopK:           defaultGeminiTopK,
		},
		Monitor: Monitor{
			IntervalMillis:        defaultMonitorIntervalMS,
			SkipUnchangedCaptions: true,
		},
		Capture: Capture{
			Frames:               true,
			FFmpegBinary:         defaultFFmpegBinary,
			FrameQuality:         defaultFrameQuality,
			CaptionWindowSeconds: defaultCaptionWindowSeconds,
			CaptionSegments:      defaultCaptionSegments,
		},
		Overlay: Overlay{
			MaxEntries: defaultOverlayMaxEntries,
		},
		History: History{
			Capacity: defaultHistoryCapacity,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
