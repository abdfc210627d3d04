package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"factwatch/internal/config"
	"factwatch/internal/deps"
	"factwatch/internal/factcheck"
	"factwatch/internal/services/gemini"
)

// CheckGeminiKey reports whether an API key is configured without calling the API.
func CheckGeminiKey(cfg *config.Config) Result {
	const name = "Gemini API key"
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return Result{Name: name, Detail: "missing (set gemini.api_key or GEMINI_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckGemini verifies that the Gemini API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt.
func CheckGemini(ctx context.Context, cfg *config.Config) Result {
	const name = "Gemini API"
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := gemini.FromConfig(cfg)
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeGeminiError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%s)", client.Model())}
}

// CheckFFmpeg reports whether frame capture can run.
func CheckFFmpeg(cfg *config.Config) Result {
	status := deps.ResolveFFmpeg(cfg.Capture.FFmpegBinary, cfg.Capture.Frames)
	switch {
	case status.Available:
		return Result{Name: status.Name, Passed: true, Detail: status.Command}
	case status.Optional:
		return Result{Name: status.Name, Passed: true, Detail: status.Detail}
	default:
		return Result{Name: status.Name, Detail: status.Detail}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeGeminiError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (Gemini API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (Gemini API unreachable)"
	}
	var transErr *factcheck.TransportError
	if errors.As(err, &transErr) && transErr.StatusCode != 0 {
		return fmt.Sprintf("request failed (%d): %s", transErr.StatusCode, factcheck.ErrorHint(err))
	}
	return err.Error()
}
