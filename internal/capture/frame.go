package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoVideo is returned when a frame is requested without a video source.
var ErrNoVideo = errors.New("no video source attached")

// FrameSampler grabs a single still image at a playback position.
type FrameSampler interface {
	SampleFrame(ctx context.Context, video string, position float64) ([]byte, error)
}

// FFmpegSampler extracts JPEG frames with ffmpeg.
type FFmpegSampler struct {
	Binary string
	// Quality is the mjpeg qscale, 2 (best) to 31 (worst).
	Quality int
}

// NewFFmpegSampler returns a sampler using binary (default "ffmpeg").
func NewFFmpegSampler(binary string, quality int) *FFmpegSampler {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if quality < 2 || quality > 31 {
		quality = 4
	}
	return &FFmpegSampler{Binary: binary, Quality: quality}
}

// SampleFrame seeks to position and returns one JPEG-encoded frame.
func (s *FFmpegSampler) SampleFrame(ctx context.Context, video string, position float64) ([]byte, error) {
	video = strings.TrimSpace(video)
	if video == "" {
		return nil, ErrNoVideo
	}
	if position < 0 {
		position = 0
	}

	cmd := exec.CommandContext(ctx, s.Binary, s.args(video, position)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	frame := stdout.Bytes()
	if !isJPEG(frame) {
		return nil, fmt.Errorf("ffmpeg frame: output is not a JPEG (%d bytes)", len(frame))
	}
	return frame, nil
}

func (s *FFmpegSampler) args(video string, position float64) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(position, 'f', 3, 64),
		"-i", video,
		"-frames:v", "1",
		"-q:v", strconv.Itoa(s.Quality),
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	}
}

func isJPEG(data []byte) bool {
	return len(data) >= 4 && data[0] == 0xFF && data[1] == 0xD8
}
