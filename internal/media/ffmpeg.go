package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

// Runner executes an external media command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// FFmpeg wraps the ffmpeg and ffprobe binaries. Every invocation holds one
// slot of a shared semaphore and is cancelled after the configured timeout.
type FFmpeg struct {
	ffmpeg  string
	ffprobe string
	timeout time.Duration
	sem     *semaphore.Weighted
	runner  Runner
}

func NewFFmpeg(ffmpegPath, ffprobePath string, timeout time.Duration, maxConcurrency int64) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &FFmpeg{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		timeout: timeout,
		sem:     semaphore.NewWeighted(maxConcurrency),
		runner:  execRunner{},
	}
}

func (f *FFmpeg) run(ctx context.Context, what, bin string, args ...string) ([]byte, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%s: waiting for media slot: %w", what, err)
	}
	defer f.sem.Release(1)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	b, err := f.runner.Run(ctx, bin, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return b, fmt.Errorf("%s: timed out after %s", what, f.timeout)
		}
		return b, fmt.Errorf("%s: %w\n%s", what, err, string(b))
	}
	return b, nil
}

// ProbeDuration returns the container duration in whole seconds, rounded down.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (int, error) {
	b, err := f.run(ctx, "ffprobe duration", f.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	if s == "" || s == "N/A" {
		return 0, nil
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return int(math.Floor(sec)), nil
}

// Trim cuts [start, end) seconds of in into out. Callers clamp the window
// against the probed duration first.
func (f *FFmpeg) Trim(ctx context.Context, in string, start, end int, out string) error {
	if end <= start {
		return fmt.Errorf("trim: empty window %d-%d", start, end)
	}
	_, err := f.run(ctx, "ffmpeg trim", f.ffmpeg,
		"-y",
		"-ss", strconv.Itoa(start),
		"-i", in,
		"-t", strconv.Itoa(end-start),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		"-movflags", "+faststart",
		out,
	)
	return err
}

// EmbedCaptions muxes an SRT track into video without re-encoding.
func (f *FFmpeg) EmbedCaptions(ctx context.Context, video, captions, out string) error {
	_, err := f.run(ctx, "ffmpeg embed captions", f.ffmpeg,
		"-y",
		"-i", video,
		"-i", captions,
		"-map", "0",
		"-map", "1",
		"-c:v", "copy",
		"-c:a", "copy",
		"-c:s", "mov_text",
		"-metadata:s:s:0", "language=eng",
		out,
	)
	return err
}
