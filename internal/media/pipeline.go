package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Uploader stores a finished clip and returns its public URL and key.
type Uploader interface {
	UploadClip(ctx context.Context, path, userID string, clipID int64) (url, key string, err error)
}

// Request describes one render of a clip.
type Request struct {
	VideoURL      string
	StartTime     int
	EndTime       int
	Title         string
	Description   string
	UserID        string
	ClipID        int64
	WithSubtitles bool
}

// Result is the uploaded clip.
type Result struct {
	URL      string
	Key      string
	Duration int
}

// Processor runs download, trim, optional captioning and upload.
type Processor struct {
	ffmpeg     *FFmpeg
	downloader *Downloader
	uploader   Uploader
	workDir    string
	logger     zerolog.Logger
}

func NewProcessor(ff *FFmpeg, dl *Downloader, up Uploader, workDir string, logger zerolog.Logger) *Processor {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Processor{
		ffmpeg:     ff,
		downloader: dl,
		uploader:   up,
		workDir:    workDir,
		logger:     logger.With().Str("service", "MediaProcessor").Logger(),
	}
}

// ClampWindow fits [start, end) inside a source of sourceDuration seconds.
func ClampWindow(start, end, sourceDuration int) (int, int, error) {
	if sourceDuration < 1 {
		return 0, 0, errors.New("source video is shorter than one second")
	}
	start = max(0, min(start, sourceDuration-1))
	end = min(end, sourceDuration)
	if end <= start {
		end = start + 1
	}
	return start, end, nil
}

// Process renders the clip described by req. Temporary files are always
// removed, even on failure.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	var temps []string
	defer func() { p.Cleanup(temps) }()

	log := p.logger.With().Int64("clip_id", req.ClipID).Logger()

	log.Debug().Msg("Downloading source video")
	source, err := p.downloader.Download(ctx, req.VideoURL)
	if err != nil {
		return nil, err
	}
	temps = append(temps, source)

	duration, err := p.ffmpeg.ProbeDuration(ctx, source)
	if err != nil {
		return nil, err
	}
	start, end, err := ClampWindow(req.StartTime, req.EndTime, duration)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("start", start).Int("end", end).Int("source_duration", duration).Msg("Trimming clip")
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	clipped := filepath.Join(p.workDir, fmt.Sprintf("clip-%d-%s.mp4", req.ClipID, base))
	temps = append(temps, clipped)
	if err := p.ffmpeg.Trim(ctx, source, start, end, clipped); err != nil {
		return nil, err
	}

	final := clipped
	if req.WithSubtitles {
		// The description cue runs to the end of the source, not the clip.
		captions, err := WriteCaptionTrack(p.workDir, req.Title, req.Description, duration)
		if err != nil {
			return nil, err
		}
		temps = append(temps, captions)

		final = filepath.Join(p.workDir, fmt.Sprintf("clip-with-subtitles-%d-%s.mp4", req.ClipID, base))
		temps = append(temps, final)
		if err := p.ffmpeg.EmbedCaptions(ctx, clipped, captions, final); err != nil {
			return nil, err
		}
	}

	log.Debug().Msg("Uploading clip")
	url, key, err := p.uploader.UploadClip(ctx, final, req.UserID, req.ClipID)
	if err != nil {
		return nil, err
	}
	return &Result{URL: url, Key: key, Duration: end - start}, nil
}

// Cleanup removes paths, logging and swallowing failures.
func (p *Processor) Cleanup(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn().Err(err).Str("path", path).Msg("Failed to delete temp file")
		}
	}
}
