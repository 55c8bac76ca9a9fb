package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/h2non/filetype"
)

// ErrUnsupportedSource is returned for sources that cannot be fetched as a
// plain video file, such as video-hosting page links.
var ErrUnsupportedSource = errors.New("unsupported_source")

var hostedVideoDomains = []string{"youtube.com", "youtu.be"}

// sniffLen is enough header bytes for filetype to recognise containers.
const sniffLen = 262

func isHostedVideoPage(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range hostedVideoDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Downloader fetches source videos into a working directory.
type Downloader struct {
	client *http.Client
	dir    string
}

func NewDownloader(client *http.Client, dir string) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client, dir: dir}
}

// Download stores the video at rawURL in a temp file and returns its path.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	if isHostedVideoPage(rawURL) {
		return "", fmt.Errorf("%s: hosted video pages need a direct file URL: %w", rawURL, ErrUnsupportedSource)
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%s: not an http(s) URL: %w", rawURL, ErrUnsupportedSource)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}

	f, err := os.CreateTemp(d.dir, "video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create temp video: %w", err)
	}
	path := f.Name()
	fail := func(err error) (string, error) {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fail(fmt.Errorf("download %s: %w", rawURL, err))
	}
	head = head[:n]
	if !filetype.IsVideo(head) {
		kind, _ := filetype.Match(head)
		return fail(fmt.Errorf("%s: content is %q, not video: %w", rawURL, kind.MIME.Value, ErrUnsupportedSource))
	}
	if _, err := f.Write(head); err != nil {
		return fail(fmt.Errorf("write temp video: %w", err))
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fail(fmt.Errorf("download %s: %w", rawURL, err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close temp video: %w", err)
	}
	return path, nil
}
