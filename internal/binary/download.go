package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "voorhees-action"
)

// Downloader fetches release assets over HTTP. Every call is a single
// attempt; failures are returned to the caller as is.
type Downloader struct {
	client    *http.Client
	userAgent string
	tempDir   string
	progress  bool
}

// DownloaderOption customizes a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) {
		if c != nil {
			d.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) DownloaderOption {
	return func(d *Downloader) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// WithTempDir sets the directory DownloadTool writes into.
func WithTempDir(dir string) DownloaderOption {
	return func(d *Downloader) {
		if dir != "" {
			d.tempDir = dir
		}
	}
}

// WithProgress forces the progress bar on or off. By default it is shown
// only when stderr is a terminal.
func WithProgress(enabled bool) DownloaderOption {
	return func(d *Downloader) {
		d.progress = enabled
	}
}

// NewDownloader creates a new downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// release assets redirect to object storage
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		tempDir:   DefaultTempDir(),
		progress:  isTerminal(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultTempDir returns $RUNNER_TEMP when running on a hosted runner and
// the system temp directory otherwise.
func DefaultTempDir() string {
	if dir := os.Getenv("RUNNER_TEMP"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// DownloadTool downloads url into a new uuid-named file under the temp
// directory and returns its path.
func (d *Downloader) DownloadTool(ctx context.Context, url string) (string, error) {
	dest := filepath.Join(d.tempDir, uuid.NewString())
	if err := d.DownloadToFile(ctx, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// DownloadToFile downloads a URL to a specific file path. The body is
// written to destPath+".tmp" and renamed once complete.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrTransport, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned unexpected status code: %d", ErrTransport, url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("%w: create dest dir: %w", ErrTransport, err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrTransport, err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	body, finish := d.wrapProgress(resp.Body, resp.ContentLength)
	_, err = io.Copy(tmpFile, body)
	finish()
	if err != nil {
		return fmt.Errorf("%w: copy response body: %w", ErrTransport, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", ErrTransport, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("%w: rename temp file: %w", ErrTransport, err)
	}

	cleanupNeeded = false
	return nil
}

// wrapProgress wraps reader with a progress bar when enabled. The returned
// function finalizes the bar.
func (d *Downloader) wrapProgress(reader io.Reader, size int64) (io.Reader, func()) {
	if !d.progress {
		return reader, func() {}
	}

	bar := pb.
		New64(size).
		SetTemplate(
			pb.ProgressBarTemplate(
				color.New(color.FgHiBlack).Sprint(
					`   └ {{counters . }} {{bar . "[" "=" ">" " " "]" }} {{percent . }} {{speed . }}`,
				),
			),
		).
		SetWriter(os.Stderr).
		SetRefreshRate(time.Second / 30).
		SetMaxWidth(100).
		Start()

	return bar.NewProxyReader(reader), func() { bar.Finish() }
}

func isTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// fileExists checks if a file exists and is not empty
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
