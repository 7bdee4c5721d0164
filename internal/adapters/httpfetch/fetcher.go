package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/ports"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "stylebook/1.0"
	// DefaultMaxBytes caps catalog documents and downloaded assets
	DefaultMaxBytes = 64 * 1024 * 1024
	// DefaultAttempts counts the first request, so by default nothing is
	// retried
	DefaultAttempts   = 1
	DefaultRetryDelay = 250 * time.Millisecond
)

// statusError is a non-200 HTTP response
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.code, e.url)
}

// transient reports whether a later attempt might succeed: network
// failures, 5xx and 429
func transient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// Fetcher implements ports.CatalogFetcher over HTTP(S). file:// URLs and
// plain paths are read from the local filesystem so local profiles work too.
type Fetcher struct {
	client     *http.Client
	fs         afero.Fs
	userAgent  string
	maxBytes   int64
	attempts   uint
	retryDelay time.Duration
}

// Ensure Fetcher implements CatalogFetcher
var _ ports.CatalogFetcher = (*Fetcher)(nil)

// Option configures a Fetcher
type Option func(*Fetcher)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithClient replaces the HTTP client
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithFs replaces the filesystem used for local paths
func WithFs(fs afero.Fs) Option {
	return func(f *Fetcher) { f.fs = fs }
}

// WithMaxBytes sets the response size limit
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithRetry sets how many times a request is attempted and the base delay
// between attempts. attempts below 1 means a single attempt.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(f *Fetcher) {
		f.attempts = uint(max(attempts, 1))
		f.retryDelay = delay
	}
}

// New creates a Fetcher
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:     &http.Client{Timeout: DefaultTimeout},
		fs:         afero.NewOsFs(),
		userAgent:  DefaultUserAgent,
		maxBytes:   DefaultMaxBytes,
		attempts:   DefaultAttempts,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, u.String())
	case "file":
		return f.readLocal(u.Path)
	case "":
		return f.readLocal(rawURL)
	default:
		return nil, errors.Errorf("unsupported scheme: %s", u.Scheme)
	}
}

// fetchHTTP GETs rawURL, retrying network errors, 5xx and 429 responses
// with backoff. Other statuses fail at once.
func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	log := zerolog.Ctx(ctx)
	start := time.Now()

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			body, err := f.get(ctx, rawURL)
			if err != nil && !transient(ctx, err) {
				return nil, retry.Unrecoverable(err)
			}
			return body, err
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Str("url", rawURL).Uint("attempt", n+1).Msg("fetch failed, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("url", rawURL).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("fetched")
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithStack(&statusError{code: resp.StatusCode, url: rawURL})
	}
	return f.readLimited(resp.Body)
}

func (f *Fetcher) readLocal(path string) ([]byte, error) {
	if strings.HasPrefix(path, "~") {
		path = expandHome(path)
	}
	file, err := f.fs.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Errorf("open: %w", err)
	}
	defer file.Close()
	return f.readLimited(file)
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, errors.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, errors.Errorf("response exceeds %d bytes", f.maxBytes)
	}
	return body, nil
}

func expandHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
