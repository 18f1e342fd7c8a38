package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/metrics"
)

// Source is the raw content of one input, named after its file or URL path.
type Source struct {
	// Location is the path or URL the source was read from.
	Location string
	// Name is the base file name, used to pick the decoder.
	Name string
	Data []byte
}

// ErrSourceTooLarge is returned when a source exceeds the configured byte limit.
var ErrSourceTooLarge = errors.New("source exceeds size limit")

// Client retrieves tabular sources from the local filesystem or over HTTP.
type Client interface {
	Fetch(ctx context.Context, location string) (*Source, error)
}

type client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	retry      retrypolicy.RetryPolicy[[]byte]
}

// NewClient creates a new client with proxy, timeout and retry settings taken from cfg.
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()

	timeout := parseDuration(cfg.ClientTimeout, 30*time.Second, "client_timeout")
	backoff := parseDuration(cfg.Fetch.Backoff, 500*time.Millisecond, "fetch.backoff")

	// Clone DefaultTransport to keep its pooling and HTTP/2 settings.
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newCompressionTransport(baseTransport),
		},
		userAgent: userAgent,
		maxBytes:  cfg.Ingest.MaxBytes,
		retry:     newRetryPolicy(cfg.Fetch.Retries, backoff),
	}
}

func parseDuration(raw string, fallback time.Duration, key string) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str(key, raw).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

func newRetryPolicy(retries int, backoff time.Duration) retrypolicy.RetryPolicy[[]byte] {
	if retries < 0 {
		retries = 0
	}
	return retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool { return isRetryable(err) }).
		WithMaxRetries(retries).
		WithBackoff(backoff, backoff*8).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[[]byte]) {
			logger := config.GetLogger()
			logger.Warn().Err(e.LastError()).Int("attempt", e.Attempts()).Msg("Retrying source download")
		}).
		Build()
}

// isRetryable treats transport failures and 408/429/5xx answers as transient.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrSourceTooLarge) {
		return false
	}
	var statusErr *ErrHTTPStatus
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch reads the full content of a local path or http(s) URL.
func (c *client) Fetch(ctx context.Context, location string) (*Source, error) {
	logger := config.GetLogger()
	start := time.Now()

	var (
		name string
		data []byte
		err  error
	)
	if IsRemote(location) {
		name = remoteName(location)
		data, err = failsafe.With(c.retry).WithContext(ctx).Get(func() ([]byte, error) {
			return c.download(ctx, location)
		})
	} else {
		name = filepath.Base(location)
		data, err = c.readFile(location)
	}
	if err != nil {
		logger.Error().Err(err).Str("source", location).Msg("Failed to fetch source")
		return nil, err
	}

	metrics.SourceBytes.Observe(float64(len(data)))
	logger.Debug().
		Str("source", location).
		Int("size", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched source")

	return &Source{Location: location, Name: name, Data: data}, nil
}

func (c *client) download(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPStatusError(location, resp.StatusCode)
	}
	return c.readLimited(resp.Body)
}

// readFile closes the handle as soon as the content is read.
func (c *client) readFile(location string) ([]byte, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.readLimited(f)
}

func (c *client) readLimited(r io.Reader) ([]byte, error) {
	if c.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxBytes {
		return nil, ErrSourceTooLarge
	}
	return data, nil
}

// remoteName derives a file name from the URL path, ignoring the query.
func remoteName(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "download.csv"
	}
	return path.Base(u.Path)
}
