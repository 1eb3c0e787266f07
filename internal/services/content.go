package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "http://127.0.0.1:8090"

// ContentService talks to the creator content backend.
type ContentService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	logger     *log.Logger
}

// ContentOption configures a [ContentService].
type ContentOption func(*ContentService)

// WithHTTPClient replaces the client built from config. Token and logging transports are not applied to it.
func WithHTTPClient(c *http.Client) ContentOption {
	return func(s *ContentService) { s.httpClient = c }
}

func WithLogger(l *log.Logger) ContentOption {
	return func(s *ContentService) { s.logger = l }
}

// NewContentService creates a content client from the api section of the config.
func NewContentService(cfg shared.APIConfig, opts ...ContentOption) *ContentService {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	s := &ContentService{
		baseURL: baseURL,
		limiter: rate.NewLimiter(limit, 1),
		retries: max(cfg.Retries, 0),
		logger:  log.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.httpClient == nil {
		s.httpClient = newHTTPClient(cfg, s.logger)
	}

	return s
}

// newHTTPClient builds a client with a dial timeout, request logging and an optional bearer token.
func newHTTPClient(cfg shared.APIConfig, logger *log.Logger) *http.Client {
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.DialContext = (&net.Dialer{Timeout: timeout}).DialContext

	var rt http.RoundTripper = &loggingTransport{base: base, logger: logger}
	if cfg.Token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
			Base:   rt,
		}
	}

	return &http.Client{Transport: rt}
}

// GetContents lists the content items with the given status.
func (s *ContentService) GetContents(ctx context.Context, status string) Result[models.ContentResponse] {
	return get[models.ContentResponse](ctx, s, "/creator/contents/"+url.PathEscape(status))
}

// GetContentDetail fetches a single content item with transcript and summary.
func (s *ContentService) GetContentDetail(ctx context.Context, id string) Result[models.ContentDetailResponse] {
	return get[models.ContentDetailResponse](ctx, s, "/creator/content/"+url.PathEscape(id))
}

// BaseURL returns the backend root requests are sent to.
func (s *ContentService) BaseURL() string { return s.baseURL }

func get[T any](ctx context.Context, s *ContentService, path string) Result[T] {
	resp, err := s.do(ctx, http.MethodGet, s.baseURL+path)
	if err != nil {
		return Exception[T](err)
	}
	return handleResponse[T](resp)
}

// do sends the request, retrying transport failures up to s.retries times.
// HTTP error statuses are returned as responses and never retried.
func (s *ContentService) do(ctx context.Context, method, target string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if attempt < s.retries {
			s.logger.Debug("retrying request", "url", target, "attempt", attempt+1, "error", err)
		}
	}

	return nil, fmt.Errorf("request failed: %w", lastErr)
}

// loggingTransport logs each round trip at debug level.
type loggingTransport struct {
	base   http.RoundTripper
	logger *log.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		t.logger.Debug("http", "method", req.Method, "url", req.URL.String(), "error", err, "elapsed", elapsed)
		return nil, err
	}

	t.logger.Debug("http", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "elapsed", elapsed)
	return resp, nil
}
