package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"userdir/internal/directory"
)

// DefaultTimeout bounds a single request when no client is supplied.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept for logging.
const maxErrorBody = 512

// HTTPSource fetches the user collection with a GET request.
type HTTPSource struct {
	endpoint  string
	client    *http.Client
	logger    *zap.Logger
	userAgent string
	group     singleflight.Group

	mu     sync.Mutex
	flight *inflight
}

// inflight is the shared request and the number of callers still waiting
// on it. The request is cancelled when the last waiter gives up.
type inflight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the request timeout. A client passed with WithHTTPClient
// is copied first and left untouched.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			c := *s.client
			c.Timeout = d
			s.client = &c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) { s.userAgent = ua }
}

// NewHTTPSource creates a source for endpoint. An empty endpoint means
// DefaultEndpoint.
func NewHTTPSource(endpoint string, opts ...HTTPOption) *HTTPSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	s := &HTTPSource{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: DefaultTimeout},
		logger:    zap.NewNop(),
		userAgent: "userdir",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endpoint returns the URL the source reads from.
func (s *HTTPSource) Endpoint() string { return s.endpoint }

// FetchUsers requests the full collection. Concurrent calls share a single
// request. Each caller stops waiting when its own ctx is done; the shared
// request is cancelled only once every caller has stopped waiting.
func (s *HTTPSource) FetchUsers(ctx context.Context) ([]directory.RawUser, error) {
	f := s.join(ctx)
	ch := s.group.DoChan(s.endpoint, func() (any, error) {
		defer s.land(f)
		return s.fetch(f.ctx)
	})

	select {
	case res := <-ch:
		s.leave(f, false)
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("fetch shared with concurrent caller", zap.String("endpoint", s.endpoint))
		}
		return slices.Clone(res.Val.([]directory.RawUser)), nil
	case <-ctx.Done():
		s.leave(f, true)
		return nil, fetchFailed(ctx.Err())
	}
}

// join registers the caller on the current flight, starting one if needed.
// The flight keeps ctx's values but not its cancellation.
func (s *HTTPSource) join(ctx context.Context) *inflight {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.flight = &inflight{ctx: fctx, cancel: cancel}
	}
	s.flight.waiters++
	return s.flight
}

// leave drops a waiter. When the last waiter gave up, the request is
// cancelled and forgotten so later callers start a fresh one.
func (s *HTTPSource) leave(f *inflight, gaveUp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	if gaveUp {
		s.group.Forget(s.endpoint)
	}
	f.cancel()
	if s.flight == f {
		s.flight = nil
	}
}

// land detaches a finished flight so the next call starts a new one.
func (s *HTTPSource) land(f *inflight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == f {
		s.flight = nil
	}
}

func (s *HTTPSource) fetch(ctx context.Context) ([]directory.RawUser, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fetchFailed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("request failed", zap.String("endpoint", s.endpoint), zap.Error(err))
		return nil, fetchFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.Warn("unexpected status",
			zap.String("endpoint", s.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var users []directory.RawUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fetchFailed(fmt.Errorf("decode response: %w", err))
	}

	s.logger.Debug("fetched users",
		zap.String("endpoint", s.endpoint),
		zap.Int("count", len(users)),
		zap.Duration("elapsed", time.Since(start)))
	return users, nil
}
