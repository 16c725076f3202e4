package realreturn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/etnz/realreturn/metrics"
)

// contains http utils to deal with remote services

// DefaultTimeout bounds a single provider request when ClientOptions.Timeout is not set.
const DefaultTimeout = 30 * time.Second

// ClientOptions configures a provider Client.
type ClientOptions struct {
	Timeout           time.Duration     // per request, DefaultTimeout if zero
	RequestsPerSecond float64           // unlimited if zero
	Burst             int               // 1 if zero
	Transport         http.RoundTripper // http.DefaultTransport if nil
}

// Client performs JSON GET requests against one data provider.
//
// Requests are rate limited, and a circuit breaker stops calling a provider
// after three consecutive failures, for a minute. Client errors (4xx but 429)
// concern a single request and do not count as failures.
type Client struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
}

// NewClient returns a Client for the named provider.
func NewClient(provider string, opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	st := gobreaker.Settings{Name: provider}
	st.Timeout = time.Minute
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 3 }
	st.IsSuccessful = func(err error) bool { return err == nil || isClientError(err) }
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("provider", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
	}

	return &Client{
		provider: provider,
		http:     &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		limiter:  rate.NewLimiter(limit, opts.Burst),
		breaker:  gobreaker.NewCircuitBreaker(st),
	}
}

// isClientError reports whether err is a 4xx response other than 429 Too Many Requests.
func isClientError(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.StatusCode >= 400 && perr.StatusCode < 500 && perr.StatusCode != http.StatusTooManyRequests
}

// Provider returns the provider name.
func (c *Client) Provider() string { return c.provider }

// GetJSON performs an HTTP GET of addr with the query params and unmarshals the JSON response into data.
//
// Failures to reach the provider and non-2xx responses are returned as *ProviderError.
func (c *Client) GetJSON(ctx context.Context, addr string, params url.Values, data any) error {
	u, err := url.Parse(addr)
	if err != nil {
		return fmt.Errorf("invalid %s url %q: %w", c.provider, addr, err)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	// the query holds api keys, never report it.
	public := u.Host + u.Path

	if err := c.limiter.Wait(ctx); err != nil {
		return &ProviderError{Provider: c.provider, URL: public, Err: err}
	}

	body, err := c.breaker.Execute(func() (any, error) { return c.get(ctx, u.String(), public) })
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			return perr
		}
		// gobreaker.ErrOpenState and ErrTooManyRequests
		metrics.ProviderRequests.WithLabelValues(c.provider, metrics.CircuitOpen).Inc()
		return &ProviderError{Provider: c.provider, URL: public, Err: err}
	}

	if err := json.Unmarshal(body.([]byte), data); err != nil {
		metrics.ProviderRequests.WithLabelValues(c.provider, metrics.DecodeError).Inc()
		return fmt.Errorf("cannot decode %s response from %s: %w", c.provider, public, err)
	}
	return nil
}

// get reads the body of a successful response.
func (c *Client) get(ctx context.Context, addr, public string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, &ProviderError{Provider: c.provider, URL: public, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(c.provider, metrics.Transport).Inc()
		return nil, &ProviderError{Provider: c.provider, URL: public, Err: err}
	}
	defer resp.Body.Close()
	log.Debug().Str("provider", c.provider).Str("url", public).Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("GET")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ProviderRequests.WithLabelValues(c.provider, metrics.HTTPError).Inc()
		return nil, &ProviderError{Provider: c.provider, URL: public, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(c.provider, metrics.Transport).Inc()
		return nil, &ProviderError{Provider: c.provider, URL: public, Err: err}
	}
	metrics.ProviderRequests.WithLabelValues(c.provider, metrics.OK).Inc()
	return body, nil
}
