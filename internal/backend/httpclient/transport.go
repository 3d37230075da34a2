package httpclient

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Options configures the transport chain built by NewClient.
type Options struct {
	Token     string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond limits outgoing calls. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	// Base is the innermost transport, http.DefaultTransport when nil.
	Base http.RoundTripper
}

// NewHTTPClient returns an *http.Client with auth headers and client side rate
// limiting applied.
func NewHTTPClient(opts Options) *http.Client {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}

	var rt http.RoundTripper = &headerTransport{
		base:      base,
		token:     opts.Token,
		userAgent: opts.UserAgent,
	}

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		rt = &rateLimitedTransport{
			base:    rt,
			limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Transport: rt, Timeout: timeout}
}

type headerTransport struct {
	base      http.RoundTripper
	token     string
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if t.token != "" && r.Header.Get("Authorization") == "" {
		r.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(r)
}

type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
