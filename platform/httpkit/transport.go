package httpkit

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// sessionProbePaths answer 401 as a normal "not logged in" result.
var sessionProbePaths = []string{"/auth/me", "/auth/login"}

// UnauthorizedInterceptor reports every 401 response, except those of the
// session probe endpoints, to OnUnauthorized. The response is passed through
// unchanged so the caller still gets its error.
type UnauthorizedInterceptor struct {
	Next           http.RoundTripper
	OnUnauthorized func(path string)
}

// RoundTrip implements http.RoundTripper.
func (t *UnauthorizedInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.Next.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode == http.StatusUnauthorized && !isSessionProbe(req.URL.Path) {
		t.OnUnauthorized(req.URL.Path)
	}
	return resp, nil
}

func isSessionProbe(path string) bool {
	for _, probe := range sessionProbePaths {
		if strings.HasSuffix(path, probe) {
			return true
		}
	}
	return false
}

// RateLimitedTransport waits on a token bucket before each request.
type RateLimitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitedTransport allows perSecond requests with the given burst.
func NewRateLimitedTransport(next http.RoundTripper, perSecond float64, burst int) *RateLimitedTransport {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
