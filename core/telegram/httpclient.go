package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/storebot/core/telegram/netutil"
)

const (
	dialTimeout       = 5 * time.Second
	tlsHandshake      = 5 * time.Second
	idleConnTimeout   = 30 * time.Second
	responseTimeout   = 5 * time.Second
	clientTimeout     = 30 * time.Second
	keepAliveInterval = 30 * time.Second
	httpRetryAttempts = 3
	httpRetryBackoff  = 2 * time.Second
)

// BuildHTTPClient returns the client the bot uses for all Telegram API
// calls, with a transport that transparently retries transient failures.
func BuildHTTPClient() *http.Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshake,
		ResponseHeaderTimeout: responseTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout: clientTimeout,
		Transport: &retryTransport{
			base:       base,
			maxRetries: httpRetryAttempts,
			backoff:    httpRetryBackoff,
		},
	}
}

// retryTransport re-sends requests that failed with a retryable transport
// error. Requests without a rewindable body are never retried.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	var lastErr error
	attempts := t.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		current := req
		if attempt > 1 {
			current = req.Clone(req.Context())
			switch {
			case req.GetBody != nil:
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				current.Body = body
			case req.Body != nil:
				return nil, lastErr
			}
		}

		resp, err := base.RoundTrip(current)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == attempts || !netutil.ShouldRetry(err) {
			break
		}

		delay := t.backoff * time.Duration(attempt)
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
