package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/fitbot/core/telegram/netutil"
)

// HTTPOptions tunes the client used for Telegram Bot API calls.
// Zero fields fall back to defaults suited to long polling.
type HTTPOptions struct {
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	ClientTimeout   time.Duration
	Retry           netutil.Policy
}

func (o HTTPOptions) withDefaults(pollTimeout time.Duration) HTTPOptions {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	// getUpdates holds the response for the whole poll window.
	if min := pollTimeout + 5*time.Second; o.ResponseTimeout < min {
		o.ResponseTimeout = min
	}
	if min := o.ResponseTimeout + 10*time.Second; o.ClientTimeout < min {
		o.ClientTimeout = min
	}
	if o.Retry.MaxRetries == 0 && o.Retry.Backoff == 0 {
		o.Retry = netutil.Policy{MaxRetries: 3, Backoff: 2 * time.Second, MaxDelay: 10 * time.Second}
	}
	return o
}

// BuildHTTPClient returns a client whose transport retries transient network
// failures on requests that can be replayed.
func BuildHTTPClient(opts HTTPOptions, pollTimeout time.Duration) *http.Client {
	opts = opts.withDefaults(pollTimeout)
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.DialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   opts.DialTimeout,
		ResponseHeaderTimeout: opts.ResponseTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   opts.ClientTimeout,
		Transport: &retryTransport{base: base, policy: opts.Retry},
	}
}

type retryTransport struct {
	base   http.RoundTripper
	policy netutil.Policy
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// A body without GetBody cannot be replayed.
	if req.Body != nil && req.GetBody == nil {
		return t.base.RoundTrip(req)
	}

	var resp *http.Response
	first := true
	_, err := t.policy.Do(req.Context(), func() error {
		attempt := req
		if !first {
			attempt = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return err
				}
				attempt.Body = body
			}
		}
		first = false

		r, err := t.base.RoundTrip(attempt)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
