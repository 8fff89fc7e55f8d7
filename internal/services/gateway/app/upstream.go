package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Upstream wraps one backend service behind a circuit breaker.
type Upstream struct {
	name    string
	base    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func mkBreaker(name string, failures uint32, openFor time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
	})
}

func NewUpstream(name, base string, timeout time.Duration, failures uint32, openFor time.Duration) *Upstream {
	return &Upstream{
		name:    name,
		base:    strings.TrimRight(strings.TrimSpace(base), "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: mkBreaker(name, failures, openFor),
	}
}

// Configured reports whether the upstream has a base URL.
func (u *Upstream) Configured() bool { return u != nil && u.base != "" }

// State exposes the breaker state for logging.
func (u *Upstream) State() gobreaker.State { return u.breaker.State() }

// GetJSON fetches base+path through the breaker and decodes into out.
func (u *Upstream) GetJSON(ctx context.Context, path string, out any) error {
	if !u.Configured() {
		return fmt.Errorf("%s upstream not configured", u.name)
	}
	_, err := u.breaker.Execute(func() (any, error) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.base+path, nil)
		resp, err := u.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request error: %w", u.name, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%s upstream status %d", u.name, resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("%s decode error: %w", u.name, err)
		}
		return nil, nil
	})
	return err
}

// PostJSON forwards a JSON body and returns the raw response bytes.
func (u *Upstream) PostJSON(ctx context.Context, path string, body []byte) ([]byte, int, error) {
	if !u.Configured() {
		return nil, 0, fmt.Errorf("%s upstream not configured", u.name)
	}
	res, err := u.breaker.Execute(func() (any, error) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, u.base+path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := u.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request error: %w", u.name, err)
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("%s read error: %w", u.name, err)
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%s upstream status %d", u.name, resp.StatusCode)
		}
		return proxied{status: resp.StatusCode, body: b}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	p := res.(proxied)
	return p.body, p.status, nil
}

type proxied struct {
	status int
	body   []byte
}
