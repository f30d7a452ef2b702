// Package clients calls the product and payment services over HTTP.
package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"storefront/internal/apperror"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
)

var errServerStatus = errors.New("downstream server error")

// downstream is a resty client guarded by a circuit breaker. Transport
// errors and 5xx responses count as breaker failures; 4xx responses do not.
type downstream struct {
	name string
	http *resty.Client
	cb   *gobreaker.CircuitBreaker[*resty.Response]
}

// Option customizes the resty client of a downstream service.
type Option func(*resty.Client)

// WithAuthToken sends token as a bearer token on every request.
func WithAuthToken(token string) Option {
	return func(c *resty.Client) {
		c.SetAuthToken(token)
	}
}

// WithTokenSource asks source for a bearer token before every request, so
// short-lived tokens are never reused after they expire.
func WithTokenSource(source func() (string, error)) Option {
	return func(c *resty.Client) {
		c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			token, err := source()
			if err != nil {
				return fmt.Errorf("get auth token: %w", err)
			}
			r.SetAuthToken(token)
			return nil
		})
	}
}

func newDownstream(name, baseURL string, timeout time.Duration, opts ...Option) *downstream {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(client)
	}

	return &downstream{
		name: name,
		http: client,
		cb:   newCircuitBreaker(name),
	}
}

// do runs send through the breaker and translates failures to apperror kinds.
func (d *downstream) do(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	resp, err := d.cb.Execute(func() (*resty.Response, error) {
		resp, err := send(d.http.R().SetContext(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, apperror.Wrap(http.StatusServiceUnavailable, fmt.Sprintf("%s is unavailable", d.name), err)
	case errors.Is(err, errServerStatus):
		log.Ctx(ctx).Error().Str("downstream", d.name).Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("downstream server error")
		return nil, apperror.Wrap(http.StatusBadGateway, downstreamMessage(resp, fmt.Sprintf("%s failed", d.name)), err)
	case isTimeout(err):
		return nil, apperror.Wrap(http.StatusGatewayTimeout, fmt.Sprintf("%s timed out", d.name), err)
	case err != nil:
		return nil, apperror.Wrap(http.StatusBadGateway, fmt.Sprintf("%s is unreachable", d.name), err)
	}

	if resp.IsError() {
		msg := downstreamMessage(resp, fmt.Sprintf("%s rejected the request", d.name))
		log.Ctx(ctx).Warn().Str("downstream", d.name).Int("status", resp.StatusCode()).Str("message", msg).Msg("downstream rejected request")
		switch resp.StatusCode() {
		case http.StatusNotFound:
			return nil, apperror.NotFound(msg)
		case http.StatusUnauthorized, http.StatusForbidden:
			// The caller's credentials were rejected, not the client's request.
			return nil, apperror.BadGateway(fmt.Sprintf("%s rejected service credentials: %s", d.name, msg))
		}
		return nil, apperror.BadRequest(msg)
	}
	return resp, nil
}

// downstreamMessage returns the "message" field of an error body, or fallback.
func downstreamMessage(resp *resty.Response, fallback string) string {
	if msg := gjson.GetBytes(resp.Body(), "message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	return fallback
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
