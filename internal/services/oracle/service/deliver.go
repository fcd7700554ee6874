package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/logger"
	pnet "allocvault/internal/platform/net"
	"allocvault/internal/services/oracle/domain"
)

const defaultDeliverTimeout = 10 * time.Second

// HTTPDeliverer posts callbacks to the API resolution endpoint
type HTTPDeliverer struct {
	url    string
	token  string
	client *http.Client
	log    *logger.Logger
}

// NewHTTPDeliverer builds a deliverer; token is sent as a bearer credential when set
func NewHTTPDeliverer(url, token string, timeout time.Duration) *HTTPDeliverer {
	if timeout <= 0 {
		timeout = defaultDeliverTimeout
	}
	return &HTTPDeliverer{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
		log:    logger.Named("oracle-deliver"),
	}
}

// Deliver sends cb; 4xx answers are permanent except 408 and 429
// an already_processed answer means an earlier attempt landed and counts as delivered
func (d *HTTPDeliverer) Deliver(ctx context.Context, cb domain.Callback) error {
	body, err := json.Marshal(cb)
	if err != nil {
		return fmt.Errorf("%w: encode callback: %v", domain.ErrPermanent, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "allocvault-oracle")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "deliver callback")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	var env pnet.Wire
	_ = json.NewDecoder(io.LimitReader(resp.Body, 16<<10)).Decode(&env)
	d.log.Debug().
		Str("callback_id", cb.CallbackID).
		Int("status", resp.StatusCode).
		Str("kind", env.Kind).
		Dur("latency", time.Since(start)).
		Msg("callback response")

	switch s := resp.StatusCode; {
	case s >= 200 && s < 300:
		return nil
	case s == http.StatusConflict && env.Kind == perr.ErrorCodeAlreadyProcessed.String():
		return nil
	case s == http.StatusRequestTimeout || s == http.StatusTooManyRequests:
		return perr.Newf(perr.ErrorCodeUnavailable, "callback status %d", s)
	case s >= 400 && s < 500:
		return fmt.Errorf("%w: status %d %s %s", domain.ErrPermanent, s, env.Kind, env.Error)
	default:
		return perr.Newf(perr.ErrorCodeUnavailable, "callback status %d", s)
	}
}
