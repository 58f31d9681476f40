package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/Sammers21/owl-esports/pkg/types"
)

const userAgent = "owl-esports/1.0"

// HTTP sends pick lines to a tracker server with
// GET /owl-esports/pickline?line=...&tg=...&match=...
type HTTP struct {
	client  *resty.Client
	limiter *rate.Limiter
}

type HTTPOptions struct {
	Timeout time.Duration
	// RPS limits outgoing requests; zero means unlimited.
	RPS float64
}

func NewHTTP(baseURL string, opts HTTPOptions) *HTTP {
	pooled := retryablehttp.NewClient()
	pooled.Logger = nil

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTransport(pooled.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), max(1, int(opts.RPS)))
	}
	return &HTTP{client: client, limiter: limiter}
}

func (h *HTTP) Name() string { return "http" }

// Deliver encodes spaces in the pick line as underscores, which is how the
// tracker expects hero names on the wire.
func (h *HTTP) Deliver(ctx context.Context, d types.Delivery) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	params := map[string]string{
		types.ParamLine: strings.ReplaceAll(d.PickLine, " ", "_"),
		types.ParamID:   d.ID,
	}
	if d.Match != "" {
		params[types.ParamMatch] = d.Match
	}

	var ok types.PickLineResponse
	var failed types.ErrorResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&ok).
		SetError(&failed).
		Get(types.PickLinePath)
	if err != nil {
		return fmt.Errorf("send pick line: %w", err)
	}
	if resp.IsError() {
		reason := failed.Error
		if reason == "" {
			reason = strings.TrimSpace(resp.String())
		}
		return fmt.Errorf("%w: %s: %s", ErrRejected, resp.Status(), reason)
	}
	return nil
}
