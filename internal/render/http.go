package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dgallion1/riostats/internal/doctree"
	"github.com/dgallion1/riostats/internal/parser"
)

// HTTPOptions configures the plain fetch renderer.
type HTTPOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Scope     string
}

// HTTP fetches the profile page without running scripts. It is enough for
// server-rendered pages and for local test servers.
type HTTP struct {
	opts   HTTPOptions
	log    *slog.Logger
	client *resty.Client
}

func NewHTTP(opts HTTPOptions, log *slog.Logger) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	return &HTTP{opts: opts, log: log, client: client}
}

func (h *HTTP) Render(ctx context.Context, req Request) (*doctree.Tree, error) {
	target := req.ProfileURL(h.opts.BaseURL)

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		Get(target)
	if err != nil {
		return nil, &Error{URL: target, Err: fmt.Errorf("fetch: %w", err)}
	}
	if resp.IsError() {
		body := resp.Body()
		if len(body) > 1024 {
			body = body[:1024]
		}
		return nil, &Error{URL: target, Err: fmt.Errorf("status %d: %s", resp.StatusCode(), string(body))}
	}
	h.log.Debug("page fetched", "url", target, "status", resp.StatusCode(), "bytes", len(resp.Body()))

	tree, err := (&parser.HTMLParser{Scope: h.opts.Scope}).Parse(bytes.NewReader(resp.Body()), req.Name+".html")
	if err != nil {
		return nil, &Error{URL: target, Err: err}
	}
	return tree, nil
}
