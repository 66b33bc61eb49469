package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/dgallion1/riostats/internal/doctree"
	"github.com/dgallion1/riostats/internal/parser"
)

// ChromeOptions configures the headless browser.
type ChromeOptions struct {
	ExecPath     string
	Headless     bool
	NoSandbox    bool
	UserAgent    string
	BaseURL      string
	WaitSelector string // optional, waited for after body is ready
	Scope        string // optional CSS selector narrowing the tree
}

// Chrome renders profiles in headless Chrome. Every request starts a browser
// from the shared allocator and closes it when done.
type Chrome struct {
	opts        ChromeOptions
	log         *slog.Logger
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

func NewChrome(opts ChromeOptions, log *slog.Logger) *Chrome {
	flags := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	flags = append(flags,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.NoSandbox {
		flags = append(flags, chromedp.NoSandbox)
	}
	if opts.ExecPath != "" {
		flags = append(flags, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		flags = append(flags, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), flags...)
	return &Chrome{opts: opts, log: log, allocCtx: allocCtx, cancelAlloc: cancel}
}

func (c *Chrome) Render(ctx context.Context, req Request) (*doctree.Tree, error) {
	target := req.ProfileURL(c.opts.BaseURL)

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancelTab()

	// Tie the tab to the caller's deadline.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	actions := []chromedp.Action{
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if c.opts.WaitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(c.opts.WaitSelector, chromedp.ByQuery))
	}
	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, &Error{URL: target, Err: fmt.Errorf("chrome: %w", err)}
	}
	c.log.Debug("page rendered", "url", target, "bytes", len(html))

	tree, err := (&parser.HTMLParser{Scope: c.opts.Scope}).Parse(strings.NewReader(html), req.Name+".html")
	if err != nil {
		return nil, &Error{URL: target, Err: err}
	}
	return tree, nil
}

// Close shuts the browser down.
func (c *Chrome) Close() {
	c.cancelAlloc()
}
