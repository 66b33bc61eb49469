package render

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dgallion1/riostats/internal/doctree"
)

// Request identifies one character profile page.
type Request struct {
	Region string
	Realm  string
	Name   string
	Season string
}

// ProfileURL builds the public profile URL under baseURL.
func (r Request) ProfileURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/") + "/characters/" +
		url.PathEscape(r.Region) + "/" + url.PathEscape(r.Realm) + "/" + url.PathEscape(r.Name)
	if r.Season != "" {
		u += "?season=" + url.QueryEscape(r.Season)
	}
	return u
}

// Renderer materializes a profile page as a document tree.
type Renderer interface {
	Render(ctx context.Context, req Request) (*doctree.Tree, error)
}

// Error is returned by every renderer when a page cannot be materialized.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
