package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// History builds clean (non-hash) URLs rooted at Base, e.g. "/panel/".
type History struct {
	Base string
}

func (h History) base() string {
	b := strings.TrimRight(h.Base, "/")
	if b != "" && !strings.HasPrefix(b, "/") {
		b = "/" + b
	}
	return b
}

// Href returns the browser URL for a route path.
func (h History) Href(path string) string {
	b := h.base()
	if path == "/" || path == "" {
		return b + "/"
	}
	return b + "/" + strings.TrimLeft(path, "/")
}

// Strip removes the base from a browser URL path. ok is false when the path
// lies outside the base.
func (h History) Strip(urlPath string) (string, bool) {
	b := h.base()
	if b == "" {
		return urlPath, true
	}
	if urlPath == b {
		return "/", true
	}
	rest, ok := strings.CutPrefix(urlPath, b+"/")
	if !ok {
		return "", false
	}
	return "/" + rest, true
}

// Href is a shortcut for the history URL of a named route.
func (t *Table) Href(h History, name string) (string, error) {
	e, err := t.ByName(name)
	if err != nil {
		return "", err
	}
	return h.Href(e.Path), nil
}

// Handler serves index for every route in the table under the history base,
// so deep links survive a page reload. Anything else is a 404.
func (t *Table) Handler(h History, index http.Handler) http.Handler {
	r := chi.NewRouter()
	for _, e := range t.entries {
		r.Get(h.Href(e.Path), index.ServeHTTP)
		r.Head(h.Href(e.Path), index.ServeHTTP)
	}
	if b := h.base(); b != "" {
		r.Get(b, index.ServeHTTP)
	}
	r.NotFound(http.NotFound)
	return r
}
