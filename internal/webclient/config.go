package webclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Mode is the build mode the panel was built in.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

const (
	// DevelopmentBaseURL is relative; the development server proxies it to
	// the backend.
	DevelopmentBaseURL = "/api"
	ProductionBaseURL  = "http://localhost:5000/api"

	DefaultTimeout = 30 * time.Second
)

// ParseMode accepts "development"/"dev" and "production"/"prod".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return ModeDevelopment, nil
	case "production", "prod":
		return ModeProduction, nil
	default:
		return "", fmt.Errorf("unknown build mode %q", s)
	}
}

// BaseURLForMode returns the backend base URL for a build mode.
func BaseURLForMode(m Mode) string {
	if m == ModeDevelopment {
		return DevelopmentBaseURL
	}
	return ProductionBaseURL
}

// Config is the client configuration. It is copied at construction and never
// mutated afterwards.
type Config struct {
	// BaseURL is joined with relative request URLs.
	BaseURL string

	// Origin is the scheme and host a relative BaseURL is resolved against
	// (e.g. the development server address). Ignored for absolute base URLs.
	Origin string

	// Timeout applies to requests that do not set their own.
	Timeout time.Duration

	// DefaultHeaders are sent on every request unless overridden.
	DefaultHeaders http.Header
}

// DefaultConfig returns the configuration for the given build mode.
func DefaultConfig(m Mode) Config {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return Config{
		BaseURL:        BaseURLForMode(m),
		Timeout:        DefaultTimeout,
		DefaultHeaders: h,
	}
}

func (c Config) clone() Config {
	c.DefaultHeaders = c.DefaultHeaders.Clone()
	if c.DefaultHeaders == nil {
		c.DefaultHeaders = http.Header{}
	}
	return c
}

func (c Config) validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if c.Origin != "" {
		o, err := url.Parse(c.Origin)
		if err != nil {
			return fmt.Errorf("parse origin: %w", err)
		}
		if !o.IsAbs() || o.Host == "" {
			return fmt.Errorf("origin %q must be absolute", c.Origin)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// resolveURL joins a request URL onto the base URL, then onto the origin if
// the result is still relative. The result is always absolute.
func (c Config) resolveURL(raw string) (string, error) {
	target, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}
	joined := raw
	if !target.IsAbs() {
		joined = combineURLs(c.BaseURL, raw)
	}

	u, err := url.Parse(joined)
	if err != nil {
		return "", fmt.Errorf("parse joined url: %w", err)
	}
	if u.IsAbs() {
		if u.Host == "" {
			return "", fmt.Errorf("url %q has no host", joined)
		}
		return u.String(), nil
	}

	if c.Origin == "" {
		return "", fmt.Errorf("relative url %q and no origin configured", joined)
	}
	origin, err := url.Parse(c.Origin)
	if err != nil {
		return "", fmt.Errorf("parse origin: %w", err)
	}
	return origin.ResolveReference(u).String(), nil
}

func combineURLs(base, rel string) string {
	if rel == "" {
		return base
	}
	if strings.HasPrefix(rel, "?") || strings.HasPrefix(rel, "#") {
		return strings.TrimRight(base, "/") + rel
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rel, "/")
}
