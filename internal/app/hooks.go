package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/raysh454/gesturepanel/internal/api"
	"github.com/raysh454/gesturepanel/internal/logging"
	"github.com/raysh454/gesturepanel/internal/webclient"
)

// RequestIDHeader carries the per-call request ID to the backend.
const RequestIDHeader = "X-Request-ID"

// RequestIDHook tags each request with an ID unless it already has one.
// newID defaults to uuid.NewString.
func RequestIDHook(newID func() string) webclient.OutboundHook {
	if newID == nil {
		newID = uuid.NewString
	}
	return func(_ context.Context, req webclient.Request) (webclient.Request, error) {
		if req.Headers == nil {
			req.Headers = http.Header{}
		}
		caller := takeHeader(req.Headers, RequestIDHeader)
		if req.ID == "" {
			req.ID = caller
		}
		if req.ID == "" {
			req.ID = newID()
		}
		req.Headers.Set(RequestIDHeader, req.ID)
		return req, nil
	}
}

// takeHeader removes every spelling of key from h and returns the first
// non-empty value found, preferring the canonical key.
func takeHeader(h http.Header, key string) string {
	value := h.Get(key)
	for k, vs := range h {
		if !strings.EqualFold(k, key) {
			continue
		}
		if value == "" && len(vs) > 0 {
			value = vs[0]
		}
		delete(h, k)
	}
	return value
}

// BackendErrorHook logs the backend's own error text for server errors.
func BackendErrorHook(logger logging.Logger) webclient.FailureHook {
	return func(_ context.Context, f *webclient.Failure) {
		msg := api.ErrorMessage(f)
		if msg == "" {
			return
		}
		logger.Warn("backend rejected request",
			logging.Field{Key: "status", Value: f.StatusCode},
			logging.Field{Key: "error", Value: msg})
	}
}
