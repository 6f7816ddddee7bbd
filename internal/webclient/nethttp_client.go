package webclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/gesturepanel/internal/logging"
)

// Transport sends a fully resolved request. It returns an envelope for any
// response the server produced, whatever its status, and an error only when
// no response was obtained. Deadline failures must wrap
// context.DeadlineExceeded or be a net.Error reporting Timeout().
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// NetHTTPTransport is the net/http backed Transport.
type NetHTTPTransport struct {
	client *http.Client
	logger logging.Logger
}

// NewNetHTTPTransport wraps httpClient. A nil httpClient gets a pooled
// default with no client-level timeout; deadlines come from Request.Timeout.
func NewNetHTTPTransport(httpClient *http.Client, logger logging.Logger) *NetHTTPTransport {
	if logger == nil {
		logger = logging.Nop{}
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &NetHTTPTransport{
		client: httpClient,
		logger: logger.With(logging.Field{Key: "backend", Value: "nethttp"}),
	}
}

// RoundTrip implements Transport.
func (t *NetHTTPTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	method := strings.ToUpper(req.Method)

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.Debug("http request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.logger.Debug("reading response body failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "status", Value: resp.StatusCode},
			logging.Field{Key: "error", Value: err.Error()})
		// a non-2xx status is still a server reply; keep what arrived
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &Response{
				Request:    req,
				Body:       body,
				Headers:    resp.Header,
				StatusCode: resp.StatusCode,
				FetchedAt:  time.Now(),
			}, nil
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		Request:    req,
		Body:       body,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}

// Close releases idle connections.
func (t *NetHTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// HTTPClient returns the underlying *http.Client.
func (t *NetHTTPTransport) HTTPClient() *http.Client {
	return t.client
}
