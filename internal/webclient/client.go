package webclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/gesturepanel/internal/logging"
)

// OutboundHook runs before dispatch. It may return a modified request or an
// error, which aborts the call as a configuration error.
type OutboundHook func(ctx context.Context, req Request) (Request, error)

// SuccessHook runs on a 2xx envelope and may replace it. Returning nil keeps
// the envelope unchanged.
type SuccessHook func(ctx context.Context, resp *Response) *Response

// FailureHook observes a classified failure. It cannot swallow or alter the
// failure returned to the caller.
type FailureHook func(ctx context.Context, f *Failure)

type inboundHook struct {
	onSuccess SuccessHook
	onFailure FailureHook
}

// Client is the single configured access point for backend calls. Build one
// with New and pass it to whatever needs it. Hooks are registered at startup;
// after that a Client is safe for concurrent use.
type Client struct {
	cfg       Config
	transport Transport
	observer  Observer
	logger    logging.Logger

	mu       sync.RWMutex
	outbound []OutboundHook
	inbound  []inboundHook
}

// Option customises a Client.
type Option func(*Client)

// WithObserver adds an event observer. Multiple observers receive events in
// the order they were added.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o == nil {
			return
		}
		switch cur := c.observer.(type) {
		case nil:
			c.observer = o
		case Observers:
			c.observer = append(cur, o)
		default:
			c.observer = Observers{cur, o}
		}
	}
}

// WithLogger sets the client's diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Client from cfg. The configuration is copied and fixed for
// the client's lifetime. A nil transport uses NewNetHTTPTransport.
func New(cfg Config, transport Transport, opts ...Option) (*Client, error) {
	cfg = cfg.clone()
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid webclient config: %w", err)
	}

	c := &Client{cfg: cfg, logger: logging.Nop{}}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.Field{Key: "component", Value: "webclient"})

	if transport == nil {
		transport = NewNetHTTPTransport(nil, c.logger)
	}
	c.transport = transport

	c.logger.Debug("created webclient",
		logging.Field{Key: "base_url", Value: cfg.BaseURL},
		logging.Field{Key: "timeout", Value: cfg.Timeout.String()})
	return c, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.cfg.clone()
}

// RegisterOutboundHook appends fn to the outbound chain.
func (c *Client) RegisterOutboundHook(fn OutboundHook) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outbound = append(c.outbound, fn)
}

// RegisterInboundHook appends a success/failure pair to the inbound chain.
// Either function may be nil.
func (c *Client) RegisterInboundHook(onSuccess SuccessHook, onFailure FailureHook) {
	if onSuccess == nil && onFailure == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inbound = append(c.inbound, inboundHook{onSuccess: onSuccess, onFailure: onFailure})
}

// Call is the deferred result of Issue. It resolves exactly once.
type Call struct {
	done chan struct{}
	resp *Response
	err  error
}

// Done is closed once the call has resolved.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call resolves. On failure the error is a *Failure.
func (c *Call) Wait() (*Response, error) {
	<-c.done
	return c.resp, c.err
}

// Issue starts a call and returns immediately. The call runs to completion
// even if ctx is cancelled; ctx only carries values to hooks and transport.
func (c *Client) Issue(ctx context.Context, req Request) *Call {
	return c.issue(ctx, req, nil)
}

// Do issues req and waits for the result.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.Issue(ctx, req).Wait()
}

// Get is a convenience for simple GET requests.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: url})
}

// PostJSON marshals v and POSTs it. A marshal error fails the call as a
// configuration error.
func (c *Client) PostJSON(ctx context.Context, url string, v any) (*Response, error) {
	req := Request{Method: http.MethodPost, URL: url}
	body, err := json.Marshal(v)
	if err != nil {
		return c.issue(ctx, req, fmt.Errorf("marshal body: %w", err)).Wait()
	}
	req.Body = body
	return c.Do(ctx, req)
}

func (c *Client) issue(ctx context.Context, req Request, prepErr error) *Call {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	c.mu.RLock()
	outbound := append([]OutboundHook(nil), c.outbound...)
	inbound := append([]inboundHook(nil), c.inbound...)
	c.mu.RUnlock()

	call := &Call{done: make(chan struct{})}
	go func() {
		defer close(call.done)
		resp, f := c.run(ctx, req.Clone(), prepErr, outbound, inbound)
		if f != nil {
			call.err = f
			return
		}
		call.resp = resp
	}()
	return call
}

func (c *Client) run(ctx context.Context, req Request, prepErr error, outbound []OutboundHook, inbound []inboundHook) (*Response, *Failure) {
	r := c.withDefaults(req)
	if prepErr != nil {
		return nil, c.fail(ctx, Facts{}, &r, nil, prepErr, inbound)
	}

	for i, hook := range outbound {
		next, err := hook(ctx, r.Clone())
		if err != nil {
			return nil, c.fail(ctx, Facts{}, &r, nil, fmt.Errorf("outbound hook %d: %w", i, err), inbound)
		}
		r = next
	}

	if err := c.finalize(&r); err != nil {
		return nil, c.fail(ctx, Facts{}, &r, nil, err, inbound)
	}

	c.emit(Event{Stage: StageDispatch, Method: r.Method, URL: r.URL, RequestID: r.ID})

	dispatched := r
	resp, err := c.transport.RoundTrip(ctx, &dispatched)
	if err != nil {
		facts := Facts{DeadlineExceeded: isDeadline(err), DispatchAttempted: true}
		return nil, c.fail(ctx, facts, &dispatched, nil, err, inbound)
	}
	if resp == nil {
		return nil, c.fail(ctx, Facts{DispatchAttempted: true}, &dispatched, nil, fmt.Errorf("transport returned no response"), inbound)
	}
	if resp.Request == nil {
		resp.Request = &dispatched
	}
	if !resp.ok() {
		facts := Facts{EnvelopePresent: true, DispatchAttempted: true}
		return nil, c.fail(ctx, facts, &dispatched, resp, fmt.Errorf("unexpected status %d", resp.StatusCode), inbound)
	}

	for _, h := range inbound {
		if h.onSuccess == nil {
			continue
		}
		if out := h.onSuccess(ctx, resp); out != nil {
			resp = out
		}
	}

	c.emit(Event{Stage: StageSuccess, Method: dispatched.Method, URL: dispatched.URL, RequestID: dispatched.ID, StatusCode: resp.StatusCode})
	return resp, nil
}

// withDefaults fills unset fields from the configuration. Explicit request
// values win.
func (c *Client) withDefaults(req Request) Request {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	req.Method = strings.ToUpper(req.Method)

	if req.Timeout == 0 {
		req.Timeout = c.cfg.Timeout
	}

	headers := c.cfg.DefaultHeaders.Clone()
	for k, vs := range req.Headers {
		headers[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	req.Headers = headers
	return req
}

// finalize enforces the dispatch invariant: absolute URL, explicit timeout,
// valid method.
func (c *Client) finalize(r *Request) error {
	if !validMethod(r.Method) {
		return fmt.Errorf("invalid method %q", r.Method)
	}
	if r.Timeout == 0 {
		r.Timeout = c.cfg.Timeout
	}
	if r.Timeout < 0 {
		r.Timeout = NoTimeout
	}
	resolved, err := c.cfg.resolveURL(r.URL)
	if err != nil {
		return err
	}
	r.URL = resolved
	return nil
}

func (c *Client) fail(ctx context.Context, facts Facts, req *Request, resp *Response, cause error, inbound []inboundHook) *Failure {
	f := newFailure(facts, req, resp, cause)

	c.emit(Event{
		Stage:      StageFailure,
		Method:     req.Method,
		URL:        req.URL,
		RequestID:  req.ID,
		StatusCode: f.StatusCode,
		Kind:       f.Kind,
		Message:    f.Message,
	})

	for _, h := range inbound {
		if h.onFailure == nil {
			continue
		}
		h.onFailure(ctx, f.clone())
	}
	return f
}

func (c *Client) emit(e Event) {
	if c.observer == nil {
		return
	}
	e.Time = time.Now()
	c.observer.Emit(e)
}

func validMethod(m string) bool {
	if m == "" {
		return false
	}
	for _, r := range m {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("!#$%&'*+-.^_`|~", r):
		default:
			return false
		}
	}
	return true
}
