package webclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a failed call. Exactly one kind applies to every failure.
type Kind int

const (
	KindConfigurationError Kind = iota
	KindTimeout
	KindServerError
	KindNetworkUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindServerError:
		return "server_error"
	case KindNetworkUnreachable:
		return "network_unreachable"
	default:
		return "configuration_error"
	}
}

// Sentinels for errors.Is matching on a *Failure.
var (
	ErrTimeout            = errors.New("request timeout")
	ErrServer             = errors.New("server error")
	ErrNetworkUnreachable = errors.New("network unreachable")
	ErrConfiguration      = errors.New("request configuration error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindServerError:
		return ErrServer
	case KindNetworkUnreachable:
		return ErrNetworkUnreachable
	default:
		return ErrConfiguration
	}
}

// Facts are the observable properties of a failed call.
type Facts struct {
	DeadlineExceeded  bool
	EnvelopePresent   bool
	DispatchAttempted bool
}

// Classify maps facts to a kind. First match wins:
// deadline, then envelope, then dispatch, else configuration.
func Classify(f Facts) Kind {
	switch {
	case f.DeadlineExceeded:
		return KindTimeout
	case f.EnvelopePresent:
		return KindServerError
	case f.DispatchAttempted:
		return KindNetworkUnreachable
	default:
		return KindConfigurationError
	}
}

// Failure is the classified result of a failed call.
type Failure struct {
	Kind    Kind
	Message string

	// StatusCode is set only for KindServerError.
	StatusCode int

	Request  *Request
	Response *Response
	Err      error
}

func newFailure(f Facts, req *Request, resp *Response, cause error) *Failure {
	kind := Classify(f)
	out := &Failure{Kind: kind, Request: req, Err: cause}
	if kind == KindServerError && resp != nil {
		out.StatusCode = resp.StatusCode
		out.Response = resp
	}
	out.Message = out.describe()
	return out
}

func (f *Failure) describe() string {
	switch f.Kind {
	case KindTimeout:
		return "request timeout"
	case KindServerError:
		return fmt.Sprintf("server error: %d", f.StatusCode)
	case KindNetworkUnreachable:
		return "network unreachable: cannot connect to server"
	default:
		if f.Err != nil {
			return "request configuration error: " + f.Err.Error()
		}
		return "request configuration error"
	}
}

func (f *Failure) url() string {
	if f.Request == nil {
		return ""
	}
	return f.Request.URL
}

func (f *Failure) Error() string {
	if u := f.url(); u != "" {
		return fmt.Sprintf("%s (%s)", f.Message, u)
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches the per-kind sentinel errors.
func (f *Failure) Is(target error) bool {
	return target == f.Kind.sentinel()
}

// clone returns a copy of f that shares no mutable state with it.
func (f *Failure) clone() *Failure {
	c := *f
	if f.Request != nil {
		req := f.Request.Clone()
		c.Request = &req
	}
	c.Response = f.Response.clone()
	return &c
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func isDeadline(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
