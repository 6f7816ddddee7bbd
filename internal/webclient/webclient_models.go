package webclient

import (
	"net/http"
	"time"
)

// NoTimeout marks a request that explicitly wants no deadline. A zero
// Timeout means "use the client default".
const NoTimeout time.Duration = -1

// Request describes one outgoing call. Hooks receive and return copies.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	Timeout time.Duration

	// ID is assigned by hooks (e.g. a request-id hook) and echoed in events.
	ID string
}

// Clone returns a deep copy of r.
func (r Request) Clone() Request {
	r.Headers = r.Headers.Clone()
	if r.Body != nil {
		r.Body = append([]byte(nil), r.Body...)
	}
	return r
}

// Response is the envelope produced by the transport.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

func (r *Response) clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Headers = r.Headers.Clone()
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	if r.Request != nil {
		req := r.Request.Clone()
		c.Request = &req
	}
	return &c
}

func (r *Response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
