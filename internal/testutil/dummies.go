// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/raysh454/gesturepanel/internal/logging"
	"github.com/raysh454/gesturepanel/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ErrorCount returns the number of recorded error lines.
func (l *DummyLogger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

// ─── Observer ──────────────────────────────────────────────────────────

// RecordingObserver implements webclient.Observer and keeps every event.
type RecordingObserver struct {
	mu     sync.Mutex
	events []webclient.Event
}

func (o *RecordingObserver) Emit(e webclient.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

// Events returns a copy of the recorded events.
func (o *RecordingObserver) Events() []webclient.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]webclient.Event(nil), o.events...)
}

// Stages returns the stage of every recorded event in order.
func (o *RecordingObserver) Stages() []webclient.Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]webclient.Stage, 0, len(o.events))
	for _, e := range o.events {
		out = append(out, e.Stage)
	}
	return out
}

// ─── Transport ─────────────────────────────────────────────────────────

// DummyTransport implements webclient.Transport.
// By default it returns body "ok:<url>" with status 200. Set Status to force
// another code, or Err to fail without an envelope.
type DummyTransport struct {
	Status int
	Body   []byte
	Err    error

	mu       sync.Mutex
	Requests []webclient.Request
}

func (d *DummyTransport) RoundTrip(_ context.Context, req *webclient.Request) (*webclient.Response, error) {
	d.mu.Lock()
	d.Requests = append(d.Requests, req.Clone())
	d.mu.Unlock()

	if d.Err != nil {
		return nil, d.Err
	}

	status := d.Status
	if status == 0 {
		status = 200
	}
	body := d.Body
	if body == nil {
		body = []byte("ok:" + req.URL)
	}
	return &webclient.Response{
		Request:    req,
		Body:       body,
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

// Last returns the most recently dispatched request.
func (d *DummyTransport) Last() (webclient.Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Requests) == 0 {
		return webclient.Request{}, false
	}
	return d.Requests[len(d.Requests)-1], true
}

// Count returns how many requests reached the transport.
func (d *DummyTransport) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}
