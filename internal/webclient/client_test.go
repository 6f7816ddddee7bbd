package webclient_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/gesturepanel/internal/testutil"
	"github.com/raysh454/gesturepanel/internal/webclient"
)

func newProdClient(t *testing.T, tr webclient.Transport, obs *testutil.RecordingObserver) *webclient.Client {
	t.Helper()
	opts := []webclient.Option{webclient.WithLogger(&testutil.DummyLogger{})}
	if obs != nil {
		opts = append(opts, webclient.WithObserver(obs))
	}
	c, err := webclient.New(webclient.DefaultConfig(webclient.ModeProduction), tr, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func mustFailure(t *testing.T, err error) *webclient.Failure {
	t.Helper()
	if err == nil {
		t.Fatal("expected failure, got nil error")
	}
	f, ok := webclient.AsFailure(err)
	if !ok {
		t.Fatalf("expected *webclient.Failure, got %T: %v", err, err)
	}
	return f
}

// ─── Defaults ──────────────────────────────────────────────────────────

func TestIssue_FillsDefaultTimeout(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	c := newProdClient(t, tr, nil)

	if _, err := c.Do(context.Background(), webclient.Request{URL: "/health"}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	got, _ := tr.Last()
	if got.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", got.Timeout)
	}
	if got.Method != http.MethodGet {
		t.Errorf("expected GET default, got %q", got.Method)
	}
}

func TestIssue_FillsDefaultHeaders(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	c := newProdClient(t, tr, nil)

	if _, err := c.Do(context.Background(), webclient.Request{Method: "post", URL: "/config"}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	got, _ := tr.Last()
	if got.Headers.Get("Content-Type") != "application/json" {
		t.Errorf("expected default content type, got %q", got.Headers.Get("Content-Type"))
	}
	if got.Method != http.MethodPost {
		t.Errorf("expected method upper-cased, got %q", got.Method)
	}
}

func TestIssue_ExplicitValuesWin(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	c := newProdClient(t, tr, nil)

	req := webclient.Request{
		URL:     "/upload/video",
		Timeout: 5 * time.Second,
		Headers: http.Header{"content-type": {"multipart/form-data"}, "X-Extra": {"1"}},
	}
	if _, err := c.Do(context.Background(), req); err != nil {
		t.Fatalf("Do: %v", err)
	}

	got, _ := tr.Last()
	if got.Timeout != 5*time.Second {
		t.Errorf("expected explicit timeout, got %v", got.Timeout)
	}
	if vs := got.Headers.Values("Content-Type"); len(vs) != 1 || vs[0] != "multipart/form-data" {
		t.Errorf("expected overridden content type, got %v", vs)
	}
	if got.Headers.Get("X-Extra") != "1" {
		t.Error("expected extra header kept")
	}
}

func TestIssue_NoTimeoutIsKept(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	c := newProdClient(t, tr, nil)

	if _, err := c.Do(context.Background(), webclient.Request{URL: "/files/videos", Timeout: webclient.NoTimeout}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	got, _ := tr.Last()
	if got.Timeout != webclient.NoTimeout {
		t.Errorf("expected NoTimeout, got %v", got.Timeout)
	}
}

// ─── URL resolution ────────────────────────────────────────────────────

func TestIssue_ResolvesAgainstBaseURL(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"/health":                      "http://localhost:5000/api/health",
		"config?module=ppt":            "http://localhost:5000/api/config?module=ppt",
		"?module=ppt":                  "http://localhost:5000/api?module=ppt",
		"http://example.test/api/ping": "http://example.test/api/ping",
	}
	for in, want := range cases {
		tr := &testutil.DummyTransport{}
		c := newProdClient(t, tr, nil)
		if _, err := c.Do(context.Background(), webclient.Request{URL: in}); err != nil {
			t.Fatalf("Do(%q): %v", in, err)
		}
		got, _ := tr.Last()
		if got.URL != want {
			t.Errorf("URL %q resolved to %q, want %q", in, got.URL, want)
		}
	}
}

func TestIssue_DevelopmentBaseUsesOrigin(t *testing.T) {
	t.Parallel()
	cfg := webclient.DefaultConfig(webclient.ModeDevelopment)
	cfg.Origin = "http://localhost:3000"
	tr := &testutil.DummyTransport{}
	c, err := webclient.New(cfg, tr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Get(context.Background(), "/health"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, _ := tr.Last()
	if got.URL != "http://localhost:3000/api/health" {
		t.Errorf("expected origin-resolved url, got %q", got.URL)
	}
}

func TestIssue_RelativeBaseWithoutOrigin_IsConfigurationError(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	obs := &testutil.RecordingObserver{}
	c, err := webclient.New(webclient.DefaultConfig(webclient.ModeDevelopment), tr, webclient.WithObserver(obs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Get(context.Background(), "/health")
	f := mustFailure(t, err)
	if f.Kind != webclient.KindConfigurationError {
		t.Errorf("expected configuration error, got %v", f.Kind)
	}
	if tr.Count() != 0 {
		t.Error("transport must not be called")
	}
	if stages := obs.Stages(); len(stages) != 1 || stages[0] != webclient.StageFailure {
		t.Errorf("expected a single failure event, got %v", stages)
	}
}

// ─── Hooks ─────────────────────────────────────────────────────────────

func TestOutboundHooks_RunInRegistrationOrder(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	c := newProdClient(t, tr, nil)

	c.RegisterOutboundHook(func(_ context.Context, r webclient.Request) (webclient.Request, error) {
		r.URL += "/a"
		r.Headers.Set("X-Order", "A")
		return r, nil
	})
	c.RegisterOutboundHook(func(_ context.Context, r webclient.Request) (webclient.Request, error) {
		r.URL += "/b"
		r.Headers.Set("X-Order", r.Headers.Get("X-Order")+"B")
		return r, nil
	})

	if _, err := c.Get(context.Background(), "/gesture"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, _ := tr.Last()
	if got.URL != "http://localhost:5000/api/gesture/a/b" {
		t.Errorf("unexpected url %q", got.URL)
	}
	if got.Headers.Get("X-Order") != "AB" {
		t.Errorf("expected A then B, got %q", got.Headers.Get("X-Order"))
	}
}

func TestOutboundHook_ErrorShortCircuits(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	obs := &testutil.RecordingObserver{}
	c := newProdClient(t, tr, obs)

	secondRan := false
	c.RegisterOutboundHook(func(_ context.Context, r webclient.Request) (webclient.Request, error) {
		return r, errors.New("missing module")
	})
	c.RegisterOutboundHook(func(_ context.Context, r webclient.Request) (webclient.Request, error) {
		secondRan = true
		return r, nil
	})

	_, err := c.Get(context.Background(), "/config")
	f := mustFailure(t, err)
	if f.Kind != webclient.KindConfigurationError {
		t.Errorf("expected configuration error, got %v", f.Kind)
	}
	if f.StatusCode != 0 {
		t.Errorf("configuration error must not carry a status, got %d", f.StatusCode)
	}
	if secondRan {
		t.Error("later hooks must not run after a short-circuit")
	}
	if tr.Count() != 0 {
		t.Error("transport must not be called")
	}
	if stages := obs.Stages(); len(stages) != 1 || stages[0] != webclient.StageFailure {
		t.Errorf("expected only a failure event, got %v", stages)
	}
}

func TestOutboundHook_CannotMutateCallerRequest(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	c := newProdClient(t, tr, nil)
	c.RegisterOutboundHook(func(_ context.Context, r webclient.Request) (webclient.Request, error) {
		r.Headers.Set("X-Hook", "1")
		return r, nil
	})

	req := webclient.Request{URL: "/health", Headers: http.Header{}}
	if _, err := c.Do(context.Background(), req); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if req.Headers.Get("X-Hook") != "" {
		t.Error("caller's request was mutated")
	}
}

func TestInboundSuccessHooks_TransformInOrder(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{Body: []byte("raw")}
	c := newProdClient(t, tr, nil)

	c.RegisterInboundHook(func(_ context.Context, r *webclient.Response) *webclient.Response {
		cp := *r
		cp.Body = append([]byte("1:"), r.Body...)
		return &cp
	}, nil)
	c.RegisterInboundHook(nil, nil)
	c.RegisterInboundHook(func(_ context.Context, r *webclient.Response) *webclient.Response {
		cp := *r
		cp.Body = append([]byte("2:"), r.Body...)
		return &cp
	}, nil)
	c.RegisterInboundHook(func(context.Context, *webclient.Response) *webclient.Response { return nil }, nil)

	resp, err := c.Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(resp.Body) != "2:1:raw" {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestInboundFailureHook_ObservesButCannotSwallow(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{Status: http.StatusInternalServerError, Body: []byte(`{"error":"boom"}`)}
	c := newProdClient(t, tr, nil)

	var seen []webclient.Kind
	c.RegisterInboundHook(nil, func(_ context.Context, f *webclient.Failure) {
		seen = append(seen, f.Kind)
		f.Kind = webclient.KindTimeout
		f.StatusCode = 0
	})
	successRan := false
	c.RegisterInboundHook(func(_ context.Context, r *webclient.Response) *webclient.Response {
		successRan = true
		return r
	}, func(_ context.Context, f *webclient.Failure) {
		seen = append(seen, f.Kind)
	})

	_, err := c.Get(context.Background(), "/config")
	f := mustFailure(t, err)
	if f.Kind != webclient.KindServerError || f.StatusCode != 500 {
		t.Errorf("failure altered by hook: kind=%v status=%d", f.Kind, f.StatusCode)
	}
	if len(seen) != 2 || seen[0] != webclient.KindServerError || seen[1] != webclient.KindServerError {
		t.Errorf("each failure hook should see the original failure, got %v", seen)
	}
	if successRan {
		t.Error("success hook must not run on failure")
	}
}

func TestInboundFailureHook_MutationsDoNotReachCaller(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{Status: http.StatusInternalServerError, Body: []byte(`{"error":"boom"}`)}
	c := newProdClient(t, tr, nil)

	c.RegisterInboundHook(nil, func(_ context.Context, f *webclient.Failure) {
		f.Request.URL = "tampered"
		f.Request.Headers.Set("Content-Type", "text/plain")
		f.Response.StatusCode = http.StatusOK
		f.Response.Body[0] = 'X'
		f.Response.Headers = nil
	})
	var second *webclient.Failure
	c.RegisterInboundHook(nil, func(_ context.Context, f *webclient.Failure) {
		second = f
	})

	_, err := c.Get(context.Background(), "/config")
	f := mustFailure(t, err)
	if f.Request.URL != "http://localhost:5000/api/config" {
		t.Errorf("request url altered by hook: %q", f.Request.URL)
	}
	if f.Request.Headers.Get("Content-Type") != "application/json" {
		t.Errorf("request headers altered by hook: %v", f.Request.Headers)
	}
	if f.Response.StatusCode != http.StatusInternalServerError || string(f.Response.Body) != `{"error":"boom"}` {
		t.Errorf("response altered by hook: %d %q", f.Response.StatusCode, f.Response.Body)
	}
	if second == nil || second.Request.URL != "http://localhost:5000/api/config" || second.Response.StatusCode != 500 {
		t.Errorf("later hooks should see the untouched failure, got %+v", second)
	}
}

// ─── Failure classification through the pipeline ──────────────────────

func TestIssue_Non2xx_IsServerErrorWithStatus(t *testing.T) {
	t.Parallel()
	for _, code := range []int{400, 404, 500, 503} {
		tr := &testutil.DummyTransport{Status: code}
		c := newProdClient(t, tr, nil)

		_, err := c.Get(context.Background(), "/files/unknown")
		f := mustFailure(t, err)
		if f.Kind != webclient.KindServerError {
			t.Errorf("%d: expected server error, got %v", code, f.Kind)
		}
		if f.StatusCode != code {
			t.Errorf("%d: expected status carried, got %d", code, f.StatusCode)
		}
		if f.Response == nil || f.Response.StatusCode != code {
			t.Errorf("%d: expected envelope on failure", code)
		}
		if !errors.Is(err, webclient.ErrServer) {
			t.Errorf("%d: expected errors.Is ErrServer", code)
		}
	}
}

func TestIssue_TransportError_IsNetworkUnreachable(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{Err: errors.New("dial tcp 127.0.0.1:5000: connect: connection refused")}
	c := newProdClient(t, tr, nil)

	_, err := c.Get(context.Background(), "/health")
	f := mustFailure(t, err)
	if f.Kind != webclient.KindNetworkUnreachable {
		t.Errorf("expected network unreachable, got %v", f.Kind)
	}
	if f.StatusCode != 0 || f.Response != nil {
		t.Error("network failure must not carry an envelope")
	}
}

func TestIssue_DeadlineExceeded_IsTimeout(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{Err: fmt.Errorf("http do: %w", context.DeadlineExceeded)}
	c := newProdClient(t, tr, nil)

	_, err := c.Get(context.Background(), "/gesture/recognize")
	f := mustFailure(t, err)
	if f.Kind != webclient.KindTimeout {
		t.Errorf("expected timeout, got %v", f.Kind)
	}
	if f.StatusCode != 0 {
		t.Error("timeout must not carry a status")
	}
}

func TestPostJSON_MarshalError_IsConfigurationError(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	c := newProdClient(t, tr, nil)

	_, err := c.PostJSON(context.Background(), "/config", map[string]any{"bad": make(chan int)})
	f := mustFailure(t, err)
	if f.Kind != webclient.KindConfigurationError {
		t.Errorf("expected configuration error, got %v", f.Kind)
	}
	if tr.Count() != 0 {
		t.Error("transport must not be called")
	}
}

func TestIssue_InvalidMethod_IsConfigurationError(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	c := newProdClient(t, tr, nil)

	_, err := c.Do(context.Background(), webclient.Request{Method: "GE T", URL: "/health"})
	if f := mustFailure(t, err); f.Kind != webclient.KindConfigurationError {
		t.Errorf("expected configuration error, got %v", f.Kind)
	}
}

// ─── Observability ─────────────────────────────────────────────────────

func TestEvents_SuccessEmitsDispatchThenSuccess(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{Status: http.StatusCreated}
	obs := &testutil.RecordingObserver{}
	c := newProdClient(t, tr, obs)

	if _, err := c.PostJSON(context.Background(), "/config", map[string]string{"module": "ppt"}); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}

	events := obs.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Stage != webclient.StageDispatch || events[0].Method != "POST" || events[0].URL != "http://localhost:5000/api/config" {
		t.Errorf("unexpected dispatch event %+v", events[0])
	}
	if events[1].Stage != webclient.StageSuccess || events[1].StatusCode != 201 || events[1].URL != events[0].URL {
		t.Errorf("unexpected success event %+v", events[1])
	}
}

func TestEvents_FailureEmitsDispatchThenFailure(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{Status: http.StatusBadGateway}
	obs := &testutil.RecordingObserver{}
	c := newProdClient(t, tr, obs)

	_, _ = c.Get(context.Background(), "/health")

	events := obs.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	fe := events[1]
	if fe.Stage != webclient.StageFailure || fe.Kind != webclient.KindServerError || fe.StatusCode != 502 {
		t.Errorf("unexpected failure event %+v", fe)
	}
	if fe.URL != "http://localhost:5000/api/health" || fe.Message == "" {
		t.Errorf("failure event must carry url and message: %+v", fe)
	}
}

func TestEvents_FanOutToEveryObserver(t *testing.T) {
	t.Parallel()
	a, b := &testutil.RecordingObserver{}, &testutil.RecordingObserver{}
	c, err := webclient.New(webclient.DefaultConfig(webclient.ModeProduction), &testutil.DummyTransport{},
		webclient.WithObserver(a), webclient.WithObserver(b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _ = c.Get(context.Background(), "/health")

	if len(a.Events()) != 2 || len(b.Events()) != 2 {
		t.Errorf("expected both observers to see 2 events, got %d and %d", len(a.Events()), len(b.Events()))
	}
}

// ─── Deferred / concurrency ────────────────────────────────────────────

func TestIssue_ReturnsBeforeTransportCompletes(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	tr := webclient.TransportFunc(func(_ context.Context, req *webclient.Request) (*webclient.Response, error) {
		<-release
		return &webclient.Response{Request: req, StatusCode: 200}, nil
	})
	c := newProdClient(t, tr, nil)

	call := c.Issue(context.Background(), webclient.Request{URL: "/health"})
	select {
	case <-call.Done():
		t.Fatal("call resolved before transport completed")
	default:
	}

	close(release)
	resp, err := call.Wait()
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("Wait: %v, %v", resp, err)
	}
	// A resolved call keeps returning the same result.
	again, err2 := call.Wait()
	if again != resp || err2 != nil {
		t.Error("Wait must be idempotent")
	}
}

func TestIssue_CallerCancellationDoesNotAbort(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	tr := webclient.TransportFunc(func(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &webclient.Response{Request: req, StatusCode: 200}, nil
	})
	c := newProdClient(t, tr, nil)

	ctx, cancel := context.WithCancel(context.Background())
	call := c.Issue(ctx, webclient.Request{URL: "/health"})
	<-started
	cancel()
	close(release)

	if _, err := call.Wait(); err != nil {
		t.Fatalf("call should complete despite cancellation: %v", err)
	}
}

func TestIssue_ConcurrentCalls(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTransport{}
	obs := &testutil.RecordingObserver{}
	c := newProdClient(t, tr, obs)

	const n = 20
	var wg sync.WaitGroup
	calls := make([]*webclient.Call, n)
	for i := 0; i < n; i++ {
		calls[i] = c.Issue(context.Background(), webclient.Request{URL: fmt.Sprintf("/files/%d", i)})
	}
	for _, call := range calls {
		wg.Add(1)
		go func(call *webclient.Call) {
			defer wg.Done()
			if _, err := call.Wait(); err != nil {
				t.Errorf("Wait: %v", err)
			}
		}(call)
	}
	wg.Wait()

	if tr.Count() != n {
		t.Errorf("expected %d dispatched requests, got %d", n, tr.Count())
	}
	if len(obs.Events()) != 2*n {
		t.Errorf("expected %d events, got %d", 2*n, len(obs.Events()))
	}
}
