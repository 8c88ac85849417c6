package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"trisetra/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append([]Option{WithSleeper(func(time.Duration) {})}, opts...)
	return NewClient(Config{Endpoint: server.URL + "/"}, opts...)
}

func TestSendDefaultsToPutWithToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/tasks/42/status/completed" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("token") != DefaultToken {
			t.Errorf("token = %q", q.Get("token"))
		}
		if q.Get("notify") != "true" || q.Get("helpText") != "needs more views" {
			t.Errorf("unexpected query %v", q)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Error("missing request id header")
		}
		_, _ = w.Write([]byte(`{}`))
	})

	env, err := client.Send(context.Background(), "tasks/42/status/completed", Request{
		Query: map[string]string{"notify": "true", "helpText": "needs more views"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(env) != 0 {
		t.Fatalf("expected empty envelope, got %v", env)
	}
}

func TestSendKeepsCallerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "override" {
			t.Errorf("token = %q", got)
		}
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	env, err := client.Send(context.Background(), "tasks/1", Request{Method: "get", Query: map[string]string{"token": "override"}})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if env.Message() != "ok" {
		t.Fatalf("message = %q", env.Message())
	}
}

func TestURLSortsQueryAndTrimsSlashes(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://svc/cvat/", Token: "abc"})
	got := client.URL("/tasks/7", map[string]string{"notify": "false", "helpText": "a b"})
	want := "http://svc/cvat/tasks/7?helpText=a+b&notify=false&token=abc"
	if got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestURLReplacesBlankToken(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://svc/cvat", Token: "abc"})
	for _, blank := range []string{"", "   "} {
		got := client.URL("tasks/7", map[string]string{"token": blank})
		if want := "http://svc/cvat/tasks/7?token=abc"; got != want {
			t.Fatalf("URL with token %q = %q, want %q", blank, got, want)
		}
	}
}

func TestRemoteErrorCarriesEnvelopeMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid status"}`))
	})
	_, err := client.Put(context.Background(), "tasks/1/status/bogus", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var remoteErr *Error
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if remoteErr.Kind != KindRemote || remoteErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected error %+v", remoteErr)
	}
	if err.Error() != "invalid status" {
		t.Fatalf("message = %q", err.Error())
	}
	if !errors.Is(err, services.ErrRemote) {
		t.Fatal("expected ErrRemote marker")
	}
}

func TestRemoteErrorGenericMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`not json`))
	})
	_, err := client.Put(context.Background(), "tasks/9", nil)
	if err == nil || err.Error() != "request failed with status 404" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestParseErrorOnMalformedSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["not","an","object"]`))
	})
	_, err := client.Get(context.Background(), "tasks/1", nil)
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if services.Kind(err) != "parse" {
		t.Fatalf("kind = %q", services.Kind(err))
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := NewClient(Config{Endpoint: endpoint}, WithRetryMaxAttempts(1))
	_, err := client.Get(context.Background(), "tasks/1", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var delays []time.Duration
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"work_order":{"status":"annotated"}}`))
	}, WithSleeper(func(d time.Duration) { delays = append(delays, d) }))

	env, err := client.Get(context.Background(), "tasks/5", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !env.Has("work_order") {
		t.Fatalf("expected work_order in %v", env)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if len(delays) != 2 || delays[0] != 250*time.Millisecond || delays[1] != 500*time.Millisecond {
		t.Fatalf("delays = %v", delays)
	}
}

func TestGetStopsAfterAttemptCap(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := client.Get(context.Background(), "tasks/5", nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != defaultRetryAttempts {
		t.Fatalf("calls = %d, want %d", calls.Load(), defaultRetryAttempts)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})
	if _, err := client.Get(context.Background(), "tasks/5", nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestWritesAreSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := client.Put(context.Background(), "tasks/5/generate-blend", nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"message":"queued","redirect_url":"http://x"}`))
	})
	env, err := client.Post(context.Background(), "tasks/1/notes", nil, map[string]string{"note": "hi"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	var decoded struct {
		Message     string `json:"message"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := env.Decode(&decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Message != "queued" || decoded.RedirectURL != "http://x" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestRequestIDFromContextIsReused(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(requestIDHeader); got != "req-1" {
			t.Errorf("request id = %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	})
	ctx := services.WithRequestID(context.Background(), "req-1")
	if _, err := client.Get(ctx, "tasks/1", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestBackoffDelayIsCapped(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 3*time.Second))
	cases := map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 3 * time.Second, 6: 3 * time.Second}
	for attempt, want := range cases {
		if got := client.backoffDelay(attempt); got != want {
			t.Fatalf("backoffDelay(%d) = %s, want %s", attempt, got, want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("2"); !ok || d != 2*time.Second {
		t.Fatalf("parseRetryAfter(2) = %s, %v", d, ok)
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("expected invalid value to be rejected")
	}
}
