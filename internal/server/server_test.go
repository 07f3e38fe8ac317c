package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type pingHandler struct{}

func (pingHandler) Mount(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func newTestRouter(buf *bytes.Buffer) http.Handler {
	return NewRouter(RouterOptions{Logger: log.New(buf)}, pingHandler{})
}

func TestRouter(t *testing.T) {
	t.Run("mounts handlers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(&bytes.Buffer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
		if rec.Header().Get(middleware.RequestIDHeader) == "" {
			t.Error("expected a request id header")
		}
	})

	t.Run("trailing slash", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(&bytes.Buffer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for trailing slash, got %d", rec.Code)
		}
	})

	t.Run("not found is JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(&bytes.Buffer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"detail"`) {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(&bytes.Buffer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("recovers panics and logs them", func(t *testing.T) {
		var buf bytes.Buffer
		rec := httptest.NewRecorder()
		newTestRouter(&buf).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "/panic") {
			t.Errorf("expected request log line, got %q", buf.String())
		}
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()

		newTestRouter(&bytes.Buffer{}).ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") == "" {
			t.Errorf("expected CORS headers, got %v", rec.Header())
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogger(log.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tea", nil))

	out := buf.String()
	for _, want := range []string{"WARN", "/tea", "418"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output %q", want, out)
		}
	}
}

func TestServerServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	srv := New(ln.Addr().String(), newTestRouter(&bytes.Buffer{}), time.Second, log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected shutdown error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
