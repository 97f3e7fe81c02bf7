package logger

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/auth"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetAccessLogger(zap.New(core))
	AddBodyLogPaths("/submit")

	var seenBody string
	h := (&Middleware{}).Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := new(strings.Builder)
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		b.Write(buf[:n])
		seenBody = b.String()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	r := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("a=1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if seenBody != "a=1" {
		t.Fatalf("downstream body = %q", seenBody)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["status"] != int64(http.StatusCreated) || ctx["uri"] != "/submit" || ctx["responseSize"] != int64(2) {
		t.Errorf("fields = %v", ctx)
	}
	if ctx["requestData"] != "a=1" {
		t.Errorf("requestData = %v", ctx["requestData"])
	}
}

func TestAccessLogUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetAccessLogger(zap.New(core))

	a := auth.New(auth.Config{})
	h := (&Middleware{}).Middleware(a)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	r := httptest.NewRequest(http.MethodGet, "/private", nil)
	r = r.WithContext(auth.WithUser(r.Context(), auth.User{Username: "alice", Role: auth.Role{Name: "ops"}}))
	h.ServeHTTP(httptest.NewRecorder(), r)

	ctx := logs.All()[0].ContextMap()
	if ctx["username"] != "alice" || ctx["role"] != "ops" || ctx["isAuthenticated"] != true {
		t.Errorf("fields = %v", ctx)
	}
	if _, ok := ctx["requestData"]; ok {
		t.Error("GET bodies must not be logged")
	}
}

var errBody = errors.New("connection reset")

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errBody }

func TestBodyReadErrorReachesHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetAccessLogger(zap.New(core))
	AddBodyLogPaths("/upload")

	var readErr error
	h := (&Middleware{}).Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	r := httptest.NewRequest(http.MethodPost, "/upload", failingBody{})
	r.ContentLength = 3
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if !errors.Is(readErr, errBody) {
		t.Fatalf("handler read err = %v, want %v", readErr, errBody)
	}
	if _, ok := logs.All()[0].ContextMap()["requestData"]; ok {
		t.Error("failed body must not be logged")
	}
}

func TestBodyNotBufferedOffAllowlist(t *testing.T) {
	SetAccessLogger(zap.NewNop())

	body := io.NopCloser(strings.NewReader("a=1"))
	var same bool
	h := (&Middleware{}).Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		same = r.Body == body
	}))

	r := httptest.NewRequest(http.MethodPost, "/not-listed", nil)
	r.Body = body
	r.ContentLength = 3
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if !same {
		t.Fatal("body of a path off the allowlist must reach the handler untouched")
	}
}
