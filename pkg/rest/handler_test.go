package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
	"github.com/joeydtaylor/steeze-dispatch/pkg/dispatch"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dispatch/pkg/params"
)

func echo(_ context.Context, req *Request) (dispatch.Result, error) {
	return req.Reply(http.StatusOK, req.Params)
}

func mustNew(t *testing.T, method, path string, cb Callback, opts ...Option) *Handler {
	t.Helper()
	h, err := New(method, path, cb, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name         string
		method, path string
		ignore       bool
		reqMethod    string
		reqTarget    string
		want         bool
	}{
		{"exact", "GET", "/status", false, "GET", "/status", true},
		{"query ignored", "GET", "/status", false, "GET", "/status?x=10", true},
		{"method case", "get", "/status", false, "GET", "/status", true},
		{"wrong method", "GET", "/status", false, "POST", "/status", false},
		{"trailing slash", "GET", "/status", false, "GET", "/status/", false},
		{"prefix only", "GET", "/status", false, "GET", "/status/extra", false},
		{"path case", "GET", "/status", false, "GET", "/Status", false},
		{"ignore method", "GET", "/status", true, "DELETE", "/status", true},
		{"ignore method still checks path", "GET", "/status", true, "GET", "/other", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(tc.reqMethod, tc.reqTarget, nil)
			if got := Match(tc.method, tc.ignore, tc.path, r); got != tc.want {
				t.Fatalf("Match = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	h := mustNew(t, "", "/status", echo)
	if h.Method() != http.MethodGet || h.Name() != "GET /status" {
		t.Fatalf("method=%q name=%q", h.Method(), h.Name())
	}
	if h2 := mustNew(t, "post", "/any", echo, IgnoreMethod()); h2.Name() != "ANY /any" || h2.Method() != http.MethodPost {
		t.Fatalf("name=%q method=%q", h2.Name(), h2.Method())
	}
	if _, err := New("GET", "/x", nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
	if _, err := New("GET", "", echo); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStatusEndToEnd(t *testing.T) {
	h := mustNew(t, http.MethodGet, "/status", echo)
	r := httptest.NewRequest(http.MethodGet, "/status?x=10", nil)
	if !h.Matches(r) {
		t.Fatal("expected match")
	}
	p, err := h.Parameters(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 1 || p["x"] != "10" {
		t.Fatalf("params = %v", p)
	}

	res, err := h.Process(r)
	if err != nil {
		t.Fatal(err)
	}
	resp, ok := res.Response()
	if !ok {
		t.Fatal("expected handled")
	}
	if resp.ContentType != "application/json" || string(resp.Body) != `{"x":"10"}` {
		t.Fatalf("resp = %s %s", resp.ContentType, resp.Body)
	}
}

func TestPostReadsBody(t *testing.T) {
	h := mustNew(t, http.MethodPost, "/submit", echo, WithCodec(codec.Form))
	r := httptest.NewRequest(http.MethodPost, "/submit?q=ignored", strings.NewReader("b=2&a=1"))
	res, err := h.Process(r)
	if err != nil {
		t.Fatal(err)
	}
	resp, _ := res.Response()
	if string(resp.Body) != "a=1&b=2" {
		t.Fatalf("body = %q", resp.Body)
	}
}

func TestCallbackDecodesJSONBody(t *testing.T) {
	type order struct {
		Item string `json:"item"`
		Qty  int    `json:"qty"`
	}
	cb := func(_ context.Context, req *Request) (dispatch.Result, error) {
		var o order
		if err := req.Decode(&o); err != nil {
			return req.Text(http.StatusBadRequest, err.Error()), nil
		}
		o.Qty *= 2
		return req.Reply(http.StatusCreated, o)
	}
	h := mustNew(t, http.MethodPost, "/orders", cb)

	r := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"item":"tea","qty":2}`))
	res, err := h.Process(r)
	if err != nil {
		t.Fatal(err)
	}
	resp, _ := res.Response()
	if resp.Status != http.StatusCreated || string(resp.Body) != `{"item":"tea","qty":4}` {
		t.Fatalf("resp = %d %s", resp.Status, resp.Body)
	}

	r = httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"item":"tea","colour":"red"}`))
	res, _ = h.Process(r)
	if resp, _ = res.Response(); resp.Status != http.StatusBadRequest {
		t.Fatalf("unknown field: status = %d", resp.Status)
	}
}

func TestIgnoreMethodMergesParameters(t *testing.T) {
	h := mustNew(t, http.MethodGet, "/any", echo, IgnoreMethod())
	r := httptest.NewRequest(http.MethodPost, "/any?a=1&b=2", strings.NewReader("b=3&c=4"))
	p, err := h.Parameters(r)
	if err != nil {
		t.Fatal(err)
	}
	want := params.Map{"a": "1", "b": "3", "c": "4"}
	if len(p) != len(want) {
		t.Fatalf("params = %v", p)
	}
	for k, v := range want {
		if p[k] != v {
			t.Fatalf("params[%q] = %q, want %q", k, p[k], v)
		}
	}
}

func TestDeclineAndErrors(t *testing.T) {
	declining := mustNew(t, http.MethodGet, "/x", func(_ context.Context, req *Request) (dispatch.Result, error) {
		return req.Decline()
	})
	res, err := declining.Process(httptest.NewRequest(http.MethodGet, "/x", nil))
	if err != nil || !res.IsDeferred() {
		t.Fatalf("res=%v err=%v", res, err)
	}

	boom := errors.New("boom")
	failing := mustNew(t, http.MethodGet, "/x", func(context.Context, *Request) (dispatch.Result, error) {
		return dispatch.Result{}, boom
	})
	if _, err := failing.Process(httptest.NewRequest(http.MethodGet, "/x", nil)); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestGuard(t *testing.T) {
	a := auth.New(auth.Config{})
	h := mustNew(t, http.MethodGet, "/admin", echo, WithAuth(a), WithGuard(auth.Guard{Roles: []string{"ops"}}))

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	res, _ := h.Process(r)
	if resp, _ := res.Response(); resp.Status != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", resp.Status)
	}

	r = r.WithContext(auth.WithUser(r.Context(), auth.User{Username: "eve", Role: auth.Role{Name: "dev"}}))
	res, _ = h.Process(r)
	if resp, _ := res.Response(); resp.Status != http.StatusForbidden {
		t.Fatalf("wrong role status = %d", resp.Status)
	}

	r = r.WithContext(auth.WithUser(r.Context(), auth.User{Username: "oz", Role: auth.Role{Name: "ops"}}))
	res, _ = h.Process(r)
	if resp, _ := res.Response(); resp.Status != http.StatusOK {
		t.Fatalf("ops status = %d", resp.Status)
	}
}

func TestTimeoutBoundsCallbackContext(t *testing.T) {
	var deadline, sameCtx bool
	cb := func(ctx context.Context, req *Request) (dispatch.Result, error) {
		_, deadline = ctx.Deadline()
		sameCtx = req.HTTP.Context() == ctx
		return req.Decline()
	}
	h := mustNew(t, http.MethodGet, "/slow", cb, WithTimeout(50*time.Millisecond))
	if _, err := h.Process(httptest.NewRequest(http.MethodGet, "/slow", nil)); err != nil {
		t.Fatal(err)
	}
	if !deadline || !sameCtx {
		t.Fatalf("deadline=%v sameCtx=%v", deadline, sameCtx)
	}

	h = mustNew(t, http.MethodGet, "/slow", cb)
	_, _ = h.Process(httptest.NewRequest(http.MethodGet, "/slow", nil))
	if deadline {
		t.Fatal("no timeout configured, but callback context has a deadline")
	}
}

func TestTextNegotiatesAccept(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html,*/*")
	req := &Request{HTTP: r, Codec: codec.JSON}
	resp, _ := req.Text(http.StatusOK, "<p>hi</p>").Response()
	if resp.ContentType != "text/html" {
		t.Fatalf("content type = %q", resp.ContentType)
	}
}

func TestRegistry(t *testing.T) {
	Register("test.echo", echo)
	if _, ok := Lookup("test.echo"); !ok {
		t.Fatal("expected registered callback")
	}
	if _, ok := Lookup("test.missing"); ok {
		t.Fatal("unexpected callback")
	}
}
