// pkg/rest/handler.go
package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
	"github.com/joeydtaylor/steeze-dispatch/pkg/dispatch"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dispatch/pkg/params"
)

// Callback is user code bound to a REST route.
type Callback func(ctx context.Context, req *Request) (dispatch.Result, error)

// Handler answers requests for one method and exact path, or for any
// method on that path when IgnoreMethod is set.
type Handler struct {
	name         string
	method       string
	path         string
	ignoreMethod bool
	cb           Callback
	codec        codec.Codec
	guard        auth.Guard
	auth         *auth.Middleware
	timeout      time.Duration
}

type Option func(*Handler)

func WithName(n string) Option           { return func(h *Handler) { h.name = n } }
func WithCodec(c codec.Codec) Option     { return func(h *Handler) { h.codec = c } }
func IgnoreMethod() Option               { return func(h *Handler) { h.ignoreMethod = true } }
func WithAuth(a *auth.Middleware) Option { return func(h *Handler) { h.auth = a } }
func WithGuard(g auth.Guard) Option      { return func(h *Handler) { h.guard = g } }

// WithTimeout bounds the callback's context. Zero means no limit.
func WithTimeout(d time.Duration) Option { return func(h *Handler) { h.timeout = d } }

// New binds cb to method and path. An empty method means GET.
func New(method, path string, cb Callback, opts ...Option) (*Handler, error) {
	if cb == nil {
		return nil, errors.New("rest: nil callback")
	}
	if path == "" {
		return nil, errors.New("rest: path is required")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	h := &Handler{
		method: method,
		path:   path,
		cb:     cb,
		codec:  codec.JSON,
	}
	for _, o := range opts {
		o(h)
	}
	if h.name == "" {
		if h.ignoreMethod {
			h.name = "ANY " + path
		} else {
			h.name = method + " " + path
		}
	}
	return h, nil
}

func (h *Handler) Name() string        { return h.name }
func (h *Handler) Method() string      { return h.method }
func (h *Handler) Path() string        { return h.path }
func (h *Handler) IgnoresMethod() bool { return h.ignoreMethod }

func (h *Handler) Matches(r *http.Request) bool {
	return Match(h.method, h.ignoreMethod, h.path, r)
}

// Parameters decodes the request data for this route: the query for GET,
// the body otherwise, and both merged (body wins) in ignore-method mode.
func (h *Handler) Parameters(r *http.Request) (params.Map, error) {
	return params.FromRequest(r, h.method, h.ignoreMethod)
}

func (h *Handler) Process(r *http.Request) (dispatch.Result, error) {
	if code := h.auth.Allow(r.Context(), h.guard); code != 0 {
		return dispatch.Status(code), nil
	}
	p, err := h.Parameters(r)
	if err != nil {
		return dispatch.Result{}, err
	}
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	return h.cb(ctx, &Request{HTTP: r.WithContext(ctx), Params: p, Codec: h.codec})
}
