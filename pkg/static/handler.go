// pkg/static/handler.go
package static

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/joeydtaylor/steeze-dispatch/pkg/dispatch"
	"go.uber.org/zap"
)

// Handler serves bundled resources for every request under Prefix.
type Handler struct {
	name          string
	prefix        string
	strictMethods bool
	resolver      *Resolver
	log           *zap.Logger
}

type Option func(*Handler)

func WithName(n string) Option        { return func(h *Handler) { h.name = n } }
func WithPrefix(p string) Option      { return func(h *Handler) { h.prefix = p } }
func WithLogger(l *zap.Logger) Option { return func(h *Handler) { h.log = l } }

// StrictMethods limits the handler to GET and HEAD.
func StrictMethods() Option { return func(h *Handler) { h.strictMethods = true } }

// Send404 toggles whether a missing resource ends the chain with 404
// (default) or defers to the next handler.
func Send404(b bool) Option { return func(h *Handler) { h.resolver.Send404 = b } }

func NewHandler(base string, l Loader, opts ...Option) *Handler {
	h := &Handler{
		prefix:   "/",
		resolver: NewResolver(base, l),
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(h)
	}
	if h.name == "" {
		h.name = "static " + h.prefix
	}
	return h
}

func (h *Handler) Name() string { return h.name }

func (h *Handler) Resolver() *Resolver { return h.resolver }

func (h *Handler) Matches(r *http.Request) bool {
	if h.strictMethods && r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return strings.HasPrefix(r.URL.Path, h.prefix)
}

func (h *Handler) Process(r *http.Request) (dispatch.Result, error) {
	res, err := h.resolver.Resolve(r.URL.Path)
	if err != nil {
		return dispatch.Result{}, err
	}
	h.log.Debug("static lookup",
		zap.String("handler", h.name),
		zap.String("key", res.Key),
		zap.Stringer("outcome", res.Kind),
	)

	switch res.Kind {
	case BadRequest:
		return dispatch.Status(http.StatusBadRequest), nil
	case NotFound:
		return dispatch.Status(http.StatusNotFound), nil
	case Deferred:
		return dispatch.Deferred(), nil
	}
	return dispatch.Handled(dispatch.Response{
		Status:      http.StatusOK,
		ContentType: dispatch.NegotiateContentType(r.Header.Get("Accept"), guessType(res.Key)),
		Body:        res.Body,
	}), nil
}

func guessType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}
