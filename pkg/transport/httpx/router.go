// pkg/transport/httpx/router.go
package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router is the slice of an HTTP router the dispatch layer sits behind.
// transport/httpx.NewChi implements this.
type Router interface {
	Get(path string, h http.Handler)
	// Fallthrough receives every request no explicit route claimed,
	// whatever its method.
	Fallthrough(h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Mux() http.Handler
}

// chiRouter is our default Router backed by github.com/go-chi/chi.
type chiRouter struct{ r *chi.Mux }

// NewChi returns a Chi-backed Router.
func NewChi() Router { return &chiRouter{r: chi.NewRouter()} }

func (c *chiRouter) Get(path string, h http.Handler)           { c.r.Method(http.MethodGet, path, h) }
func (c *chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }
func (c *chiRouter) Mux() http.Handler                         { return c.r }

func (c *chiRouter) Fallthrough(h http.Handler) {
	c.r.NotFound(h.ServeHTTP)
	c.r.MethodNotAllowed(h.ServeHTTP)
}
