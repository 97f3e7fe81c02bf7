// pkg/dispatch/chain.go
package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Handler claims a subset of requests and answers them.
// Process may return Deferred to pass the request down the chain.
type Handler interface {
	Name() string
	Matches(r *http.Request) bool
	Process(r *http.Request) (Result, error)
}

// Outcome labels what happened when a handler was asked to process.
type Outcome string

const (
	OutcomeHandled   Outcome = "handled"
	OutcomeDeferred  Outcome = "deferred"
	OutcomeError     Outcome = "error"
	OutcomeUnmatched Outcome = "unmatched" // chain-level: nobody answered
)

// Observer receives dispatch outcomes. handler is "" for OutcomeUnmatched.
type Observer interface {
	Observe(handler string, o Outcome)
}

var ErrFrozen = errors.New("dispatch: chain is frozen")

// Chain is an ordered, append-only list of handlers. It is built at startup
// and frozen on first use; after that it is read-only and safe for
// concurrent requests.
type Chain struct {
	mu       sync.Mutex
	frozen   bool
	handlers []Handler

	observer Observer
	log      *zap.Logger
	fallback http.Handler
}

type Option func(*Chain)

func WithObserver(o Observer) Option  { return func(c *Chain) { c.observer = o } }
func WithLogger(l *zap.Logger) Option { return func(c *Chain) { c.log = l } }

// WithFallback sets what ServeHTTP does when every handler defers.
func WithFallback(h http.Handler) Option { return func(c *Chain) { c.fallback = h } }

func NewChain(opts ...Option) *Chain {
	c := &Chain{
		log: zap.NewNop(),
		fallback: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			resp, _ := Status(http.StatusNotFound).Response()
			resp.Write(w)
		}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Add appends handlers in registration order.
func (c *Chain) Add(hs ...Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return ErrFrozen
	}
	for _, h := range hs {
		if h == nil {
			return errors.New("dispatch: nil handler")
		}
	}
	c.handlers = append(c.handlers, hs...)
	return nil
}

// Freeze makes the chain read-only. It is idempotent.
func (c *Chain) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

// Handlers returns the registered handlers in order.
func (c *Chain) Handlers() []Handler {
	return append([]Handler(nil), c.snapshot()...)
}

func (c *Chain) Len() int { return len(c.snapshot()) }

func (c *Chain) snapshot() []Handler {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
	return c.handlers
}

// Dispatch walks the chain in order. The first matching handler that does
// not defer wins. A handler error stops the walk and is returned as-is
// (wrapped with the handler name). If every handler defers, or none
// matches, the result is Deferred and the caller picks the fallback.
func (c *Chain) Dispatch(r *http.Request) (Result, error) {
	for _, h := range c.snapshot() {
		if !h.Matches(r) {
			continue
		}
		res, err := h.Process(r)
		if err != nil {
			c.observe(h.Name(), OutcomeError)
			return Result{}, fmt.Errorf("handler %s: %w", h.Name(), err)
		}
		if res.IsHandled() {
			c.observe(h.Name(), OutcomeHandled)
			return res, nil
		}
		c.observe(h.Name(), OutcomeDeferred)
	}
	c.observe("", OutcomeUnmatched)
	return Deferred(), nil
}

// ServeHTTP adapts the chain to net/http.
func (c *Chain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := c.Dispatch(r)
	if err != nil {
		c.log.Error("dispatch failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		resp, _ := Status(http.StatusInternalServerError).Response()
		resp.Write(w)
		return
	}
	if resp, ok := res.Response(); ok {
		resp.Write(w)
		return
	}
	c.fallback.ServeHTTP(w, r)
}

func (c *Chain) observe(handler string, o Outcome) {
	if c.observer != nil {
		c.observer.Observe(handler, o)
	}
}
