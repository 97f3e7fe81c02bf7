package core

import (
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/steeze-dispatch/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/steeze-dispatch/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth    *auth.Middleware
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
}

// BuildRouter puts the dispatch chain behind the shared middleware stack.
// /metrics and /ping are answered by the router; everything else goes to
// the chain.
func BuildRouter(chain http.Handler, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(d.Auth))
		}
		// metrics collector that references auth state without copying it
		r.Use(hmetrics.Collect(d.Auth))
	} else {
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(nil))
		}
		r.Use(hmetrics.Collect(nil))
	}

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}
	r.Fallthrough(chain)
	return r.Mux()
}
