package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the service logger (system.log) and the access-log
// middleware, and flushes the logger on shutdown.
var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
	fx.Invoke(func(lc fx.Lifecycle, zl *zap.Logger) {
		lc.Append(fx.StopHook(func() { _ = zl.Sync() }))
	}),
)

func ProvideLoggerMiddleware() *Middleware { return &Middleware{} }
func ProvideLogger() *zap.Logger           { return NewLog("system.log") }
