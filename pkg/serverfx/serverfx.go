package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core"
	"github.com/joeydtaylor/steeze-dispatch/pkg/dispatch"
	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-dispatch/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // e.g., APP_MANIFEST
	DefaultManifest string // e.g., "manifest.toml"
	ManifestPath    string // wins over env + default when set
	ListenEnv       string // SERVER_LISTEN_ADDRESS
	DefaultListen   string // ":4000"
	ListenAddr      string // wins over env + default when set
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithManifestPath(path string) Option    { return func(c *Config) { c.ManifestPath = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }
func WithListenAddr(addr string) Option      { return func(c *Config) { c.ListenAddr = addr } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

func defaultConfig() Config {
	return Config{
		Service:         "steeze-dispatch",
		ManifestEnv:     "APP_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		DefaultListen:   ":4000",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

// ManifestPath resolves the manifest the way Module does: an explicit path,
// then the manifest env var, then the default.
func ManifestPath(opts ...Option) string {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg.manifestPath()
}

func (c Config) manifestPath() string {
	if c.ManifestPath != "" {
		return c.ManifestPath
	}
	return envOr(c.ManifestEnv, c.DefaultManifest)
}

func (c Config) listenAddr() string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	return envOr(c.ListenEnv, c.DefaultListen)
}

// Module returns a complete Fx option set; add app-specific fx.Invoke(...) alongside.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		// Core middleware
		logger.Module,
		auth.Module,
		fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
		fx.Provide(metrics.ProvideDispatchObserver),
		// Router impl
		fx.Provide(httpx.NewChi),
		// Config into DI
		fx.Supply(cfg),
		fx.Provide(provideManifest),
		fx.Provide(provideChain),
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ParamTags(``, ``, ``, `name:"metrics"`, ``),
			fx.ResultTags(`name:"app"`),
		)),
		// Lifecycle
		fx.Invoke(registerHooks),
	)
}

// ---------- Providers ----------

func provideManifest(cfg Config, zl *zap.Logger) (manifest.Config, error) {
	path := cfg.manifestPath()
	man, err := manifest.Load(path)
	if err != nil {
		zl.Error("manifest load failed", zap.Error(err), zap.String("path", path))
		return manifest.Config{}, err
	}
	zl.Info("manifest loaded", zap.String("path", path), zap.Int("handlers", len(man.Handlers)))
	return man, nil
}

func provideChain(man manifest.Config, a *auth.Middleware, obs dispatch.Observer, zl *zap.Logger) (*dispatch.Chain, error) {
	chain, err := core.BuildChain(man, core.ChainDeps{Auth: a, Observer: obs, Log: zl})
	if err != nil {
		zl.Error("chain build failed", zap.Error(err))
		return nil, err
	}
	for _, h := range man.Handlers {
		switch h.Type {
		case manifest.HandlerRest:
			metrics.ExactPaths(h.Path)
		case manifest.HandlerStatic:
			metrics.CollapsePrefixes(h.Prefix)
		}
	}
	return chain, nil
}

func provideRouter(
	chain *dispatch.Chain,
	a *auth.Middleware,
	lm *logger.Middleware,
	/* name:"metrics" */ m http.Handler,
	r httpx.Router,
) http.Handler {
	return core.BuildRouter(chain, core.BuildDeps{
		Auth:    a,
		LogMW:   lm,
		Metrics: m,
		Router:  r,
	})
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, sd fx.Shutdowner, cfg Config, d serverDeps) {
	addr := cfg.listenAddr()
	cert := os.Getenv(cfg.TLSCertEnv)
	key := os.Getenv(cfg.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// Bind synchronously so a taken port fails startup.
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service),
					zap.String("addr", ln.Addr().String()),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ServeTLS(ln, cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Error("server failed", zap.Error(err))
						_ = sd.Shutdown(fx.ExitCode(1))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", cfg.Service),
					zap.String("addr", ln.Addr().String()),
				)
				srv.TLSConfig = nil
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Error("server failed", zap.Error(err))
						_ = sd.Shutdown(fx.ExitCode(1))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
