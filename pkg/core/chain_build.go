package core

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-dispatch/pkg/bundle"
	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
	"github.com/joeydtaylor/steeze-dispatch/pkg/dispatch"
	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-dispatch/pkg/rest"
	"github.com/joeydtaylor/steeze-dispatch/pkg/static"
	"go.uber.org/zap"
)

type ChainDeps struct {
	Auth     *auth.Middleware
	Observer dispatch.Observer
	Log      *zap.Logger
}

// BuildChain turns manifest handlers into a dispatch chain, in file order.
func BuildChain(cfg manifest.Config, d ChainDeps) (*dispatch.Chain, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	opts := []dispatch.Option{
		dispatch.WithLogger(log),
		dispatch.WithFallback(fallback(cfg.Server.FallbackStatus)),
	}
	if d.Observer != nil {
		opts = append(opts, dispatch.WithObserver(d.Observer))
	}
	chain := dispatch.NewChain(opts...)

	for i, mh := range cfg.Handlers {
		h, err := buildHandler(mh, d, log)
		if err != nil {
			return nil, fmt.Errorf("handler %d (%s): %w", i, mh.Name, err)
		}
		if err := chain.Add(h); err != nil {
			return nil, err
		}
		log.Info("handler registered",
			zap.Int("position", i),
			zap.String("name", h.Name()),
			zap.String("type", string(mh.Type)),
		)
	}
	chain.Freeze()
	return chain, nil
}

func buildHandler(mh manifest.Handler, d ChainDeps, log *zap.Logger) (dispatch.Handler, error) {
	switch mh.Type {
	case manifest.HandlerRest:
		cb, ok := rest.Lookup(mh.Callback)
		if !ok {
			return nil, fmt.Errorf("callback %q not registered", mh.Callback)
		}
		c, ok := codec.ByName(mh.Codec)
		if !ok {
			return nil, fmt.Errorf("codec %q unknown", mh.Codec)
		}
		opts := []rest.Option{
			rest.WithName(mh.Name),
			rest.WithCodec(c),
			rest.WithAuth(d.Auth),
			rest.WithGuard(auth.Guard{
				RequireAuth: mh.Guard.RequireAuth,
				Users:       mh.Guard.Users,
				Roles:       mh.Guard.Roles,
			}),
		}
		if mh.IgnoreMethod {
			opts = append(opts, rest.IgnoreMethod())
		}
		if mh.TimeoutMS > 0 {
			opts = append(opts, rest.WithTimeout(time.Duration(mh.TimeoutMS)*time.Millisecond))
		}
		if mh.LogBody {
			logger.AddBodyLogPaths(mh.Path)
		}
		return rest.New(mh.Method, mh.Path, cb, opts...)

	case manifest.HandlerStatic:
		l, err := loaderFor(mh)
		if err != nil {
			return nil, err
		}
		opts := []static.Option{
			static.WithName(mh.Name),
			static.WithPrefix(mh.Prefix),
			static.WithLogger(log),
			static.Send404(mh.SendNotFound()),
		}
		if mh.StrictMethods {
			opts = append(opts, static.StrictMethods())
		}
		return static.NewHandler(mh.Base, l, opts...), nil
	}
	return nil, fmt.Errorf("unknown handler type %q", mh.Type)
}

func loaderFor(mh manifest.Handler) (static.Loader, error) {
	kind, arg := mh.SourceParts()
	switch kind {
	case manifest.SourceDir:
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", mh.Source, err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("source %s: not a directory", mh.Source)
		}
		return static.FSLoader{FS: os.DirFS(arg)}, nil
	case manifest.SourceBundle:
		fsys, err := bundle.Lookup(arg)
		if err != nil {
			return nil, err
		}
		return static.FSLoader{FS: fsys}, nil
	}
	return nil, fmt.Errorf("source %q invalid", mh.Source)
}

func fallback(status int) http.Handler {
	if status == 0 {
		status = http.StatusNotFound
	}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp, _ := dispatch.Status(status).Response()
		resp.Write(w)
	})
}
