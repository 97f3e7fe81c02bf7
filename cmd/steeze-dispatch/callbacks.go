package main

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/joeydtaylor/steeze-dispatch/pkg/bundle"
	"github.com/joeydtaylor/steeze-dispatch/pkg/dispatch"
	"github.com/joeydtaylor/steeze-dispatch/pkg/rest"
)

//go:embed web
var webFS embed.FS

func init() {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	bundle.Register("builtin", sub)

	rest.Register("status", status)
	rest.Register("echo", echo)
}

func status(_ context.Context, req *rest.Request) (dispatch.Result, error) {
	return req.Reply(http.StatusOK, map[string]string{"status": "ok", "version": version})
}

// echo answers with the decoded parameters; useful to see merge precedence.
func echo(_ context.Context, req *rest.Request) (dispatch.Result, error) {
	return req.Reply(http.StatusOK, req.Params)
}
