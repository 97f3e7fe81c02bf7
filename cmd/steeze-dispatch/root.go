package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core"
	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
	"github.com/joeydtaylor/steeze-dispatch/pkg/serverfx"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const version = "0.1.0"

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "steeze-dispatch",
		Short:         "Callback dispatch server for REST handlers and bundled static files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("steeze-dispatch version {{.Version}}\n")
	root.AddCommand(newServeCmd(), newCheckCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var manifestPath, listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the manifest and serve the handler chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := manifestOpts(manifestPath)
			if listen != "" {
				opts = append(opts, serverfx.WithListenAddr(listen))
			}
			app := fx.New(serverfx.Module(opts...))
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file (default $APP_MANIFEST or manifest.toml)")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default $SERVER_LISTEN_ADDRESS or :4000)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var manifestPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the manifest and print the chain in dispatch order",
		RunE: func(cmd *cobra.Command, args []string) error {
			man, err := manifest.Load(serverfx.ManifestPath(manifestOpts(manifestPath)...))
			if err != nil {
				return err
			}
			chain, err := core.BuildChain(man, core.ChainDeps{})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tTYPE\tNAME\tDETAIL")
			handlers := chain.Handlers()
			for i, mh := range man.Handlers {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, mh.Type, handlers[i].Name(), detail(mh))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file (default $APP_MANIFEST or manifest.toml)")
	return cmd
}

// manifestOpts maps the --manifest flag; empty leaves env and default to serverfx.
func manifestOpts(path string) []serverfx.Option {
	if path == "" {
		return nil
	}
	return []serverfx.Option{serverfx.WithManifestPath(path)}
}

func detail(mh manifest.Handler) string {
	if mh.Type == manifest.HandlerRest {
		return "callback=" + mh.Callback
	}
	return fmt.Sprintf("source=%s base=%q send_404=%t", mh.Source, mh.Base, mh.SendNotFound())
}
