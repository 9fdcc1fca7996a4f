package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/harnessviz/internal/server"
	"github.com/matzehuels/harnessviz/pkg/cache"
)

// apiKeyPrefix keeps API artifacts apart from CLI artifacts in a shared cache.
const apiKeyPrefix = "api:"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build and render API over HTTP",
		Long: `Serve starts an HTTP server with these routes:

  GET  /healthz      liveness check
  POST /v1/build     YAML harness documents in, JSON (DOT, BOM, links) out
  POST /v1/render    YAML in, one artifact out (?format=svg|png|pdf|gv|json|tsv|csv)

Rendered artifacts are cached in Redis when cache.redis_addr is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, cache.NewScopedKeyer(cache.NewDefaultKeyer(), apiKeyPrefix))
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Listening on %s", addr)
			return server.New(runner, cfg, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
