// internal/cli/serve.go
package cli

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"primerqc/internal/config"
	"primerqc/internal/metrics"
	"primerqc/internal/server"
	"primerqc/internal/version"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !strings.EqualFold(a.cfg.Log.Level, "debug") {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := server.New(a.cfg, a.log, metrics.New())
			if err := srv.Run(cmd.Context()); err != nil {
				return ioError(fmt.Errorf("serve: %w", err))
			}
			return nil
		},
	}
	d := config.Defaults()
	cmd.Flags().String("addr", d.Server.Addr, "listen address")
	cmd.Flags().Int("max-batch", d.Server.MaxBatch, "most primers accepted per request")
	a.bind(cmd.Flags(), map[string]string{
		"server.addr":      "addr",
		"server.max_batch": "max-batch",
	})
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "primerqc version %s\n", version.Version)
			return err
		},
	}
}
