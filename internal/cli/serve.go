package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/pipeline"
	"github.com/ppiankov/originality/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve checks over HTTP",
	Long: `Serve starts an HTTP API around the check runner:

  POST   /v1/checks          start a check, streams NDJSON progress events
  GET    /v1/checks/current  progress of the active check
  DELETE /v1/checks/current  stop the active check after the current unit
  POST   /v1/segments        segment text without checking it
  GET    /health

Only one check runs at a time; a second POST /v1/checks gets 409 Conflict.

Example:
  originality serve --addr 127.0.0.1:8390
  curl -N -d '{"text":"Some text to check."}' localhost:8390/v1/checks`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(0)
		defer cancel()

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		return server.New(p, os.Stderr).ListenAndServe(ctx, cfg.Server.Addr)
	},
}

// newPipeline builds a pipeline that logs to stderr
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	return pipeline.NewPipeline(cfg, os.Stderr)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
