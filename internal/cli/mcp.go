package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/originality/internal/mcp"
)

var mcpPort int

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server",
	Long: `Mcp exposes the check_originality and segment_text tools over the Model
Context Protocol. It speaks stdio by default; --port serves streamable HTTP on
localhost instead.

Example:
  originality mcp
  originality mcp --port 8391`,
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

		srv, err := mcp.NewServer(p)
		if err != nil {
			return err
		}

		if mcpPort > 0 {
			addr := fmt.Sprintf("127.0.0.1:%d", mcpPort)
			fmt.Fprintf(os.Stderr, "MCP server listening on http://%s\n", addr)
			return srv.RunHTTP(ctx, addr)
		}
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().IntVar(&mcpPort, "port", 0, "serve streamable HTTP on this port instead of stdio")
}
