package cli

import (
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fish0048-ai/my-ai-coach/internal/api"
	coachmcp "github.com/fish0048-ai/my-ai-coach/internal/mcp"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytics as a JSON HTTP API",
	Long: `Serve the analytics over HTTP:

  GET  /health
  POST /stats    {"start_date", "end_date", "field", "workouts"?}
  GET  /trend?metric=weight&scale=weekly
  GET  /records
  GET  /cycle?weeks=12`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the analytics MCP server over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout so an assistant can
call calculate_stats, get_personal_records, get_training_cycle and get_trend.
Logs go to stderr and the log file.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr from the config)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := e.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return api.NewServer(addr, e.query).Serve(ctx)
}

func runMCP(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, logToStderr)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("mcp: serving over stdio")
	return coachmcp.NewServer(e.query).Run(ctx, &mcp.StdioTransport{})
}
