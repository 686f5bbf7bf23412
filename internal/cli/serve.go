package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/courseshelf/courseshelf/internal/mcp"
	"github.com/courseshelf/courseshelf/internal/slogutil"
)

// RunServe starts the MCP server on stdio. Stdout carries the
// protocol, so all logging goes to stderr.
func RunServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath, _ = cmd.Flags().GetString("db")
	}

	logger := slogutil.NewLogger(os.Stderr, slogutil.LevelFromString(cfg.LogLevel))
	logger.Info("starting MCP server", "name", mcp.ServerName, "version", mcp.ServerVersion, "db", cfg.DBPath)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	server, err := mcp.NewServer(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		return nil
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
		}
		return err
	}
}
