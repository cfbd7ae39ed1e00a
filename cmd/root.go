package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgexplorer/pgexplorer/internal/config"
	"github.com/pgexplorer/pgexplorer/internal/executor"
	"github.com/pgexplorer/pgexplorer/internal/logger"
	"github.com/pgexplorer/pgexplorer/internal/registry"
	"github.com/pgexplorer/pgexplorer/internal/server"
	"github.com/pgexplorer/pgexplorer/internal/tools"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "pgexplorer",
	Short: "Multi-database MCP server for PostgreSQL/MySQL exploration",
	Long: `An MCP server exposing database introspection and query tools against
one or more named database connections, switchable at runtime.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("conn", "c", "", "Connection string for the primary database (overrides env vars)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "Optional log file path (logs also go to stderr)")
	rootCmd.PersistentFlags().Int64("log-max-size", 10, "Log file size in MB before rotation")

	stdioCmd := &cobra.Command{
		Use:   "stdio",
		Short: "Run over stdio transport (for local MCP clients)",
		RunE:  runStdioServer,
	}
	rootCmd.AddCommand(stdioCmd)

	httpCmd := &cobra.Command{
		Use:   "http",
		Short: "Run over HTTP transport (for remote clients)",
		RunE:  runHTTPServer,
	}
	httpCmd.Flags().String("addr", "localhost:8000", "HTTP listen address")
	rootCmd.AddCommand(httpCmd)
}

func bootstrap(cmd *cobra.Command) (server.Config, *tools.Deps, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return server.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.Initialize(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
	}); err != nil {
		return server.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}

	// A registry without connections is not fatal; connections can still be
	// added dynamically through add_database_connection.
	reg := registry.New()
	reg.Load(cfg)

	deps := &tools.Deps{
		Registry: reg,
		Executor: executor.New(reg),
	}
	return server.Config{Version: version, HTTPAddr: cfg.HTTPAddr}, deps, nil
}

func runStdioServer(cmd *cobra.Command, args []string) error {
	srvCfg, deps, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer logger.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.RunStdio(ctx, srvCfg, deps)
}

func runHTTPServer(cmd *cobra.Command, args []string) error {
	srvCfg, deps, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer logger.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.RunHTTP(ctx, srvCfg, deps)
}
