package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pgexplorer/pgexplorer/internal/logger"
	"github.com/pgexplorer/pgexplorer/internal/tools"
)

const serverName = "pgexplorer"

// Config carries what the transports need beyond the tool dependencies.
type Config struct {
	Version  string
	HTTPAddr string
}

func newMCPServer(version string, deps *tools.Deps) *mcp.Server {
	impl := &mcp.Implementation{Name: serverName, Version: version}
	s := mcp.NewServer(impl, nil)
	tools.RegisterTools(s, deps)
	return s
}

// RunStdio serves MCP over stdin/stdout until ctx is done.
func RunStdio(ctx context.Context, cfg Config, deps *tools.Deps) error {
	s := newMCPServer(cfg.Version, deps)
	logger.Info("MCP server running on stdio", "databases", deps.Registry.Len())
	return s.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over the streamable HTTP transport, with info and
// health endpoints alongside it. The transport handles its own keepalive
// pings; the health endpoint only reads registry counts.
func RunHTTP(ctx context.Context, cfg Config, deps *tools.Deps) error {
	s := newMCPServer(cfg.Version, deps)
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"name":      serverName,
			"version":   cfg.Version,
			"protocol":  "mcp",
			"databases": deps.Registry.Len(),
			"status":    "running",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":     "healthy",
			"databases":  deps.Registry.Len(),
			"current_db": deps.Registry.Current(),
		})
	})
	r.Handle("/mcp", handler)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("MCP server listening", "addr", cfg.HTTPAddr, "databases", deps.Registry.Len())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
