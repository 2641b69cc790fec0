package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/weeklyreport/weeklyreport/internal/api"
	"github.com/weeklyreport/weeklyreport/internal/auth"
	"github.com/weeklyreport/weeklyreport/internal/mcpserver"
	"github.com/weeklyreport/weeklyreport/internal/sheet"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	var (
		transport string
		port      int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio or HTTP)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if transport != "" {
				a.cfg.Server.Transport = transport
			}
			if port != 0 {
				a.cfg.Server.HTTPPort = port
			}
			return serveRun(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "stdio|http, overrides server.transport")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port, overrides server.http_port")
	return cmd
}

func serveRun(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := sheet.WatchCredentials(ctx, a.reader, a.sheet); err != nil {
			slog.Warn("credentials watch disabled", "path", a.sheet.CredentialsFile, "err", err)
		}
	}()

	mcp := mcpserver.New(a.engine, a.format)

	slog.Info(programName+" starting",
		"version", mcpserver.Version,
		"transport", a.cfg.Server.Transport,
		"members", len(a.cfg.Roster),
	)

	switch a.cfg.Server.Transport {
	case "stdio":
		return serveStdio(ctx, mcp)
	case "http":
		return serveHTTP(ctx, a, mcp)
	default:
		return fmt.Errorf("unknown transport %q: want stdio|http", a.cfg.Server.Transport)
	}
}

func serveStdio(ctx context.Context, mcp *server.MCPServer) error {
	stdio := server.NewStdioServer(mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	slog.Info(programName + " shutting down")
	return nil
}

func serveHTTP(ctx context.Context, a *app, mcp *server.MCPServer) error {
	level := slog.LevelInfo
	if globalFlags.debug {
		level = slog.LevelDebug
	}
	accessLog := httplog.NewLogger(programName, httplog.Options{
		LogLevel:         level,
		JSON:             true,
		Concise:          true,
		MessageFieldName: "msg",
		Tags: map[string]string{
			"version": mcpserver.Version,
		},
	})

	authCfg := a.cfg.Server.Auth
	router := api.NewRouter(api.Options{
		Engine:      a.engine,
		Format:      a.format,
		Version:     mcpserver.Version,
		MCP:         server.NewStreamableHTTPServer(mcp),
		Metrics:     promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		Auth:        auth.APIKey(authCfg.Mode, authCfg.EffectiveHeader(), authCfg.Key()),
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Logger:      accessLog,
	})
	if authCfg.Mode == "apikey" && authCfg.Key() == "" {
		slog.Warn("auth mode is apikey but no key is set; requests are not authenticated",
			"key_env", authCfg.KeyEnv)
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", a.cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info(programName + " shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
