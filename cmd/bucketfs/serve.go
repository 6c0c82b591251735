package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/mcp-protocol/schema"
	mcpsrv "github.com/viant/mcp/server"

	bmcp "github.com/viant/bucketfs/mcp"
	"github.com/viant/bucketfs/service"
)

func serveCmd(args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (required)")
	mcpAddr := flags.String("mcp-addr", "", "MCP server address (default from config or 127.0.0.1:6161)")
	metricsLog := flags.Bool("metrics-log", false, "log mcp metric lines")
	verbose := flags.Bool("verbose", false, "verbose logging")
	flags.Parse(args)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *configPath == "" {
		log.Fatal("serve: config file is required (-config)")
	}
	cfg, err := service.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	addr := resolveMCPAddr(*mcpAddr, cfg)

	svc := newServiceFromConfig(ctx, cfg, *verbose)
	defer func() { _ = svc.Close() }()

	server, err := mcpsrv.New(
		mcpsrv.WithImplementation(schema.Implementation{Name: "bucketfs-mcp", Version: "0.1.0"}),
		mcpsrv.WithNewHandler(bmcp.NewHandler(svc, *metricsLog)),
		mcpsrv.WithEndpointAddress(addr),
		mcpsrv.WithRootRedirect(true),
		mcpsrv.WithStreamableURI("/mcp"),
	)
	if err != nil {
		log.Fatal(err)
	}

	server.UseStreamableHTTP(true)
	httpServer := server.HTTP(ctx, addr)
	httpServer.ReadHeaderTimeout = 10 * time.Second
	httpServer.ReadTimeout = 60 * time.Second
	httpServer.WriteTimeout = 60 * time.Second
	httpServer.IdleTimeout = 120 * time.Second

	log.Printf("bucketfs-mcp listening on %s", httpServer.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	cancel()
	log.Printf("shutdown signal received: %v", sig)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Printf("bucketfs-mcp stopped")
}

func resolveMCPAddr(flagAddr string, cfg *service.Config) string {
	if flagAddr != "" {
		return flagAddr
	}
	if cfg != nil {
		if cfg.MCPServer.Addr != "" {
			if cfg.MCPServer.Port > 0 {
				return fmt.Sprintf("%s:%d", cfg.MCPServer.Addr, cfg.MCPServer.Port)
			}
			return cfg.MCPServer.Addr
		}
		if cfg.MCPServer.Port > 0 {
			return fmt.Sprintf("127.0.0.1:%d", cfg.MCPServer.Port)
		}
	}
	return "127.0.0.1:6161"
}
