package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/cardroomlabs/cardroom/internal/server"
)

type CLI struct {
	Config   string `short:"c" help:"Path to HCL config file" default:"cardroom.hcl"`
	Addr     string `short:"a" help:"Override listen address (host:port)"`
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error)"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)

	cfg, err := server.LoadConfig(cli.Config)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cli.LogLevel != "" {
		cfg.Server.LogLevel = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config", "error", err)
	}

	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		log.Fatal("Invalid log level", "level", cfg.Server.LogLevel)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})

	// Game engine logging goes to a file so the console stays readable
	zlog := zerolog.Nop()
	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal("Failed to open log file", "path", cfg.Server.LogFile, "error", err)
		}
		defer f.Close()
		zlog = zerolog.New(f).With().Timestamp().Logger()
	}

	srv, err := server.NewServer(cfg, logger, zlog, quartz.NewReal())
	if err != nil {
		log.Fatal("Failed to build server", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cli.Addr != "" {
		// -addr wins over the config file
		host, port, ok := splitAddr(cli.Addr)
		if !ok {
			log.Fatal("Invalid address", "addr", cli.Addr)
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}

	logger.Info("Cardroom starting", "addr", cfg.Address(), "rooms", len(cfg.Rooms))
	if err := srv.Run(ctx); err != nil {
		log.Fatal("Server error", "error", err)
	}
	logger.Info("Shutdown complete")
	kctx.Exit(0)
}

// splitAddr parses host:port, allowing ":8080" for all interfaces
func splitAddr(addr string) (string, int, bool) {
	var host string
	var port int
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			host = addr[:i]
			if _, err := fmt.Sscanf(addr[i+1:], "%d", &port); err != nil {
				return "", 0, false
			}
			return host, port, port > 0
		}
	}
	return "", 0, false
}
