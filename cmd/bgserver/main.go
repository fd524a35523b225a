// Command bgserver runs the backgammon rules server.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/internal/config"
	"github.com/yourusername/bgrules/internal/storage/sqlite"
	"github.com/yourusername/bgrules/pkg/api"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment
	flag.StringVar(&cfg.Host, "host", cfg.Host, "Host to bind to (use 0.0.0.0 for all interfaces)")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite file for the game archive (empty disables it)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Development logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bgserver v%s\n", version)
		os.Exit(0)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	serverCfg := api.DefaultConfig()
	serverCfg.Host = cfg.Host
	serverCfg.Port = cfg.Port
	serverCfg.ReadTimeout = cfg.ReadTimeout
	serverCfg.WriteTimeout = cfg.WriteTimeout
	serverCfg.IdleTimeout = cfg.IdleTimeout
	serverCfg.MaxGames = cfg.MaxGames

	if cfg.DBPath != "" {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			log.Fatalw("open archive", "path", cfg.DBPath, "error", err)
		}
		defer store.Close()
		serverCfg.Archive = store
		log.Infow("archive enabled", "path", cfg.DBPath)
	}

	server := api.NewServer(serverCfg, version, log)
	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatalw("server error", "error", err)
	}
}
