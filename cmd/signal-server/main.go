package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dd0wney/cluso-signal/pkg/api"
	"github.com/dd0wney/cluso-signal/pkg/broadcast"
	"github.com/dd0wney/cluso-signal/pkg/config"
	"github.com/dd0wney/cluso-signal/pkg/history"
	"github.com/dd0wney/cluso-signal/pkg/logging"
	"github.com/dd0wney/cluso-signal/pkg/metrics"
	"github.com/dd0wney/cluso-signal/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides configuration)")
	flag.Parse()

	log := logging.With(logging.Component("main"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("configuration error", logging.Error(err))
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	logging.DefaultLogger().SetLevel(logging.ParseLevel(cfg.LogLevel))

	registry := metrics.Default()
	opts := []api.Option{api.WithRegistry(registry)}

	if cfg.Broadcast.Enabled {
		publisher, err := broadcast.New(cfg.Broadcast.ListenAddr, cfg.Broadcast.Compress, registry)
		if err != nil {
			log.Error("failed to start broadcaster", logging.Error(err))
			os.Exit(1)
		}
		defer publisher.Close()
		opts = append(opts, api.WithPublisher(publisher))
		log.Info("broadcasting timings", logging.String("addr", cfg.Broadcast.ListenAddr))
	}

	if cfg.History.Enabled {
		store, err := history.NewStore(context.Background(), cfg.History.DatabaseURL)
		if err != nil {
			log.Error("failed to connect history store", logging.Error(err))
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, api.WithStore(store))
		log.Info("timing history enabled")
	}

	apiServer, err := api.NewServer(cfg, opts...)
	if err != nil {
		log.Error("failed to build API server", logging.Error(err))
		os.Exit(1)
	}
	defer apiServer.Shutdown()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := server.NewGracefulServer(addr, apiServer.Routes())
	srv.SetConfigReloadFunc(func() error {
		reloaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		return apiServer.ReloadConfig(reloaded)
	})

	log.Info("signal optimizer ready",
		logging.String("addr", addr),
		logging.Bool("auth", cfg.Auth.Enabled()),
		logging.Bool("broadcast", cfg.Broadcast.Enabled),
		logging.Bool("history", cfg.History.Enabled))

	if err := srv.Start(); err != nil {
		log.Error("server failed", logging.Error(err))
		os.Exit(1)
	}
}
