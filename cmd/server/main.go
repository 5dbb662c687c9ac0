package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"liarbar/internal/api"
	"liarbar/internal/config"
	"liarbar/internal/game/card"
	"liarbar/internal/logger"
	"liarbar/internal/network"
	"liarbar/internal/room"
	"liarbar/internal/services/cluster"
	"liarbar/internal/services/events"
	"liarbar/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $LIARBAR_CONFIG)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "liarbar: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// 1. CONFIG AND LOGGING
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded",
		zap.String("addr", cfg.Addr),
		zap.String("publicUrl", cfg.PublicURL),
		zap.Int("cardsPerPlayer", cfg.CardsPerPlayer),
		zap.Bool("consul", cfg.Consul.Enabled),
		zap.Bool("nats", cfg.NATS.URL != ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. PUBLIC EVENTS (optional)
	publisher := events.NewNop()
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, log)
		if err != nil {
			return err
		}
		publisher = natsPublisher
	}
	defer publisher.Close()

	// 3. GAME LOGIC
	registry := room.NewRegistry(room.WithIDGenerator(room.NanoIDGenerator(cfg.RoomIDLength)))
	game := session.NewGameHandler(registry, card.NewDealer(nil),
		session.WithDefaultCardsPerPlayer(cfg.CardsPerPlayer),
		session.WithPublisher(publisher),
		session.WithLogger(log))

	hub := network.NewHub(game, log)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	// 4. HTTP HANDLERS
	health := cluster.NewHealthAggregator()
	health.AddCheck("hub", func() error {
		if !hub.Running() {
			return network.ErrHubStopped
		}
		return nil
	})
	health.AddCheck("events", publisher.Healthy)

	router := api.NewRouter(api.Options{
		Exec:      hub,
		Rooms:     game,
		WS:        network.NewServer(hub, log),
		Health:    health.Handler(),
		Liveness:  cluster.NewBasicHealthHandler(),
		PublicURL: cfg.PublicURL,
		QRSize:    cfg.QRSize,
		Logger:    log,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: router}

	// 5. CONSUL REGISTRATION (optional)
	if cfg.Consul.Enabled {
		deregister, err := registerInConsul(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := deregister(); err != nil {
				log.Warn("consul deregistration failed", zap.Error(err))
			}
		}()
	}

	// 6. MAIN SERVER
	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		stop()
		<-hubDone
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	<-hubDone
	game.Close()
	return nil
}

func registerInConsul(cfg *config.Config, log *zap.Logger) (func() error, error) {
	_, portStr, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("addr %q: %w", cfg.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("addr %q: %w", cfg.Addr, err)
	}

	client, err := cluster.NewConsulClient(cfg.Consul.Addr, log)
	if err != nil {
		return nil, err
	}
	return cluster.Register(client, cluster.Registration{
		ServiceName: cfg.Consul.ServiceName,
		Host:        cfg.Consul.ServiceHost,
		Port:        port,
	}, log)
}
