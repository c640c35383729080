package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "portfolio/docs"
	"portfolio/internal/chat"
	"portfolio/internal/config"
	"portfolio/internal/handlers"
	"portfolio/internal/logger"
	"portfolio/internal/metrics"
	"portfolio/internal/repository"
	"portfolio/internal/repository/db"
	"portfolio/internal/server"
	"portfolio/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title                       Portfolio API
// @version                     1.0
// @description                 Portfolio content, guestbook, leads, reports and live chat.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load configs/config.yml, .env and PORTFOLIO_* overrides
	cfg, err := config.Load("configs", "config")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		SigningKey:        cfg.Auth.SigningKey,
		TokenTTL:          cfg.Auth.TokenTTL,
		ChatHistoryLimit:  cfg.Chat.HistoryLimit,
		ChatRetention:     cfg.Chat.Retention,
		ActivityRetention: cfg.Activity.Retention,
	}, log)

	m := metrics.New()
	hub := chat.NewHub(log)
	hub.OnConnections(m.ChatConnections)

	apiHandler := handlers.NewHandler(services, hub, log, handlers.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		PublicRate:     cfg.RateLimit.Public,
		Metrics:        m,
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)
	go services.Janitor.Run(ctx, cfg.Janitor.Interval)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server started", "port", cfg.Port)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop hub and janitor
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
