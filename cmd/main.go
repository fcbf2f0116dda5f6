package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartgarden/internal/config"
	"smartgarden/internal/device"
	"smartgarden/internal/handlers"
	"smartgarden/internal/logger"
	"smartgarden/internal/metrics"
	"smartgarden/internal/models"
	"smartgarden/internal/repository"
	"smartgarden/internal/repository/db"
	"smartgarden/internal/server"
	"smartgarden/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load configs/config.yml, .env and SMARTGARDEN_* overrides
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	rec := metrics.New(cfg.Metrics, log)
	defer func() {
		if cerr := rec.Close(); cerr != nil {
			log.Warnw("failed to close metrics client", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		Device:       device.NewClient(cfg.Device.Timeout, log),
		Metrics:      rec,
		Log:          log,
		Thresholds:   cfg.Thresholds,
		DeviceADCMax: cfg.Device.ADCMax,
		Auth: service.AuthConfig{
			SigningKey:  cfg.Auth.SigningKey,
			TokenTTL:    cfg.Auth.TokenTTL,
			AllowSignUp: cfg.Auth.AllowSignUp,
		},
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bootstrap(ctx, cfg, repos, services, log); err != nil {
		log.Fatalw("startup failed", "err", err)
	}

	housekeeper, err := service.NewHousekeeper(services.Notices.(*service.NoticeService), cfg.Notices.Sweep, cfg.Notices.TTL, log)
	if err != nil {
		log.Fatalw("invalid notices.sweep schedule", "err", err, "spec", cfg.Notices.Sweep)
	}
	housekeeper.Start()
	defer housekeeper.Stop()

	// start acquisition scheduler
	go services.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// bootstrap restores the last applied thresholds, seeds the operator account and
// connects to the configured device.
func bootstrap(ctx context.Context, cfg *config.Config, repos *repository.Repository, services *service.Service, log *logger.Logger) error {
	if err := (service.AuthConfig{SigningKey: cfg.Auth.SigningKey}).Validate(); err != nil {
		return err
	}
	thresholds, err := startupThresholds(ctx, cfg, repos.ConfigRepo)
	if err != nil {
		return err
	}
	if _, adjustments, err := services.ApplyConfig(ctx, thresholds); err != nil {
		return err
	} else if len(adjustments) > 0 {
		log.Warnw("configured thresholds adjusted", "adjustments", adjustments)
	}

	if auth, ok := services.Authorization.(*service.AuthService); ok {
		created, err := auth.EnsureOperator(cfg.Auth.OperatorUsername, cfg.Auth.OperatorPassword)
		if err != nil {
			return err
		}
		if created {
			log.Infow("operator account created", "username", cfg.Auth.OperatorUsername)
		}
	}

	if cfg.Device.Endpoint != "" {
		if _, err := services.Connect(ctx, cfg.Device.Endpoint); err != nil {
			log.Warnw("could not connect to configured device; staying simulated",
				"endpoint", cfg.Device.Endpoint, "err", err)
		}
	}
	return nil
}

// startupThresholds prefers a previously stored config over the file defaults.
func startupThresholds(ctx context.Context, cfg *config.Config, repo repository.ConfigRepo) (models.ThresholdConfig, error) {
	stored, ok, err := repo.Load(ctx)
	if err != nil {
		return cfg.Thresholds, err
	}
	if ok {
		return stored, nil
	}
	return cfg.Thresholds, nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http server listening", "port", port)
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

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
