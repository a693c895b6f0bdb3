package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"postboard/internal/api"
	"postboard/internal/app"
	"postboard/internal/auth"
	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/handlers"
	"postboard/internal/logging"
	"postboard/internal/metrics"
	"postboard/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}

	dbc, err := db.Open(cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Fatal("open session database")
	}
	defer dbc.Close()

	if err := db.Migrate(context.Background(), dbc); err != nil {
		log.WithError(err).Fatal("migrate session database")
	}

	sessions := auth.NewManager(dbc, cfg.Session.MaxAge, cfg.Session.CookieSecure)
	registry := app.NewRegistry(metrics.SetLiveStores, store.Logger(log), metrics.StoreMiddleware())
	client := api.New(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, log)
	limiter := handlers.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)

	h := handlers.New(handlers.Options{
		Registry:     registry,
		Sessions:     sessions,
		API:          client,
		Limiter:      limiter,
		Log:          log,
		FetchTimeout: cfg.API.FetchTimeout,
	})

	// Expired sessions take their stores with them; idle clients lose their buckets.
	c := cron.New()
	_, err = c.AddFunc("@every "+cfg.Session.CleanupInterval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ids, err := sessions.Cleanup(ctx)
		if err != nil {
			log.WithError(err).Error("session cleanup")
			return
		}
		registry.Drop(ids...)
		pruned := limiter.Prune(cfg.Session.CleanupInterval)
		if len(ids) > 0 || pruned > 0 {
			log.WithFields(logrus.Fields{"expired": len(ids), "limiters": pruned}).Info("sessions cleaned up")
		}
	})
	if err != nil {
		log.WithError(err).Fatal("schedule session cleanup")
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Server.Addr, "api": cfg.API.BaseURL}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("stopped")
}
