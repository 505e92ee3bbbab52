package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/db"
	"github.com/geocoder89/classhub/internal/notifications"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/geocoder89/classhub/internal/queue/worker"
	"github.com/geocoder89/classhub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	bootCtx, bootCancel := config.WithTimeout(10 * time.Second)

	if err := db.EnsureSchema(bootCtx, pool); err != nil {
		bootCancel()
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}
	bootCancel()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	jobsRepo := postgres.NewJobsRepo(pool, prom)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	host, _ := os.Hostname()

	w := worker.New(worker.Config{
		WorkerID:     fmt.Sprintf("%s-%d", host, os.Getpid()),
		PollInterval: time.Second,
		LockTTL:      30 * time.Second,
	}, jobsRepo, notifier, prom)

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("worker health server starting", "port", cfg.Port)
		err := healthSrv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Info("worker shutting down")
		cancel()
	}()

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shCtx, shCancel := config.WithTimeout(5 * time.Second)
	defer shCancel()

	_ = healthSrv.Shutdown(shCtx)

	log.Info("worker shutdown complete")
}
