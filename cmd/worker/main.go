package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/contactly/contacthub/internal/auth"
	"github.com/contactly/contacthub/internal/config"
	"github.com/contactly/contacthub/internal/db"
	"github.com/contactly/contacthub/internal/notifications"
	"github.com/contactly/contacthub/internal/observability"
	"github.com/contactly/contacthub/internal/queue/worker"
	"github.com/contactly/contacthub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	jobsRepo := postgres.NewJobsRepo(pool)

	var notifier notifications.Notifier

	switch cfg.Notifier {
	case "smtp":
		smtpCfg, err := notifications.SMTPConfigFromEnv()

		if err != nil {
			log.Error("smtp config invalid", "err", err)
			os.Exit(1)
		}

		notifier = notifications.NewSMTPNotifier(smtpCfg)
	default:
		// dev fallback, prints the verification link instead of mailing it
		notifier = notifications.NewLogNotifier()
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.VerifyTTL())

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	w := worker.New(worker.Config{
		PollInterval:  100 * time.Millisecond,
		WorkerID:      workerID,
		ShutdownGrace: 10 * time.Second,
		PublicBaseURL: cfg.PublicBaseURL,
	}, jobsRepo, tokens, notifier, log, prom)

	healthSrv := &http.Server{
		Addr:              ":9091",
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("worker has started", "worker_id", workerID, "notifier", cfg.Notifier)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown failed", "err", err)
	}

	log.Info("worker shutdown complete")
}
