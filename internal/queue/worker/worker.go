package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/contactly/contacthub/internal/auth"
	"github.com/contactly/contacthub/internal/jobs"
	"github.com/contactly/contacthub/internal/notifications"
	"github.com/contactly/contacthub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (jobs.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	ShutdownGrace time.Duration
	// Base URL the verification link points at, e.g. http://localhost:8080
	PublicBaseURL string
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	tokens   *auth.Manager
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, tokens *auth.Manager, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		prom:     prom,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.setReady(true)
	defer w.setReady(false)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal", "worker_id", w.cfg.WorkerID)
			return nil

		case <-ticker.C:
			// drain everything that is ready before sleeping again
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.log.Error("process error", "err", err)
					break
				}

				if !processed {
					break
				}
			}
		}
	}
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) error {
	decoded, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	if err := jobs.ValidatePayload(j.Type, decoded); err != nil {
		return err
	}

	switch p := decoded.(type) {
	case jobs.VerificationEmailPayload:
		token, err := w.tokens.IssueVerificationToken(p.ContactID, p.FirstName)

		if err != nil {
			return err
		}

		return w.notifier.SendVerificationEmail(ctx, notifications.SendVerificationEmailInput{
			Email:     p.Email,
			Name:      p.FirstName,
			ContactID: p.ContactID,
			VerifyURL: fmt.Sprintf("%s/verification?token=%s", w.cfg.PublicBaseURL, token),
		})

	default:
		return jobs.ErrInvalidJobType
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
