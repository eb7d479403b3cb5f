package worker

import (
	"context"
	"errors"
	"time"

	"github.com/contactly/contacthub/internal/jobs"
)

// ProcessOne claims and runs a single job. The bool result reports
// whether a job was actually claimed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {

	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()

	err = w.execute(ctx, j)

	if err != nil {
		w.handleFailure(ctx, j, err)
		w.observe(j, "retry", start)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observe(j, "failed", start)
		return true, err
	}

	w.observe(j, "done", start)
	return true, nil
}

func (w *Worker) handleFailure(ctx context.Context, j jobs.Job, cause error) {
	// the claim already counts as an attempt
	attempts := j.Attempts + 1

	if attempts >= j.MaxTries {
		if err := w.repo.MarkFailed(ctx, j.ID, cause.Error()); err != nil {
			w.log.Error("mark failed error", "job_id", j.ID, "err", err)
		}

		w.log.Warn("job failed permanently", "job_id", j.ID, "type", j.Type, "attempts", attempts, "cause", cause)
		return
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, cause.Error()); err != nil {
		w.log.Error("reschedule error", "job_id", j.ID, "err", err)
		return
	}

	w.log.Info("job rescheduled", "job_id", j.ID, "type", j.Type, "attempts", attempts, "run_at", runAt)
}

func (w *Worker) observe(j jobs.Job, result string, start time.Time) {
	if w.prom == nil {
		return
	}

	w.prom.JobResults.WithLabelValues(string(j.Type), result).Inc()
	w.prom.JobDuration.WithLabelValues(string(j.Type), result).Observe(time.Since(start).Seconds())
}
