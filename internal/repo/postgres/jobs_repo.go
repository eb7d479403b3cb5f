package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/contactly/contacthub/internal/jobs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobsRepo struct {
	pool *pgxpool.Pool
}

func NewJobsRepo(pool *pgxpool.Pool) *JobsRepo {
	return &JobsRepo{pool: pool}
}

func (r *JobsRepo) Create(ctx context.Context, j jobs.Job) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO email_jobs(
		id, type, payload, status, attempts, max_tries, run_at, locked_at, locked_by, last_error, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, NULL, NULL, $8, $9, $10
	)`,
		j.ID, string(j.Type), j.Payload, string(j.Status), j.Attempts, j.MaxTries, j.RunAt, j.LastError, j.CreatedAt, j.UpdatedAt)

	return err
}

// ClaimNext is a single-statement claim using the SKIP LOCKED pattern.
// Only claims jobs ready to run (pending, run_at <= now) that have not
// exceeded max_tries.
func (r *JobsRepo) ClaimNext(ctx context.Context, workerID string) (jobs.Job, error) {
	var j jobs.Job
	var typ, status string

	err := r.pool.QueryRow(ctx, `
		WITH next AS (
			SELECT id
			FROM email_jobs
			WHERE status = 'pending'
			  AND run_at <= NOW()
			  AND attempts < max_tries
			ORDER BY run_at ASC, created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE email_jobs
		SET status = 'processing',
		    locked_at = NOW(),
		    locked_by = $1,
		    updated_at = NOW()
		WHERE id = (SELECT id FROM next)
		RETURNING id, type, payload, status,
		          attempts, max_tries,
		          run_at, last_error, created_at, updated_at
	`, workerID).Scan(
		&j.ID, &typ, &j.Payload, &status,
		&j.Attempts, &j.MaxTries,
		&j.RunAt, &j.LastError, &j.CreatedAt, &j.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return jobs.Job{}, jobs.ErrJobNotFound // no job available
		}
		return jobs.Job{}, err
	}

	j.Type = jobs.JobType(typ)
	j.Status = jobs.JobStatus(status)
	return j, nil
}

func (r *JobsRepo) MarkDone(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE email_jobs
		SET status = 'succeeded',
			locked_at = NULL,
			locked_by = NULL,
			last_error = NULL,
			updated_at = NOW()
		WHERE id = $1
		`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

func (r *JobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE email_jobs
		SET status = 'failed',
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = $2,
		    updated_at = NOW()
		WHERE id = $1
	`, id, errMsg)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

// Reschedule returns a failed attempt to the pending pool for retry/backoff.
func (r *JobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE email_jobs
		SET status = 'pending',
		    attempts = attempts + 1,
		    run_at = $2,
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = $3,
		    updated_at = NOW()
		WHERE id = $1
	`, id, runAt, errMsg)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}
