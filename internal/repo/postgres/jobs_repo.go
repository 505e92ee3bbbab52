package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/classhub/internal/domain/job"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{pool: pool, prom: prom}
}

func (r *JobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const jobColumns = `id, type, payload, status, attempts, max_attempts,
	run_at, locked_at, locked_by, last_error, idempotency_key, created_at, updated_at`

// CreateTx enqueues inside the caller's transaction. A duplicate idempotency
// key is swallowed by the ON CONFLICT clause rather than surfaced as an
// error; a unique violation would abort the surrounding transaction, which is
// exactly what a retried enqueue must not do.
func (r *JobsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)

	err := r.observe("jobs.create_tx", func() error {
		_, e := tx.Exec(ctx,
			`INSERT INTO jobs (id, type, payload, status, attempts, max_attempts,
				run_at, locked_at, locked_by, last_error, idempotency_key, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			 ON CONFLICT (idempotency_key) DO NOTHING`,
			j.ID, j.Type, j.Payload, string(j.Status), j.Attempts, j.MaxAttempts,
			j.RunAt, j.LockedAt, j.LockedBy, j.LastError, j.IdempotencyKey, j.CreatedAt, j.UpdatedAt,
		)
		return e
	})

	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

// ClaimNext claims the oldest runnable job with the SKIP LOCKED pattern so
// concurrent workers never double-claim.
func (r *JobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	var j job.Job
	var status string

	err := r.observe("jobs.claim_next", func() error {
		return r.pool.QueryRow(ctx, `
			WITH next AS (
				SELECT id
				FROM jobs
				WHERE status = 'pending'
				  AND run_at <= NOW()
				  AND attempts < max_attempts
				ORDER BY run_at ASC, created_at ASC
				FOR UPDATE SKIP LOCKED
				LIMIT 1
			)
			UPDATE jobs
			SET status = 'processing',
			    locked_at = NOW(),
			    locked_by = $1,
			    updated_at = NOW()
			WHERE id = (SELECT id FROM next)
			RETURNING `+jobColumns,
			workerID,
		).Scan(
			&j.ID, &j.Type, &j.Payload, &status,
			&j.Attempts, &j.MaxAttempts,
			&j.RunAt, &j.LockedAt, &j.LockedBy,
			&j.LastError, &j.IdempotencyKey, &j.CreatedAt, &j.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}

	j.Status = job.Status(status)

	return j, nil
}

func (r *JobsRepo) MarkDone(ctx context.Context, id string) error {
	var rowsAffected int64

	err := r.observe("jobs.mark_done", func() error {
		tag, e := r.pool.Exec(ctx,
			`UPDATE jobs
			 SET status = 'done',
			     locked_at = NULL,
			     locked_by = NULL,
			     last_error = NULL,
			     updated_at = NOW()
			 WHERE id = $1`,
			id,
		)

		if e != nil {
			return e
		}

		rowsAffected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return job.ErrNotFound
	}

	return nil
}

func (r *JobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	var rowsAffected int64

	err := r.observe("jobs.mark_failed", func() error {
		tag, e := r.pool.Exec(ctx,
			`UPDATE jobs
			 SET status = 'failed',
			     locked_at = NULL,
			     locked_by = NULL,
			     last_error = $2,
			     updated_at = NOW()
			 WHERE id = $1`,
			id, errMsg,
		)

		if e != nil {
			return e
		}

		rowsAffected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return job.ErrNotFound
	}

	return nil
}

// Reschedule bumps attempts and moves run_at forward for the retry.
func (r *JobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	var rowsAffected int64

	err := r.observe("jobs.reschedule", func() error {
		tag, e := r.pool.Exec(ctx,
			`UPDATE jobs
			 SET status = 'pending',
			     attempts = attempts + 1,
			     run_at = $2,
			     locked_at = NULL,
			     locked_by = NULL,
			     last_error = $3,
			     updated_at = NOW()
			 WHERE id = $1`,
			id, runAt, errMsg,
		)

		if e != nil {
			return e
		}

		rowsAffected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return job.ErrNotFound
	}

	return nil
}

// RequeueStaleProcessing frees jobs whose worker died while holding the lock.
func (r *JobsRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	secs := int64(lockTTL.Seconds())

	if secs <= 0 {
		secs = 30
	}

	var rows int64

	err := r.observe("jobs.requeue_stale", func() error {
		tag, e := r.pool.Exec(ctx,
			`UPDATE jobs
			 SET status = 'pending',
			     locked_at = NULL,
			     locked_by = NULL,
			     updated_at = NOW()
			 WHERE status = 'processing'
			   AND locked_at IS NOT NULL
			   AND locked_at < NOW() - ($1 * INTERVAL '1 second')`,
			secs,
		)

		if e != nil {
			return e
		}

		rows = tag.RowsAffected()
		return nil
	})

	return rows, err
}
