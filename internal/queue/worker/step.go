package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/geocoder89/classhub/internal/domain/job"
	"github.com/geocoder89/classhub/internal/jobs"
	"github.com/geocoder89/classhub/internal/notifications"
)

// ProcessOne claims and runs a single job. The bool reports whether a job
// was claimed at all, so the caller knows when the queue is drained.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
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
	secs := time.Since(start).Seconds()

	if err != nil {
		result := w.handleFailure(ctx, j, err)
		w.observeJob(j.Type, result, secs)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observeJob(j.Type, "failed", secs)
		return true, err
	}

	w.observeJob(j.Type, "done", secs)
	return true, nil
}

func (w *Worker) observeJob(jobType, result string, secs float64) {
	if w.prom == nil {
		return
	}

	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(secs)
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	switch j.Type {
	case jobs.TypeEnrollmentReceipt:
		p, err := jobs.DecodeEnrollmentReceipt(j.Payload)

		if err != nil {
			return err
		}

		return w.notifier.SendEnrollmentReceipt(ctx, notifications.SendEnrollmentReceiptInput{
			Email:     p.Email,
			PaymentID: p.PaymentID,
			Price:     p.Price,
			ClassIDs:  p.ClassIDs,
		})

	default:
		return fmt.Errorf("%w: %s", jobs.ErrUnknownJobType, j.Type)
	}
}

// handleFailure decides between retry and terminal failure. Bad payloads and
// unknown types fail permanently; provider errors retry with backoff until
// the attempt budget runs out. The returned string is the outcome label.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) string {
	permanent := errors.Is(execErr, jobs.ErrInvalidPayload) ||
		errors.Is(execErr, jobs.ErrUnknownJobType)

	if permanent || j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			log.Printf("mark failed error: %v", err)
		}
		return "failed"
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		log.Printf("reschedule error: %v", err)
	}
	return "retry"
}
