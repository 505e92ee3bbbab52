package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/geocoder89/classhub/internal/domain/job"
	"github.com/geocoder89/classhub/internal/notifications"
	"github.com/geocoder89/classhub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	WorkerID     string
	PollInterval time.Duration
	LockTTL      time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	prom     *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		prom:     prom,
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

// Run polls until the context is cancelled. Stale processing jobs are swept
// back to pending on each tick so a crashed peer's work gets picked up.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.setReady(true)
	defer w.setReady(false)

	for {
		select {
		case <-ctx.Done():
			log.Println("worker received shutdown signal")
			return nil

		case <-ticker.C:
			if n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL); err != nil {
				log.Printf("requeue stale error: %v", err)
			} else if n > 0 {
				log.Printf("requeued %d stale jobs", n)
			}

			// drain everything runnable before sleeping again
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					log.Printf("process error: %v", err)
					break
				}

				if !processed {
					break
				}
			}
		}
	}
}
