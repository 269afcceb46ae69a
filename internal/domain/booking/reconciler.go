package booking

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// ReconcileJob rewrites room availability flags from the reservation ledger and
// sweeps expired in-memory negotiations.
type ReconcileJob struct {
	repo  Repository
	store *MemoryNegotiationStore
}

// NewReconcileJob creates reconcile job. store is nil when negotiations live in Redis.
func NewReconcileJob(repo Repository, store *MemoryNegotiationStore) *ReconcileJob {
	return &ReconcileJob{repo: repo, store: store}
}

// Schedule registers the job to run now and then every interval
func (j *ReconcileJob) Schedule(s gocron.Scheduler, interval time.Duration) (gocron.Job, error) {
	return s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.run),
		gocron.WithName("booking-reconcile"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
}

func (j *ReconcileJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to reconcile room availability")
	}
}

// RunOnce reconciles immediately and returns how many room flags changed
func (j *ReconcileJob) RunOnce(ctx context.Context) (int64, error) {
	fixed, err := j.repo.ReconcileAvailability(ctx)
	if err != nil {
		return 0, err
	}
	if fixed > 0 {
		log.Info().Int64("rooms", fixed).Msg("Reconciled drifted room availability flags")
	}

	if j.store != nil {
		if n := j.store.Sweep(); n > 0 {
			log.Debug().Int("negotiations", n).Msg("Swept expired negotiations")
		}
	}
	return fixed, nil
}
