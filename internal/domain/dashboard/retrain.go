package dashboard

import (
	"errors"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrRetrainRunning  = errors.New("model retraining already running")
	ErrRetrainDisabled = errors.New("model retraining is not configured")
)

// Retrainer launches the model training command in the background
type Retrainer struct {
	command []string
	dir     string

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewRetrainer creates retrainer. dir is the working directory of the command.
func NewRetrainer(command []string, dir string) *Retrainer {
	return &Retrainer{command: command, dir: dir}
}

// Trigger starts the command and returns without waiting for it
func (r *Retrainer) Trigger() error {
	if len(r.command) == 0 {
		return ErrRetrainDisabled
	}
	r.wg.Add(1)
	if !r.running.CompareAndSwap(false, true) {
		r.wg.Done()
		return ErrRetrainRunning
	}

	cmd := exec.Command(r.command[0], r.command[1:]...)
	cmd.Dir = r.dir
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		r.running.Store(false)
		r.wg.Done()
		return err
	}

	started := time.Now()
	log.Info().Strs("command", r.command).Int("pid", cmd.Process.Pid).Msg("Model retraining started")

	go func() {
		defer r.wg.Done()
		defer r.running.Store(false)

		err := cmd.Wait()
		event := log.Info()
		if err != nil {
			event = log.Error().Err(err).Str("output", tail(output.String(), 2000))
		}
		event.Dur("took", time.Since(started)).Msg("Model retraining finished")
	}()
	return nil
}

// Running reports whether a retrain is in progress
func (r *Retrainer) Running() bool {
	return r.running.Load()
}

// Wait blocks until a started retrain exits
func (r *Retrainer) Wait() {
	r.wg.Wait()
}

// Schedule registers a cron job that triggers retraining
func (r *Retrainer) Schedule(s gocron.Scheduler, cron string) (gocron.Job, error) {
	return s.NewJob(
		gocron.CronJob(cron, false),
		gocron.NewTask(func() {
			if err := r.Trigger(); err != nil {
				log.Warn().Err(err).Msg("Scheduled retraining skipped")
			}
		}),
		gocron.WithName("ai-retrain"),
	)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
