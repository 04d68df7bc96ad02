// Package worker runs the background counter reconciler.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"socialnet/internal/metrics"
	"socialnet/internal/repository"
)

// DefaultRunTimeout bounds a single reconciliation pass.
const DefaultRunTimeout = 5 * time.Minute

// Reconciler periodically recomputes denormalized counters from the rows they summarize.
type Reconciler struct {
	repo repository.CounterRepository
	log  logrus.FieldLogger

	mu   sync.Mutex // one pass at a time
	cron *cron.Cron
	ctx  context.Context
	stop context.CancelFunc
}

func NewReconciler(repo repository.CounterRepository, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{repo: repo, log: log}
}

// RunOnce reconciles every counter and returns the corrected row counts.
func (r *Reconciler) RunOnce(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, DefaultRunTimeout)
	defer cancel()

	start := time.Now()
	corrected, err := r.repo.Reconcile(ctx)
	if err != nil {
		r.log.WithError(err).Error("counter reconciliation failed")
		return nil, err
	}
	metrics.RecordReconcile(corrected, time.Since(start))

	fields := logrus.Fields{"duration_ms": time.Since(start).Milliseconds()}
	var total int64
	for counter, n := range corrected {
		fields[counter] = n
		total += n
	}
	if total > 0 {
		r.log.WithFields(fields).Warn("counter drift corrected")
	} else {
		r.log.WithFields(fields).Debug("counters consistent")
	}
	return corrected, nil
}

// Start runs one pass immediately and then schedules passes with a cron spec
// such as "@every 1h". An empty schedule disables periodic runs.
func (r *Reconciler) Start(ctx context.Context, schedule string) error {
	r.ctx, r.stop = context.WithCancel(ctx)

	if _, err := r.RunOnce(r.ctx); err != nil {
		r.log.WithError(err).Warn("startup reconciliation failed, continuing")
	}

	if schedule == "" {
		r.log.Info("periodic counter reconciliation disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{r.log})))
	if _, err := c.AddFunc(schedule, func() {
		_, _ = r.RunOnce(r.ctx)
	}); err != nil {
		r.stop()
		return fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	c.Start()
	r.cron = c

	r.log.WithField("schedule", schedule).Info("counter reconciler started")
	return nil
}

// Stop cancels in-flight work and waits for a running pass to finish.
func (r *Reconciler) Stop() {
	if r.stop != nil {
		r.stop()
	}
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	r.log.Info("counter reconciler stopped")
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kv(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(kv(keysAndValues)).Error(msg)
}

func kv(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
