package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// JobFunc is one scheduled unit of work.
type JobFunc func(ctx context.Context) error

type job struct {
	name string
	spec string
	run  JobFunc
}

// Scheduler runs named jobs on cron specs and records their outcome.
type Scheduler struct {
	cron    *cron.Cron
	metrics *metrics.CronJobMetrics

	mu     sync.Mutex
	jobs   map[string]job
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. jobMetrics may be nil.
func New(jobMetrics *metrics.CronJobMetrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		metrics: jobMetrics,
		jobs:    make(map[string]job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a job. spec accepts standard five-field expressions and @every descriptors.
func (s *Scheduler) Register(name, spec string, run JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	j := job{name: name, spec: spec, run: run}
	if _, err := s.cron.AddFunc(spec, func() { s.execute(s.ctx, j) }); err != nil {
		logger.Error("Failed to add cron job", err, map[string]interface{}{
			"job":  name,
			"spec": spec,
		})
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.jobs[name] = j
	return nil
}

// RunNow executes a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j job) error {
	start := time.Now()
	logger.Info("Starting scheduled job", map[string]interface{}{
		"job": j.name,
	})

	err := j.run(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveDuration(j.name, elapsed)

	if err != nil {
		s.metrics.IncFailure(j.name)
		logger.Error("Scheduled job failed", err, map[string]interface{}{
			"job":         j.name,
			"duration_ms": elapsed.Milliseconds(),
		})
		return err
	}

	s.metrics.IncSuccess(j.name)
	logger.Info("Scheduled job completed", map[string]interface{}{
		"job":         j.name,
		"duration_ms": elapsed.Milliseconds(),
	})
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started", map[string]interface{}{
		"jobs": len(s.jobs),
	})
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler...", nil)
	s.cancel()
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped", nil)
}
