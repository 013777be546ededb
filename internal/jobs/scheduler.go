package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	DraftSweepJob     = "draft-sweep"
	CatalogWarmupJob  = "catalog-warmup"
	warmupTimeout     = 30 * time.Second
	defaultSweepEvery = time.Minute
	defaultWarmEvery  = 10 * time.Minute
)

// DraftSweeper drops expired drafts from an in-process draft store.
type DraftSweeper interface {
	Sweep(now time.Time) int
}

// CountriesRefresher reloads the cached customer country list.
type CountriesRefresher interface {
	RefreshCountries(ctx context.Context) ([]string, error)
}

// Config sets the job intervals; zero values fall back to the defaults.
type Config struct {
	SweepInterval  time.Duration
	WarmupInterval time.Duration
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	scheduler gocron.Scheduler
	sweeper   DraftSweeper
	catalog   CountriesRefresher
	now       func() time.Time
	logger    *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewScheduler registers the jobs. sweeper may be nil when drafts live in
// Redis, which expires them itself.
func NewScheduler(cfg Config, sweeper DraftSweeper, catalog CountriesRefresher, logger *zap.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler: scheduler,
		sweeper:   sweeper,
		catalog:   catalog,
		now:       time.Now,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}
	if err := s.registerJobs(cfg); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs(cfg Config) error {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepEvery
	}
	if cfg.WarmupInterval <= 0 {
		cfg.WarmupInterval = defaultWarmEvery
	}

	if s.sweeper != nil {
		if err := s.add(DraftSweepJob, cfg.SweepInterval, s.sweepDrafts); err != nil {
			return err
		}
	}
	if s.catalog != nil {
		if err := s.add(CatalogWarmupJob, cfg.WarmupInterval, s.warmCatalog); err != nil {
			return err
		}
	}

	s.logger.Info("registered background jobs", zap.Strings("jobs", s.Jobs()))
	return nil
}

func (s *Scheduler) add(name string, every time.Duration, task func()) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = job
	s.mu.Unlock()
	return nil
}

// Start starts the job scheduler
func (s *Scheduler) Start() {
	s.logger.Info("starting background job scheduler")
	s.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() error {
	s.logger.Info("stopping background job scheduler")
	return s.scheduler.Shutdown()
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow triggers the named job outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %s not registered", name)
	}
	return job.RunNow()
}

func (s *Scheduler) sweepDrafts() {
	if removed := s.sweeper.Sweep(s.now()); removed > 0 {
		s.logger.Debug("swept expired drafts", zap.Int("removed", removed))
	}
}

func (s *Scheduler) warmCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
	defer cancel()

	countries, err := s.catalog.RefreshCountries(ctx)
	if err != nil {
		s.logger.Warn("catalog warmup failed", zap.Error(err))
		return
	}
	s.logger.Debug("catalog warmed", zap.Int("countries", len(countries)))
}
