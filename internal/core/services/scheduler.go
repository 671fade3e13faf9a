package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Sessions []domain.SessionBudget
	Pool     domain.QueryPool

	// PublishFloor selects which created items are handed to the publisher.
	PublishFloor int

	QueryPacing         time.Duration
	CandidateMultiplier int
	FallbackPoolSize    int
	UnknownQueryBudget  int
	UnknownTargetItems  int
	CheckInterval       time.Duration
	CatchUpWindow       time.Duration

	Clock   Clock
	Sleeper Sleeper

	// Shuffle reorders candidates in place. Defaults to rand.Shuffle.
	Shuffle func([]string)
}

// Scheduler runs named sessions: Session Engine, then Pipeline, then Publisher.
// Sessions never overlap.
type Scheduler struct {
	engine    driving.SessionEngine
	pipeline  driving.Pipeline
	publisher driving.Publisher
	sessions  driven.SessionStore
	stats     driven.StatsStore

	cfgMu       sync.RWMutex
	cfg         SchedulerConfig
	budgetsSeen bool

	runMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	engine driving.SessionEngine,
	pipeline driving.Pipeline,
	publisher driving.Publisher,
	sessions driven.SessionStore,
	stats driven.StatsStore,
	cfg SchedulerConfig,
) *Scheduler {
	if cfg.PublishFloor == 0 {
		cfg.PublishFloor = domain.DefaultPublishFloor
	}
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = domain.DefaultCandidateMultiplier
	}
	if cfg.FallbackPoolSize <= 0 {
		cfg.FallbackPoolSize = domain.DefaultFallbackPoolSize
	}
	if cfg.UnknownQueryBudget <= 0 {
		cfg.UnknownQueryBudget = domain.DefaultUnknownQueryBudget
	}
	if cfg.UnknownTargetItems <= 0 {
		cfg.UnknownTargetItems = domain.DefaultUnknownTargetItems
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = domain.DefaultCheckInterval
	}
	if cfg.CatchUpWindow <= 0 {
		cfg.CatchUpWindow = domain.DefaultCatchUpWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = SleepContext
	}
	if cfg.Shuffle == nil {
		cfg.Shuffle = func(qs []string) {
			rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		}
	}
	return &Scheduler{
		engine:    engine,
		pipeline:  pipeline,
		publisher: publisher,
		sessions:  sessions,
		stats:     stats,
		cfg:       cfg,
	}
}

// UpdateSessions replaces the session budgets and the query pool.
// Budgets are persisted on the next trigger check.
func (s *Scheduler) UpdateSessions(budgets []domain.SessionBudget, pool domain.QueryPool) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg.Sessions = append([]domain.SessionBudget(nil), budgets...)
	s.cfg.Pool = pool
	s.budgetsSeen = false
	logger.Info("scheduler: loaded %d sessions, %d pool queries", len(budgets), pool.Size())
}

// Sessions returns the configured budgets.
func (s *Scheduler) Sessions() []domain.SessionBudget {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return append([]domain.SessionBudget(nil), s.cfg.Sessions...)
}

// resolve returns the budget and candidate pool for a session name.
func (s *Scheduler) resolve(name string) (domain.SessionBudget, []string, error) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	var budget domain.SessionBudget
	known := false
	for _, b := range s.cfg.Sessions {
		if b.Name == name {
			budget, known = b, true
			break
		}
	}
	if known && !budget.Enabled {
		return budget, nil, fmt.Errorf("session %s: %w", name, domain.ErrSessionDisabled)
	}
	if !known {
		budget = domain.SessionBudget{
			Name:            name,
			TargetItemCount: s.cfg.UnknownTargetItems,
			QueryBudget:     s.cfg.UnknownQueryBudget,
			Enabled:         true,
		}
	}

	pool, knownPool := s.cfg.Pool.Candidates(name, s.cfg.FallbackPoolSize)
	if !knownPool {
		logger.Debug("scheduler: session %s has no pool, using %d merged queries", name, len(pool))
	}
	return budget, pool, nil
}

// selectCandidates shuffles the pool and keeps target*multiplier queries.
func (s *Scheduler) selectCandidates(pool []string, target int) []string {
	n := target * s.cfg.CandidateMultiplier
	if n > len(pool) {
		n = len(pool)
	}
	s.cfg.Shuffle(pool)
	return pool[:n]
}

// RunSession runs one session now. The returned run is also recorded.
// Errors from individual candidates are counted, not returned; only
// storage failures and an unusable session name end with an error.
func (s *Scheduler) RunSession(ctx context.Context, name string) (*domain.SessionRun, error) {
	budget, pool, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	candidates := s.selectCandidates(pool, budget.TargetItemCount)
	run := &domain.SessionRun{SessionName: name, StartedAt: s.cfg.Clock()}
	logger.Info("scheduler: session %s started: %d candidates, budget %d, target %d",
		name, len(candidates), budget.QueryBudget, budget.TargetItemCount)

	// In-flight calls finish under a context detached from shutdown.
	work := context.WithoutCancel(ctx)

	var created []*domain.ContentItem
	var fatal error

	for i, query := range candidates {
		if len(created) >= budget.TargetItemCount {
			run.StopReason = domain.StopTargetReached
			break
		}
		if run.QueriesAttempted >= budget.QueryBudget {
			run.StopReason = domain.StopBudgetConsumed
			break
		}
		if ctx.Err() != nil {
			run.StopReason = domain.StopShutdown
			break
		}
		if i > 0 {
			if err := s.cfg.Sleeper(ctx, s.cfg.QueryPacing); err != nil {
				run.StopReason = domain.StopShutdown
				break
			}
		}

		run.QueriesAttempted++
		item, err := s.process(work, query)
		if err != nil {
			if errors.Is(err, domain.ErrQuotaExceeded) {
				run.QueriesAttempted--
				run.StopReason = domain.StopQuotaExceeded
				logger.Warn("scheduler: session %s: %v", name, err)
				break
			}
			run.Errors++
			if domain.IsFatal(err) {
				run.StopReason = domain.StopFatal
				fatal = err
				break
			}
			logger.Warn("scheduler: session %s: query failed: %v", name, err)
			continue
		}
		created = append(created, item)
	}

	if run.StopReason == "" {
		switch {
		case len(created) >= budget.TargetItemCount:
			run.StopReason = domain.StopTargetReached
		case run.QueriesAttempted >= budget.QueryBudget:
			run.StopReason = domain.StopBudgetConsumed
		default:
			run.StopReason = domain.StopCandidatesExhausted
		}
	}
	run.ItemsCreated = len(created)

	if fatal == nil && run.StopReason != domain.StopShutdown {
		fatal = s.publishCreated(ctx, work, run, created)
	}

	run.EndedAt = s.cfg.Clock()
	if err := s.stats.AddDaily(work, domain.DayKey(run.StartedAt), run.Stats()); err != nil {
		return run, domain.WrapStorage("add daily stats", err)
	}
	if err := s.sessions.RecordRun(work, run); err != nil {
		return run, domain.WrapStorage("record session run", err)
	}

	logger.Info("scheduler: session %s finished: created=%d published=%d errors=%d reason=%s",
		name, run.ItemsCreated, run.ItemsPublished, run.Errors, run.StopReason)
	return run, fatal
}

// publishCreated hands items at or above the floor to the publisher.
// Publishing stops between items on shutdown; unpublished items stay ready.
func (s *Scheduler) publishCreated(ctx, work context.Context, run *domain.SessionRun, items []*domain.ContentItem) error {
	for _, item := range items {
		if item.ImportanceScore < s.cfg.PublishFloor {
			continue
		}
		if ctx.Err() != nil {
			logger.Info("scheduler: shutdown, leaving remaining items ready")
			return nil
		}
		ok, err := s.publisher.Publish(work, item)
		if err != nil {
			run.Errors++
			if domain.IsFatal(err) {
				run.StopReason = domain.StopFatal
				return err
			}
			logger.Warn("scheduler: %v", err)
			continue
		}
		if ok {
			run.ItemsPublished++
		}
	}
	return nil
}

func (s *Scheduler) process(ctx context.Context, query string) (*domain.ContentItem, error) {
	text, err := s.engine.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.pipeline.CreateItem(ctx, query, text)
}

// RunQuery executes one ad-hoc query, stores the item and optionally
// publishes it. Daily stats are updated either way. A query that has
// started runs to completion even if ctx is cancelled.
func (s *Scheduler) RunQuery(ctx context.Context, queryText string, publish bool) (*domain.ContentItem, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	work := context.WithoutCancel(ctx)

	day := domain.DayKey(s.cfg.Clock())
	var delta domain.DailyStats

	item, err := s.process(work, queryText)
	if err != nil {
		if !errors.Is(err, domain.ErrQuotaExceeded) {
			delta.Errors++
		}
		if statErr := s.stats.AddDaily(work, day, delta); statErr != nil {
			return nil, errors.Join(err, domain.WrapStorage("add daily stats", statErr))
		}
		return nil, err
	}
	delta.ItemsCreated++

	var pubErr error
	if publish && item.ImportanceScore >= s.cfg.PublishFloor {
		ok, err := s.publisher.Publish(work, item)
		switch {
		case err != nil:
			delta.Errors++
			pubErr = err
		case ok:
			delta.ItemsPublished++
		}
	}

	if err := s.stats.AddDaily(work, day, delta); err != nil {
		return item, domain.WrapStorage("add daily stats", err)
	}
	return item, pubErr
}

// DueSessions returns the enabled sessions whose trigger time falls in
// [trigger, trigger+catch-up window) at now and that have not run that day.
func (s *Scheduler) DueSessions(ctx context.Context, now time.Time) ([]domain.SessionBudget, error) {
	s.cfgMu.RLock()
	budgets := append([]domain.SessionBudget(nil), s.cfg.Sessions...)
	window := s.cfg.CatchUpWindow
	s.cfgMu.RUnlock()

	today := domain.DayKey(now)
	var due []domain.SessionBudget
	for _, b := range budgets {
		if !b.Enabled {
			continue
		}
		trigger, err := b.TriggerOn(now)
		if err != nil {
			logger.Warn("scheduler: %v", err)
			continue
		}
		if now.Before(trigger) || !now.Before(trigger.Add(window)) {
			continue
		}
		last, err := s.sessions.LastRun(ctx, b.Name)
		if err != nil {
			return nil, domain.WrapStorage("read last run", err)
		}
		if last != nil && domain.DayKey(last.StartedAt.In(now.Location())) == today {
			continue
		}
		due = append(due, b)
	}
	return due, nil
}

// Start begins the trigger loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the trigger loop and waits for a running
// session to finish its in-flight query.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// run is the main trigger loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDue(ctx)

	s.cfgMu.RLock()
	interval := s.cfg.CheckInterval
	s.cfgMu.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return nil
		case <-ctx.Done():
			select {
			case <-stopCh:
				return nil
			default:
				return ctx.Err()
			}
		case <-ticker.C:
			s.checkAndRunDue(ctx)
		}
	}
}

// checkAndRunDue runs every due session one after another.
func (s *Scheduler) checkAndRunDue(ctx context.Context) {
	if err := s.syncBudgets(ctx); err != nil {
		logger.Error("scheduler: failed to persist session budgets: %v", err)
	}

	due, err := s.DueSessions(ctx, s.cfg.Clock())
	if err != nil {
		logger.Error("scheduler: failed to find due sessions: %v", err)
		return
	}
	for _, b := range due {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.RunSession(ctx, b.Name); err != nil {
			logger.Error("scheduler: session %s: %v", b.Name, err)
		}
	}
}

// syncBudgets mirrors configured budgets into the session store.
func (s *Scheduler) syncBudgets(ctx context.Context) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	if s.budgetsSeen {
		return nil
	}
	for i := range s.cfg.Sessions {
		if err := s.ensureBudget(ctx, &s.cfg.Sessions[i]); err != nil {
			return err
		}
	}
	s.budgetsSeen = true
	return nil
}

// ensureBudget creates or updates a stored budget.
func (s *Scheduler) ensureBudget(ctx context.Context, b *domain.SessionBudget) error {
	stored, err := s.sessions.GetBudget(ctx, b.Name)
	if err != nil {
		return err
	}
	if stored != nil && *stored == *b {
		return nil
	}
	return s.sessions.SaveBudget(ctx, b)
}
