// Package scheduler runs named periodic jobs. Each job is either idle or
// running; a tick or manual trigger that finds it running is skipped, so runs
// of one job never overlap and never queue.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cementplant-backend/internal/observability"
	perr "github.com/yungbote/cementplant-backend/internal/pkg/errors"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

type JobFunc func(ctx context.Context) error

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomePanic   = "panic"
)

var (
	ErrUnknownJob = errors.New("scheduler: unknown job")
	ErrStopped    = errors.New("scheduler: stopped")
)

type job struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fn       JobFunc

	running atomic.Bool

	mu           sync.Mutex
	runs         int64
	skips        int64
	failures     int64
	lastStart    time.Time
	lastFinish   time.Time
	lastDuration time.Duration
	lastOutcome  string
	lastError    string
	nextRun      time.Time
}

type JobStatus struct {
	Name           string     `json:"name"`
	Interval       string     `json:"interval"`
	Timeout        string     `json:"timeout"`
	State          string     `json:"state"`
	Runs           int64      `json:"runs"`
	Skips          int64      `json:"skips"`
	Failures       int64      `json:"failures"`
	LastStart      *time.Time `json:"last_start"`
	LastFinish     *time.Time `json:"last_finish"`
	LastDurationMs int64      `json:"last_duration_ms"`
	LastOutcome    string     `json:"last_outcome,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	NextRun        *time.Time `json:"next_run"`
}

type Scheduler struct {
	log     *logger.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	jobs    map[string]*job
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

func New(log *logger.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		log:     log.With("component", "Scheduler"),
		metrics: metrics,
		jobs:    map[string]*job{},
	}
}

// Add registers a job. A zero timeout defaults to the interval.
func (s *Scheduler) Add(name string, interval, timeout time.Duration, fn JobFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: job needs a name and a func", perr.ErrInvalidArgument)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: job %s interval must be positive", perr.ErrInvalidArgument, name)
	}
	if timeout <= 0 {
		timeout = interval
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler: cannot add %s after Start", name)
	}
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("%w: duplicate job %s", perr.ErrInvalidArgument, name)
	}
	s.jobs[name] = &job{name: name, interval: interval, timeout: timeout, fn: fn}
	return nil
}

// Start launches one ticker loop per job. Runs stop when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		j.mu.Lock()
		j.nextRun = time.Now().Add(j.interval)
		j.mu.Unlock()
		s.wg.Add(1)
		go s.loop(s.ctx, j)
		s.log.Info("Scheduled job", "job", j.name, "interval", j.interval.String(), "timeout", j.timeout.String())
	}
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Job loop stopped", "job", j.name)
			return
		case t := <-ticker.C:
			j.mu.Lock()
			j.nextRun = t.Add(j.interval)
			j.mu.Unlock()
			s.dispatch(ctx, j, "tick")
		}
	}
}

// dispatch starts a run in its own goroutine unless the job is already running.
func (s *Scheduler) dispatch(ctx context.Context, j *job, trigger string) bool {
	if !j.running.CompareAndSwap(false, true) {
		j.mu.Lock()
		j.skips++
		j.mu.Unlock()
		s.metrics.JobSkipped(j.name)
		s.log.Warn("Job still running, trigger skipped", "job", j.name, "trigger", trigger)
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer j.running.Store(false)
		s.run(ctx, j, trigger)
	}()
	return true
}

func (s *Scheduler) run(parent context.Context, j *job, trigger string) {
	runID := uuid.New().String()
	log := s.log.With("job", j.name, "run_id", runID, "trigger", trigger)
	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()

	start := time.Now()
	j.mu.Lock()
	j.lastStart = start
	j.mu.Unlock()
	s.metrics.JobStarted(j.name)
	log.Debug("Job started")

	outcome := OutcomeSuccess
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				outcome = OutcomePanic
				runErr = fmt.Errorf("panic: %v", r)
				log.Error("Job panic", "panic", r, "stack", string(debug.Stack()))
			}
		}()
		if err := j.fn(ctx); err != nil {
			outcome = OutcomeError
			runErr = err
		}
	}()

	dur := time.Since(start)
	j.mu.Lock()
	j.runs++
	j.lastFinish = time.Now()
	j.lastDuration = dur
	j.lastOutcome = outcome
	j.lastError = ""
	if runErr != nil {
		j.failures++
		j.lastError = runErr.Error()
	}
	j.mu.Unlock()
	s.metrics.JobFinished(j.name, outcome, dur)

	if outcome == OutcomeError {
		log.Warn("Job failed", "error", runErr, "duration_ms", dur.Milliseconds())
		return
	}
	log.Debug("Job finished", "outcome", outcome, "duration_ms", dur.Milliseconds())
}

// TriggerNow starts a run outside the ticker. It returns perr.ErrBusy when the
// job is already running.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	ctx := s.ctx
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return fmt.Errorf("job %s: %w", name, ErrStopped)
	}
	if !s.dispatch(ctx, j, "manual") {
		return fmt.Errorf("job %s: %w", name, perr.ErrBusy)
	}
	return nil
}

// Status returns a snapshot of every job, sorted by name.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	jobs := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].name < jobs[b].name })

	out := make([]JobStatus, 0, len(jobs))
	for _, j := range jobs {
		j.mu.Lock()
		st := JobStatus{
			Name:           j.name,
			Interval:       j.interval.String(),
			Timeout:        j.timeout.String(),
			State:          "idle",
			Runs:           j.runs,
			Skips:          j.skips,
			Failures:       j.failures,
			LastStart:      timePtr(j.lastStart),
			LastFinish:     timePtr(j.lastFinish),
			LastDurationMs: j.lastDuration.Milliseconds(),
			LastOutcome:    j.lastOutcome,
			LastError:      j.lastError,
			NextRun:        timePtr(j.nextRun),
		}
		j.mu.Unlock()
		if j.running.Load() {
			st.State = "running"
		}
		out = append(out, st)
	}
	return out
}

// Stop cancels all loops and in-flight runs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
