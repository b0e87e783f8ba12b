package jobs

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const JobPayrollRun = "payroll_run"

type Run struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Details     any       `json:"details,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt,omitzero"`
}

// Service runs named jobs and keeps an in-memory record of recent runs for
// the system endpoint. Jobs enqueued while the queue is full are dropped with
// a warning rather than blocking the caller.
type Service struct {
	queue chan job

	mu   sync.Mutex
	runs map[string]*Run
}

type job struct {
	runID string
	jtype string
	run   func(context.Context) (any, error)
}

func New() *Service {
	return &Service{
		queue: make(chan job, 64),
		runs:  make(map[string]*Run),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue schedules a background run and returns its id immediately.
func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) string {
	runID := s.begin(jobType)
	select {
	case s.queue <- job{runID: runID, jtype: jobType, run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
		s.finish(runID, nil, context.Canceled)
	}
	return runID
}

// RunNow executes the job synchronously while still recording the run.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	runID := s.begin(jobType)
	details, err := run(ctx)
	s.finish(runID, details, err)
	return details, err
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			details, err := j.run(ctx)
			s.finish(j.runID, details, err)
			if err != nil {
				slog.Warn("job run failed", "jobType", j.jtype, "err", err)
			}
		}
	}
}

func (s *Service) begin(jobType string) string {
	runID := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = &Run{
		ID:        runID,
		Type:      jobType,
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	return runID
}

func (s *Service) finish(runID string, details any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return
	}
	run.CompletedAt = time.Now().UTC()
	run.Details = details
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		return
	}
	run.Status = "completed"
}

func (s *Service) Get(runID string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

func (s *Service) Recent(limit int) []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, *run)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
