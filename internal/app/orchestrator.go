package app

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/clauseguard/internal/assessment"
	"github.com/raysh454/clauseguard/internal/catalog"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
	"github.com/raysh454/clauseguard/internal/report"
)

// ErrClosed is returned when a job is started after Close.
var ErrClosed = errors.New("orchestrator is closed")

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Stage     assessment.Stage `json:"stage,omitempty"`
	Processed int              `json:"processed,omitempty"`
	Total     int              `json:"total,omitempty"`
	Message   string           `json:"message,omitempty"`

	// For results
	Score *int   `json:"score,omitempty"`
	Grade string `json:"grade,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Finished reports whether s is terminal.
func (s JobStatus) Finished() bool {
	return s == JobDone || s == JobFailed || s == JobCanceled
}

type Job struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"` // "analysis"
	Document  string        `json:"document"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at,omitempty"`
	Events    chan JobEvent `json:"-"`

	// Result is set once the job is done.
	Result *model.AssessmentResult `json:"result,omitempty"`
}

// Orchestrator runs analyses synchronously or as background jobs and keeps
// job results for a bounded time.
type Orchestrator struct {
	cfg      *Config
	analyzer *assessment.Analyzer
	logger   logging.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	closed     bool

	running     sync.WaitGroup
	stopJanitor chan struct{}
	janitorDone chan struct{}
	closeOnce   sync.Once
}

// NewOrchestrator ties together config, analyzer and logger and starts the
// retention janitor.
func NewOrchestrator(cfg *Config, analyzer *assessment.Analyzer, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}
	if analyzer == nil {
		analyzer = assessment.NewAnalyzer(assessment.Deps{}, logger)
	}
	o := &Orchestrator{
		cfg:         cfg,
		analyzer:    analyzer,
		logger:      logging.Component(logger, "orchestrator"),
		jobs:        make(map[string]*Job),
		jobCancels:  make(map[string]context.CancelFunc),
		stopJanitor: make(chan struct{}),
		janitorDone: make(chan struct{}),
	}
	if cfg.JobRetentionTime > 0 {
		go o.janitor(cfg.janitorInterval())
	} else {
		close(o.janitorDone)
	}
	return o
}

// Analyze runs one analysis in the caller's goroutine.
func (o *Orchestrator) Analyze(ctx context.Context, in assessment.Input) (*model.AssessmentResult, error) {
	return o.analyzer.Analyze(ctx, in, nil)
}

// Compare analyzes two versions of a contract.
func (o *Orchestrator) Compare(ctx context.Context, oldIn, newIn assessment.Input) (*assessment.Comparison, error) {
	return o.analyzer.Compare(ctx, oldIn, newIn)
}

// ExplanationsAvailable reports whether AI explanations are configured.
func (o *Orchestrator) ExplanationsAvailable() bool {
	return o.analyzer.ExplanationsAvailable()
}

// Categories returns the risk catalog.
func (o *Orchestrator) Categories() []model.RiskCategory {
	return catalog.Categories()
}

// RenderReport writes r in format f.
func (o *Orchestrator) RenderReport(ctx context.Context, w io.Writer, r *model.AssessmentResult, f report.Format) error {
	return report.Render(ctx, w, f, o.cfg.Report, r)
}

func (o *Orchestrator) newJob(jobType, document string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Document:  document,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, o.cfg.EventBuffer),
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setJob(job *Job) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	o.jobs[job.ID] = job
}

// register records a new job and its cancel func and reserves a slot in
// the running group under one lock. It fails with ErrClosed once Close
// has started.
func (o *Orchestrator) register(job *Job, cancel context.CancelFunc) error {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if o.closed {
		return ErrClosed
	}
	o.jobs[job.ID] = job
	o.jobCancels[job.ID] = cancel
	o.running.Add(1)
	return nil
}

func (o *Orchestrator) deleteCancel(jobID string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	delete(o.jobCancels, jobID)
}

func (o *Orchestrator) getCancel(jobID string) context.CancelFunc {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.jobCancels[jobID]
}

func (o *Orchestrator) updateJob(jobID string, fn func(j *Job)) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok {
		fn(j)
	}
}

// progressCallback adapts analyzer progress into job events.
func (o *Orchestrator) progressCallback(jobID string) assessment.ProgressFunc {
	return func(p assessment.Progress) {
		o.emitJobEvent(jobID, JobEvent{
			JobID:     jobID,
			Type:      JobEventProgress,
			Stage:     p.Stage,
			Processed: p.Done,
			Total:     p.Total,
			Message:   p.Message,
		})
	}
}

// StartAnalysisJob analyzes in on a background goroutine. Progress and the
// final status arrive on the returned job's Events channel, which is closed
// when the job ends. The job context derives from ctx, so pass a context
// that outlives the request that started it.
func (o *Orchestrator) StartAnalysisJob(ctx context.Context, in assessment.Input) (*Job, error) {
	job := o.newJob("analysis", in.Name)
	jobCtx, cancel := context.WithCancel(ctx)
	if err := o.register(job, cancel); err != nil {
		cancel()
		return nil, err
	}

	o.emitJobEvent(job.ID, JobEvent{JobID: job.ID, Type: JobEventStatus, Status: JobPending})

	go func() {
		defer o.running.Done()
		o.runJob(jobCtx, job.ID, func(ctx context.Context) (*model.AssessmentResult, error) {
			return o.analyzer.Analyze(ctx, in, o.progressCallback(job.ID))
		})
	}()

	return job, nil
}

func (o *Orchestrator) runJob(jobCtx context.Context, jobID string, run func(context.Context) (*model.AssessmentResult, error)) {
	defer func() {
		o.updateJob(jobID, func(j *Job) { j.EndedAt = time.Now().UTC() })
		if cancel := o.getCancel(jobID); cancel != nil {
			cancel()
		}
		o.deleteCancel(jobID)

		// Close events channel so websocket loop can terminate cleanly
		o.jobsMu.Lock()
		j := o.jobs[jobID]
		o.jobsMu.Unlock()
		if j != nil && j.Events != nil {
			close(j.Events)
		}
	}()

	o.updateJob(jobID, func(j *Job) { j.Status = JobRunning })
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobRunning})

	result, err := run(jobCtx)
	switch {
	case jobCtx.Err() != nil:
		msg := jobCtx.Err().Error()
		o.updateJob(jobID, func(j *Job) {
			j.Status = JobCanceled
			j.Error = msg
		})
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobCanceled, Error: msg})
	case err != nil:
		o.logger.Warn("analysis job failed",
			logging.Field{Key: "job_id", Value: jobID},
			logging.Field{Key: "error", Value: err})
		o.updateJob(jobID, func(j *Job) {
			j.Status = JobFailed
			j.Error = err.Error()
		})
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobFailed, Error: err.Error()})
	default:
		o.updateJob(jobID, func(j *Job) {
			j.Status = JobDone
			j.Result = result
		})
		score := result.Score
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventResult, Status: JobDone, Score: &score, Grade: result.Grade})
	}
}

// CancelJob cancels a running job. It reports whether the job exists.
func (o *Orchestrator) CancelJob(jobID string) bool {
	if cancel := o.getCancel(jobID); cancel != nil {
		cancel()
	}
	return o.GetJob(jobID) != nil
}

// GetJob returns a snapshot of the job, or nil if it is unknown or expired.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil
	}
	snap := *j
	return &snap
}

// ListJobs returns snapshots of all retained jobs, newest first.
func (o *Orchestrator) ListJobs() []Job {
	o.jobsMu.Lock()
	out := make([]Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, *j)
	}
	o.jobsMu.Unlock()
	sort.Slice(out, func(a, b int) bool { return out[a].StartedAt.After(out[b].StartedAt) })
	return out
}

func (o *Orchestrator) janitor(every time.Duration) {
	defer close(o.janitorDone)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-o.stopJanitor:
			return
		case now := <-ticker.C:
			if n := o.evictExpired(now); n > 0 {
				o.logger.Debug("expired jobs evicted", logging.Field{Key: "count", Value: n})
			}
		}
	}
}

// evictExpired drops finished jobs that ended more than JobRetentionTime
// before now.
func (o *Orchestrator) evictExpired(now time.Time) int {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	n := 0
	for id, j := range o.jobs {
		if j.Status.Finished() && !j.EndedAt.IsZero() && now.Sub(j.EndedAt) > o.cfg.JobRetentionTime {
			delete(o.jobs, id)
			n++
		}
	}
	return n
}

// Close cancels running jobs, waits for them to finish and stops the
// janitor. It is safe to call more than once.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.jobsMu.Lock()
		o.closed = true
		cancels := make([]context.CancelFunc, 0, len(o.jobCancels))
		for _, c := range o.jobCancels {
			cancels = append(cancels, c)
		}
		o.jobsMu.Unlock()

		for _, c := range cancels {
			c()
		}
		o.running.Wait()
		close(o.stopJanitor)
		<-o.janitorDone
		o.logger.Info("orchestrator closed")
	})
}
