// Package process runs the per-student background stamping tasks.
// One task is in flight per student between submit and completion;
// tasks for different students may overlap with no ordering guarantee.
package process

import (
	"log/slog"
	"sync"

	"github.com/AlvinPalmgren/PunktGrader/internal/home"
	"github.com/AlvinPalmgren/PunktGrader/internal/session"
	"github.com/AlvinPalmgren/PunktGrader/internal/stamp"
)

// DefaultMaxConcurrent bounds simultaneously running student tasks
// when no limit is configured.
const DefaultMaxConcurrent = 4

// Config configures a Processor.
type Config struct {
	Store  *session.Store
	Home   *home.Dir
	Logger *slog.Logger

	// StampOptions returns the current watermark options. Read at task
	// launch so config hot reloads apply to subsequent submissions.
	StampOptions func() stamp.Options

	// MaxConcurrent bounds simultaneously running student tasks
	// (default DefaultMaxConcurrent).
	MaxConcurrent int
}

// Processor launches and tracks background stamping tasks. It never
// blocks the submitting caller and never retries a failed task.
type Processor struct {
	store        *session.Store
	home         *home.Dir
	logger       *slog.Logger
	stampOptions func() stamp.Options

	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a Processor.
func New(cfg Config) *Processor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	opts := cfg.StampOptions
	if opts == nil {
		opts = func() stamp.Options { return stamp.Options{} }
	}
	return &Processor{
		store:        cfg.Store,
		home:         cfg.Home,
		logger:       logger.With("component", "processor"),
		stampOptions: opts,
		sem:          make(chan struct{}, maxConcurrent),
	}
}

// Submit records the student's name and label assignment synchronously,
// then launches the stamping task in the background and returns
// immediately. The task works from a snapshot taken here - later label
// edits do not retroactively change what it processes.
//
// The status is set to processing before the task goroutine starts so a
// status poll issued right after submit always sees the task.
func (p *Processor) Submit(id int, name string, labels session.Labels) error {
	view, generation, err := p.store.RecordLabels(id, name, labels)
	if err != nil {
		return err
	}
	sessionID := p.store.SessionID()
	p.store.SetStatus(generation, id, session.StatusProcessing, "")

	p.wg.Add(1)
	go p.run(generation, sessionID, view)
	return nil
}

// Wait blocks until all in-flight tasks have settled. HTTP clients poll
// the status endpoint instead; this is for coordinated shutdown and
// tests.
func (p *Processor) Wait() {
	p.wg.Wait()
}

func (p *Processor) run(generation int, sessionID string, view session.StudentView) {
	defer p.wg.Done()
	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	log := p.logger.With("student", view.ID, "generation", generation)
	opts := p.stampOptions()
	pairs := view.Labels.Pairs()
	log.Info("stamping started", "pairs", len(pairs))

	for _, pair := range pairs {
		outPath := p.home.StampedPath(sessionID, view.ID, pair.Page, pair.Problem)
		req := stamp.Request{
			SourcePath:  view.SourcePath,
			Page:        pair.Page,
			Problem:     pair.Problem,
			StudentID:   view.ID,
			StudentName: view.Name,
		}
		if err := stamp.Page(req, outPath, opts); err != nil {
			// Pages already filed for this student stay in their
			// collections; failed tasks are resubmitted by the operator.
			log.Error("stamping failed", "page", pair.Page, "problem", pair.Problem, "error", err)
			p.store.SetStatus(generation, view.ID, session.StatusError, err.Error())
			return
		}
		p.store.Append(generation, session.StampedPage{
			StudentID:   view.ID,
			StudentName: view.Name,
			Page:        pair.Page,
			Problem:     pair.Problem,
			Path:        outPath,
		})
	}

	p.store.SetStatus(generation, view.ID, session.StatusCompleted, "")
	log.Info("stamping completed", "pairs", len(pairs))
}
