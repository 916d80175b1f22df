// Package session holds all in-memory state for the current grading
// session: the student roster, the per-problem stamped page collections,
// and the finalized per-problem documents.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// Document describes one uploaded source PDF at session start.
type Document struct {
	Path      string
	PageCount int // 0 if the file could not be parsed yet
}

// Store owns the single global grading session. All components receive
// the same instance by reference; single-session-at-a-time is an
// explicit constraint, not an ambient assumption.
//
// Reset and StartSession bump an internal generation counter. Writes
// from background tasks carry the generation they were launched under
// and are discarded if the session has been replaced since - this is
// how a reset during in-flight processing stays safe.
type Store struct {
	mu         sync.RWMutex
	logger     *slog.Logger
	generation int
	sessionID  string
	dir        string // backing directory for session files, removed on reset
	students   map[int]*Student
	problems   map[int]*collection
	finals     map[int]string
	finalized  bool
}

// collection is the ordered set of stamped pages for one problem
// number. Each collection has its own lock so concurrent tasks filing
// pages under different problems never contend.
type collection struct {
	mu    sync.Mutex
	pages []StampedPage
}

// NewStore creates an empty session store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:   logger.With("component", "session"),
		students: make(map[int]*Student),
		problems: make(map[int]*collection),
		finals:   make(map[int]string),
	}
}

// Generation returns the current session generation.
func (s *Store) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Reset clears students, problem collections and final documents, and
// removes the session's backing directory. Always succeeds.
func (s *Store) Reset() {
	s.mu.Lock()
	dir := s.dir
	s.generation++
	s.sessionID = ""
	s.dir = ""
	s.students = make(map[int]*Student)
	s.problems = make(map[int]*collection)
	s.finals = make(map[int]string)
	s.finalized = false
	s.mu.Unlock()

	if dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove session directory", "dir", dir, "error", err)
		}
	}
	s.logger.Info("session reset")
}

// SessionID returns the identifier of the current session, or "" if no
// session has been started.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// StartSession replaces the roster with one pending student per input
// document, ids assigned 1..N in input order. The previous session's
// state and backing directory are released first. Returns the number of
// students and the new generation.
func (s *Store) StartSession(sessionID, dir string, docs []Document) (total, generation int, err error) {
	if len(docs) == 0 {
		return 0, 0, fmt.Errorf("%w: no documents provided", ErrInvalidInput)
	}

	s.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
	s.dir = dir
	for i, doc := range docs {
		id := i + 1
		s.students[id] = &Student{
			ID:         id,
			SourcePath: doc.Path,
			PageCount:  doc.PageCount,
			Labels:     make(Labels),
			Status:     StatusPending,
		}
	}
	s.logger.Info("session started", "session_id", sessionID, "students", len(docs), "generation", s.generation)
	return len(docs), s.generation, nil
}

// Student returns a read-only view of a student.
func (s *Store) Student(id int) (StudentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return StudentView{}, fmt.Errorf("%w: student %d", ErrNotFound, id)
	}
	return st.view(), nil
}

// RecordLabels overwrites the student's name and label assignment
// synchronously and returns a stable snapshot for background
// processing. It does not wait for stamping.
func (s *Store) RecordLabels(id int, name string, labels Labels) (StudentView, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return StudentView{}, 0, fmt.Errorf("%w: student %d", ErrNotFound, id)
	}
	st.Name = name
	st.Labels = labels.Clone()
	return st.view(), s.generation, nil
}

// SetStatus updates a student's processing status. Writes carrying a
// stale generation are discarded.
func (s *Store) SetStatus(generation, id int, status Status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	st, ok := s.students[id]
	if !ok {
		return
	}
	st.Status = status
	st.Error = errMsg
}

// Append files a stamped page into its problem collection. Appends to
// the same problem serialize on that collection's lock; appends to
// different problems proceed in parallel. Stale-generation appends are
// discarded.
func (s *Store) Append(generation int, page StampedPage) {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return
	}
	col, ok := s.problems[page.Problem]
	if !ok {
		col = &collection{}
		s.problems[page.Problem] = col
	}
	s.mu.Unlock()

	col.mu.Lock()
	col.pages = append(col.pages, page)
	col.mu.Unlock()
}

// Collections returns a copy of every non-empty problem collection in
// filing order, along with the generation it was taken under.
func (s *Store) Collections() (map[int][]StampedPage, int) {
	s.mu.RLock()
	generation := s.generation
	cols := make(map[int]*collection, len(s.problems))
	for problem, col := range s.problems {
		cols[problem] = col
	}
	s.mu.RUnlock()

	out := make(map[int][]StampedPage, len(cols))
	for problem, col := range cols {
		col.mu.Lock()
		if len(col.pages) > 0 {
			out[problem] = append([]StampedPage(nil), col.pages...)
		}
		col.mu.Unlock()
	}
	return out, generation
}

// SetFinals registers the finalized per-problem documents. A stale
// generation (session replaced while finalizing) is discarded.
func (s *Store) SetFinals(generation int, finals map[int]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.finals = finals
	s.finalized = true
}

// Final returns the path of the finalized document for a problem
// number. Fails with ErrNotFound before finalize has run or for an
// unknown problem.
func (s *Store) Final(problem int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.finals[problem]
	if !ok {
		return "", fmt.Errorf("%w: no final document for problem %d", ErrNotFound, problem)
	}
	return path, nil
}

// Snapshot is a read-only view of session progress for status polling.
type Snapshot struct {
	TotalStudents      int
	LabeledStudents    int
	PendingStudents    int
	ProcessingStudents int
	CompletedStudents  int
	ErrorStudents      int
	Problems           []int
	IsFinalized        bool
}

// Status reports current counts so a polling client can detect when it
// is safe to finalize.
func (s *Store) Status() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		TotalStudents: len(s.students),
		IsFinalized:   s.finalized,
		Problems:      []int{},
	}
	for _, st := range s.students {
		if st.Name != "" && len(st.Labels) > 0 {
			snap.LabeledStudents++
		}
		switch st.Status {
		case StatusPending:
			snap.PendingStudents++
		case StatusProcessing:
			snap.ProcessingStudents++
		case StatusCompleted:
			snap.CompletedStudents++
		case StatusError:
			snap.ErrorStudents++
		}
	}
	for problem, col := range s.problems {
		col.mu.Lock()
		n := len(col.pages)
		col.mu.Unlock()
		if n > 0 {
			snap.Problems = append(snap.Problems, problem)
		}
	}
	sort.Ints(snap.Problems)
	return snap
}
