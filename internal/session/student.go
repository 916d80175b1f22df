package session

// Status represents a student's processing state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Student is one uploaded exam plus its grading metadata for the
// current session. Owned exclusively by the Store.
type Student struct {
	ID         int    // 1-based, contiguous, assigned in upload order
	Name       string // set at submit time
	SourcePath string // original uploaded PDF
	PageCount  int    // 0 if the PDF could not be read at upload time
	Labels     Labels
	Status     Status
	Error      string
}

// StudentView is a read-only copy of a student handed out by the Store.
// Labels are deep-copied so callers cannot mutate store state.
type StudentView struct {
	ID         int
	Name       string
	SourcePath string
	PageCount  int
	Labels     Labels
	Status     Status
	Error      string
}

func (s *Student) view() StudentView {
	return StudentView{
		ID:         s.ID,
		Name:       s.Name,
		SourcePath: s.SourcePath,
		PageCount:  s.PageCount,
		Labels:     s.Labels.Clone(),
		Status:     s.Status,
		Error:      s.Error,
	}
}

// StampedPage is one single-page watermarked PDF derived from a
// student's original, filed under one problem number.
type StampedPage struct {
	StudentID   int
	StudentName string
	Page        int // page number in the original document
	Problem     int
	Path        string
}
