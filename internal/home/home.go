package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the punktgrader home directory.
	DefaultDirName = ".punktgrader"

	// SessionsDirName is the subdirectory holding per-session files.
	SessionsDirName = "sessions"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the punktgrader home directory structure. Each grading
// session gets its own directory holding the uploaded originals, the
// stamped single pages and the finalized per-problem documents.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.punktgrader).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}
	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory tree if it doesn't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(filepath.Join(d.path, SessionsDirName), 0o755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// SessionDir returns the directory for one grading session.
func (d *Dir) SessionDir(sessionID string) string {
	return filepath.Join(d.path, SessionsDirName, sessionID)
}

// OriginalsDir returns the directory for a session's uploaded PDFs.
func (d *Dir) OriginalsDir(sessionID string) string {
	return filepath.Join(d.SessionDir(sessionID), "originals")
}

// OriginalPath returns the path for one student's uploaded PDF.
// Student ids are 1-indexed.
func (d *Dir) OriginalPath(sessionID string, studentID int) string {
	return filepath.Join(d.OriginalsDir(sessionID), fmt.Sprintf("student_%04d.pdf", studentID))
}

// StampedDir returns the directory for a session's stamped single pages.
func (d *Dir) StampedDir(sessionID string) string {
	return filepath.Join(d.SessionDir(sessionID), "stamped")
}

// StampedPath returns the path for one stamped page.
func (d *Dir) StampedPath(sessionID string, studentID, page, problem int) string {
	return filepath.Join(
		d.StampedDir(sessionID),
		fmt.Sprintf("s%04d_p%04d_problem%04d.pdf", studentID, page, problem),
	)
}

// FinalsDir returns the directory for a session's finalized documents.
func (d *Dir) FinalsDir(sessionID string) string {
	return filepath.Join(d.SessionDir(sessionID), "finals")
}

// FinalPath returns the path for one finalized per-problem document.
func (d *Dir) FinalPath(sessionID string, problem int) string {
	return filepath.Join(d.FinalsDir(sessionID), fmt.Sprintf("problem_%04d.pdf", problem))
}

// EnsureSessionDirs creates the full directory tree for a session.
func (d *Dir) EnsureSessionDirs(sessionID string) error {
	for _, dir := range []string{
		d.OriginalsDir(sessionID),
		d.StampedDir(sessionID),
		d.FinalsDir(sessionID),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	return nil
}
