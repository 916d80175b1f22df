package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_ExplicitPath(t *testing.T) {
	d, err := New("/tmp/grader-home")
	if err != nil {
		t.Fatal(err)
	}
	if d.Path() != "/tmp/grader-home" {
		t.Errorf("Path() = %q", d.Path())
	}
	if got := d.ConfigPath(); got != filepath.Join("/tmp/grader-home", ConfigFileName) {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestNew_DefaultPath(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(d.Path()) != DefaultDirName {
		t.Errorf("default path = %q, want base %q", d.Path(), DefaultDirName)
	}
}

func TestEnsureExists(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "home"))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(d.Path(), SessionsDirName))
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("sessions path is not a directory")
	}

	// Idempotent.
	if err := d.EnsureExists(); err != nil {
		t.Errorf("second EnsureExists() error = %v", err)
	}
}

func TestSessionPaths(t *testing.T) {
	d, err := New("/home/grader/.punktgrader")
	if err != nil {
		t.Fatal(err)
	}
	base := "/home/grader/.punktgrader/sessions/abc"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"session dir", d.SessionDir("abc"), base},
		{"original", d.OriginalPath("abc", 7), base + "/originals/student_0007.pdf"},
		{"stamped", d.StampedPath("abc", 2, 13, 4), base + "/stamped/s0002_p0013_problem0004.pdf"},
		{"final", d.FinalPath("abc", 12), base + "/finals/problem_0012.pdf"},
	}
	for _, tt := range tests {
		if tt.got != filepath.FromSlash(tt.want) {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestEnsureSessionDirs(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.EnsureSessionDirs("sess-1"); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{
		d.OriginalsDir("sess-1"),
		d.StampedDir("sess-1"),
		d.FinalsDir("sess-1"),
	} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("missing session dir %s: %v", dir, err)
		}
	}
}

func TestConfigExists(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if d.ConfigExists() {
		t.Error("ConfigExists() = true before write")
	}
	if err := os.WriteFile(d.ConfigPath(), []byte("server:\n  port: \"9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !d.ConfigExists() {
		t.Error("ConfigExists() = false after write")
	}
}
