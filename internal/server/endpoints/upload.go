package endpoints

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/internal/api"
	"github.com/AlvinPalmgren/PunktGrader/internal/session"
	"github.com/AlvinPalmgren/PunktGrader/internal/stamp"
	"github.com/AlvinPalmgren/PunktGrader/internal/svcctx"
)

// UploadResponse is the response for a successful batch upload.
type UploadResponse struct {
	TotalStudents int `json:"totalStudents"`
}

// UploadEndpoint handles POST /api/students/upload with multipart file
// upload. Uploading a batch replaces the current session entirely.
type UploadEndpoint struct{}

var _ api.Endpoint = (*UploadEndpoint)(nil)

func (e *UploadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/students/upload", e.handler
}

func (e *UploadEndpoint) RequiresInit() bool { return true }

func (e *UploadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form with 500MB max memory
	const maxMemory = 500 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", fh.Filename))
			return
		}
	}

	store := svcctx.StoreFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())

	sessionID := uuid.New().String()
	if err := homeDir.EnsureSessionDirs(sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sessionDir := homeDir.SessionDir(sessionID)

	// Save uploads in order; upload order defines student ids 1..N.
	docs := make([]session.Document, 0, len(files))
	for i, fh := range files {
		destPath := homeDir.OriginalPath(sessionID, i+1)
		if err := saveUpload(fh, destPath); err != nil {
			os.RemoveAll(sessionDir)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save %s: %v", fh.Filename, err))
			return
		}

		// Page count is best effort here; an unreadable PDF surfaces as
		// a malformed-document error when its pages are stamped.
		pageCount, err := stamp.PageCount(destPath)
		if err != nil {
			if logger != nil {
				logger.Warn("could not read page count at upload", "file", fh.Filename, "error", err)
			}
			pageCount = 0
		}
		docs = append(docs, session.Document{Path: destPath, PageCount: pageCount})
	}

	total, _, err := store.StartSession(sessionID, sessionDir, docs)
	if err != nil {
		os.RemoveAll(sessionDir)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{TotalStudents: total})
}

func saveUpload(fh *multipart.FileHeader, destPath string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func (e *UploadEndpoint) Command(_ func() string) *cobra.Command {
	// No CLI command for file upload.
	return nil
}
