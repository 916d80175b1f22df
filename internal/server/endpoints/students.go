package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/internal/api"
	"github.com/AlvinPalmgren/PunktGrader/internal/svcctx"
)

// StudentDocumentEndpoint handles GET /api/students/{student_id}/document.
// It serves the student's original PDF with the current labeling state
// in response headers so the labeling client can restore its view.
type StudentDocumentEndpoint struct{}

var _ api.Endpoint = (*StudentDocumentEndpoint)(nil)

func (e *StudentDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/students/{student_id}/document", e.handler
}

func (e *StudentDocumentEndpoint) RequiresInit() bool { return true }

func (e *StudentDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("student_id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "student_id must be a positive integer")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	student, err := store.Student(id)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	labelsJSON, err := json.Marshal(student.Labels)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	file, err := os.Open(student.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("document for student %d not found", id))
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("X-Student-Name", student.Name)
	w.Header().Set("X-Label-Assignment", string(labelsJSON))
	w.Header().Set("X-Page-Count", strconv.Itoa(student.PageCount))
	http.ServeContent(w, r, fmt.Sprintf("student_%04d.pdf", id), fileInfo.ModTime(), file)
}

func (e *StudentDocumentEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}
