package endpoints

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/internal/api"
	"github.com/AlvinPalmgren/PunktGrader/internal/svcctx"
)

// DownloadEndpoint handles GET /api/problems/{problem}/document.
// It serves the finalized per-problem PDF.
type DownloadEndpoint struct{}

var _ api.Endpoint = (*DownloadEndpoint)(nil)

func (e *DownloadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/problems/{problem}/document", e.handler
}

func (e *DownloadEndpoint) RequiresInit() bool { return true }

func (e *DownloadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	problem, err := strconv.Atoi(r.PathValue("problem"))
	if err != nil || problem < 1 {
		writeError(w, http.StatusBadRequest, "problem must be a positive integer")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	path, err := store.Final(problem)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	file, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := fmt.Sprintf("problem_%d.pdf", problem)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, fileInfo.ModTime(), file)
}

func (e *DownloadEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}
