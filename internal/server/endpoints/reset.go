package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/internal/api"
	"github.com/AlvinPalmgren/PunktGrader/internal/svcctx"
)

// ResetResponse acknowledges a session reset.
type ResetResponse struct {
	Status string `json:"status"`
}

// ResetEndpoint handles POST /api/reset. A reset while students are
// still processing is allowed; their tasks keep running but anything
// they file afterwards carries a stale generation and is discarded.
type ResetEndpoint struct{}

var _ api.Endpoint = (*ResetEndpoint)(nil)

func (e *ResetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/reset", e.handler
}

func (e *ResetEndpoint) RequiresInit() bool { return true }

func (e *ResetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcctx.StoreFrom(r.Context()).Reset()
	writeJSON(w, http.StatusOK, ResetResponse{Status: "ok"})
}

func (e *ResetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Wipe the current grading session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ResetResponse
			if err := client.Post(cmd.Context(), "/api/reset", nil, &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}
