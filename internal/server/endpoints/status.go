package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/internal/api"
	"github.com/AlvinPalmgren/PunktGrader/internal/svcctx"
)

// StatusResponse reports session progress. A client may safely finalize
// once processingStudents is zero and no student is in error (or the
// operator accepts the errors).
type StatusResponse struct {
	TotalStudents      int   `json:"totalStudents"`
	LabeledStudents    int   `json:"labeledStudents"`
	PendingStudents    int   `json:"pendingStudents"`
	ProcessingStudents int   `json:"processingStudents"`
	CompletedStudents  int   `json:"completedStudents"`
	ErrorStudents      int   `json:"errorStudents"`
	Problems           []int `json:"problems"`
	IsFinalized        bool  `json:"isFinalized"`
}

// StatusEndpoint handles GET /api/status.
type StatusEndpoint struct{}

var _ api.Endpoint = (*StatusEndpoint)(nil)

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return true }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	snap := svcctx.StoreFrom(r.Context()).Status()
	writeJSON(w, http.StatusOK, StatusResponse{
		TotalStudents:      snap.TotalStudents,
		LabeledStudents:    snap.LabeledStudents,
		PendingStudents:    snap.PendingStudents,
		ProcessingStudents: snap.ProcessingStudents,
		CompletedStudents:  snap.CompletedStudents,
		ErrorStudents:      snap.ErrorStudents,
		Problems:           snap.Problems,
		IsFinalized:        snap.IsFinalized,
	})
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show grading session progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/api/status", &resp); err != nil {
				return err
			}
			fmt.Printf("Students:   %d total, %d labeled\n", resp.TotalStudents, resp.LabeledStudents)
			fmt.Printf("Processing: %d pending, %d processing, %d completed, %d error\n",
				resp.PendingStudents, resp.ProcessingStudents, resp.CompletedStudents, resp.ErrorStudents)
			fmt.Printf("Problems:   %v\n", resp.Problems)
			fmt.Printf("Finalized:  %v\n", resp.IsFinalized)
			return nil
		},
	}
}
