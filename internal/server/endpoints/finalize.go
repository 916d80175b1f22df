package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/internal/api"
	"github.com/AlvinPalmgren/PunktGrader/internal/finalize"
	"github.com/AlvinPalmgren/PunktGrader/internal/svcctx"
)

// FinalizeResponse lists the problem numbers that now have a final
// document.
type FinalizeResponse struct {
	Problems []int `json:"problems"`
}

// FinalizeEndpoint handles POST /api/finalize. It rebuilds the
// per-problem documents from whatever the collections currently hold;
// callers poll /api/status first and finalize once nothing is
// processing.
type FinalizeEndpoint struct{}

var _ api.Endpoint = (*FinalizeEndpoint)(nil)

func (e *FinalizeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/finalize", e.handler
}

func (e *FinalizeEndpoint) RequiresInit() bool { return true }

func (e *FinalizeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())

	problems, err := finalize.Run(store, homeDir, logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, FinalizeResponse{Problems: problems})
}

func (e *FinalizeEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize",
		Short: "Build one downloadable PDF per problem number",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp FinalizeResponse
			if err := client.Post(cmd.Context(), "/api/finalize", nil, &resp); err != nil {
				return err
			}
			fmt.Printf("Problems: %v\n", resp.Problems)
			return nil
		},
	}
}
