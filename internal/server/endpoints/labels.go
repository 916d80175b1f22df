package endpoints

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cobra"

	"github.com/AlvinPalmgren/PunktGrader/internal/api"
	"github.com/AlvinPalmgren/PunktGrader/internal/session"
	"github.com/AlvinPalmgren/PunktGrader/internal/svcctx"
)

// submitLabelsSchema validates the submit payload before decoding.
// Label assignment keys are 1-based page numbers; values are problem
// numbers, with -1 as the "not a problem" sentinel.
var submitLabelsSchema = jsonschema.MustCompileString("submit_labels.json", `{
	"type": "object",
	"required": ["studentId", "studentName", "labelAssignment"],
	"properties": {
		"studentId": {"type": "integer", "minimum": 1},
		"studentName": {"type": "string"},
		"labelAssignment": {
			"type": "object",
			"propertyNames": {"pattern": "^[1-9][0-9]*$"},
			"additionalProperties": {
				"type": "array",
				"items": {"type": "integer"}
			}
		}
	}
}`)

// SubmitLabelsRequest is the submit-labels payload.
type SubmitLabelsRequest struct {
	StudentID   int            `json:"studentId"`
	StudentName string         `json:"studentName"`
	Labels      session.Labels `json:"labelAssignment"`
}

// SubmitLabelsResponse acknowledges a submission; stamping continues in
// the background and is observed via the status endpoint.
type SubmitLabelsResponse struct {
	StudentID int    `json:"studentId"`
	Status    string `json:"status"`
}

// SubmitLabelsEndpoint handles POST /api/students/labels.
type SubmitLabelsEndpoint struct{}

var _ api.Endpoint = (*SubmitLabelsEndpoint)(nil)

func (e *SubmitLabelsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/students/labels", e.handler
}

func (e *SubmitLabelsEndpoint) RequiresInit() bool { return true }

func (e *SubmitLabelsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if err := submitLabelsSchema.Validate(raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SubmitLabelsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	processor := svcctx.ProcessorFrom(r.Context())
	if err := processor.Submit(req.StudentID, req.StudentName, req.Labels); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitLabelsResponse{
		StudentID: req.StudentID,
		Status:    "processing",
	})
}

func (e *SubmitLabelsEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}
