package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/AlvinPalmgren/PunktGrader/internal/home"
	"github.com/AlvinPalmgren/PunktGrader/internal/server/endpoints"
	"github.com/AlvinPalmgren/PunktGrader/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatal(err)
	}

	srv, err := New(Config{Home: h})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return srv, ts
}

func uploadBatch(t *testing.T, ts *httptest.Server, pageCounts ...int) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, pages := range pageCounts {
		fw, err := mw.CreateFormFile("files", fmt.Sprintf("exam-%d.pdf", i+1))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(testutil.PDFBytes(pages)); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/students/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func submitLabels(t *testing.T, ts *httptest.Server, studentID int, name string, labels map[string][]int) *http.Response {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"studentId":       studentID,
		"studentName":     name,
		"labelAssignment": labels,
	})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/api/students/labels", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func getStatus(t *testing.T, ts *httptest.Server) endpoints.StatusResponse {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var status endpoints.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	return status
}

func TestServer_GradingScenario(t *testing.T) {
	srv, ts := newTestServer(t)

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d", resp.StatusCode)
		}
	})

	t.Run("upload", func(t *testing.T) {
		resp := uploadBatch(t, ts, 3, 3)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("upload status = %d", resp.StatusCode)
		}
		var upload endpoints.UploadResponse
		if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
			t.Fatal(err)
		}
		if upload.TotalStudents != 2 {
			t.Errorf("totalStudents = %d, want 2", upload.TotalStudents)
		}
	})

	t.Run("student_document", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/students/1/document")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("document status = %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Content-Type = %q", ct)
		}
		if labels := resp.Header.Get("X-Label-Assignment"); labels != "{}" {
			t.Errorf("X-Label-Assignment = %q, want {}", labels)
		}
		if pages := resp.Header.Get("X-Page-Count"); pages != "3" {
			t.Errorf("X-Page-Count = %q, want 3", pages)
		}
	})

	t.Run("student_document_unknown", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/students/99/document")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("unknown student status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("download_before_finalize", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/problems/1/document")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("download before finalize = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("submit_labels", func(t *testing.T) {
		resp := submitLabels(t, ts, 1, "Alice", map[string][]int{"1": {1}, "2": {2}, "3": {-1}})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			body, _ := io.ReadAll(resp.Body)
			t.Fatalf("submit status = %d: %s", resp.StatusCode, body)
		}

		resp2 := submitLabels(t, ts, 2, "Bob", map[string][]int{"1": {1, 2}, "2": {2}, "3": {1}})
		defer resp2.Body.Close()
		if resp2.StatusCode != http.StatusAccepted {
			t.Fatalf("submit status = %d", resp2.StatusCode)
		}

		srv.Processor().Wait()

		status := getStatus(t, ts)
		if status.CompletedStudents != 2 || status.ProcessingStudents != 0 {
			t.Fatalf("status after submit = %+v", status)
		}
		if len(status.Problems) != 2 || status.Problems[0] != 1 || status.Problems[1] != 2 {
			t.Errorf("problems = %v, want [1 2]", status.Problems)
		}
		if status.LabeledStudents != 2 {
			t.Errorf("labeledStudents = %d, want 2", status.LabeledStudents)
		}
	})

	t.Run("submit_unknown_student", func(t *testing.T) {
		resp := submitLabels(t, ts, 42, "Nobody", map[string][]int{"1": {1}})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("unknown student submit = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("submit_invalid_payload", func(t *testing.T) {
		// Page keys must be positive integers; the schema rejects "0".
		resp := submitLabels(t, ts, 1, "Alice", map[string][]int{"0": {1}})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("invalid payload submit = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("finalize", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/finalize", "application/json", nil)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("finalize status = %d", resp.StatusCode)
		}
		var result endpoints.FinalizeResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatal(err)
		}
		if len(result.Problems) != 2 || result.Problems[0] != 1 || result.Problems[1] != 2 {
			t.Errorf("finalize problems = %v, want [1 2]", result.Problems)
		}
		if !getStatus(t, ts).IsFinalized {
			t.Error("isFinalized = false after finalize")
		}
	})

	t.Run("download_finals", func(t *testing.T) {
		// Problem 1: S1p1, S2p1, S2p3. Problem 2: S1p2, S2p1, S2p2.
		for _, problem := range []int{1, 2} {
			resp, err := http.Get(fmt.Sprintf("%s/api/problems/%d/document", ts.URL, problem))
			if err != nil {
				t.Fatal(err)
			}
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("download problem %d = %d", problem, resp.StatusCode)
			}
			pages, err := api.PageCount(bytes.NewReader(data), nil)
			if err != nil {
				t.Fatalf("problem %d final not parseable: %v", problem, err)
			}
			if pages != 3 {
				t.Errorf("problem %d final has %d pages, want 3", problem, pages)
			}
		}
	})

	t.Run("download_unknown_problem", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/problems/9/document")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("unknown problem download = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("reset", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/reset", "application/json", nil)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("reset status = %d", resp.StatusCode)
		}

		status := getStatus(t, ts)
		if status.TotalStudents != 0 || len(status.Problems) != 0 || status.IsFinalized {
			t.Errorf("status after reset = %+v, want zeroed", status)
		}
	})
}

func TestServer_UploadRejectsEmptyAndNonPDF(t *testing.T) {
	_, ts := newTestServer(t)

	t.Run("zero_files", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		mw.Close()

		resp, err := http.Post(ts.URL+"/api/students/upload", mw.FormDataContentType(), &body)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("empty upload status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("non_pdf", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("files", "notes.txt")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte("plain text"))
		mw.Close()

		resp, err := http.Post(ts.URL+"/api/students/upload", mw.FormDataContentType(), &body)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("non-pdf upload status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestServer_UploadReplacesSession(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := uploadBatch(t, ts, 2)
	resp.Body.Close()

	submitLabels(t, ts, 1, "Alice", map[string][]int{"1": {1}}).Body.Close()
	srv.Processor().Wait()

	// A second upload starts a fresh session: new roster, no collections.
	resp2 := uploadBatch(t, ts, 3, 3, 3)
	defer resp2.Body.Close()
	var upload endpoints.UploadResponse
	if err := json.NewDecoder(resp2.Body).Decode(&upload); err != nil {
		t.Fatal(err)
	}
	if upload.TotalStudents != 3 {
		t.Errorf("totalStudents = %d, want 3", upload.TotalStudents)
	}

	status := getStatus(t, ts)
	if status.TotalStudents != 3 || len(status.Problems) != 0 || status.CompletedStudents != 0 {
		t.Errorf("status after re-upload = %+v", status)
	}
}
