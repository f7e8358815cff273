package sequence

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	modelSequence "github.com/zhouzirui/helix/backend/internal/model/sequence"
	"github.com/zhouzirui/helix/backend/internal/service/ai"
	"github.com/zhouzirui/helix/backend/internal/service/ai/aitest"
	sequenceservice "github.com/zhouzirui/helix/backend/internal/service/sequence"
	"github.com/zhouzirui/helix/backend/internal/store"
)

func setupRouter(t *testing.T, m *aitest.Model, st store.Store) *chi.Mux {
	t.Helper()
	aiSvc, err := aitest.NewService(map[string]*aitest.Model{ai.ProviderOpenAI: m})
	if err != nil {
		t.Fatalf("aitest.NewService err: %v", err)
	}

	handler := New(sequenceservice.NewService(aiSvc, st))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func send(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGenerateSequence(t *testing.T) {
	st := store.NewMemoryStore()
	r := setupRouter(t, &aitest.Model{Reply: "Step 1: Send intro email\nStep 2: Follow up in 3 days"}, st)

	resp := send(r, http.MethodPost, "/generate-sequence", map[string]any{
		"context": map[string]any{"role": "Staff Engineer", "tone": "friendly"},
		"userId":  "recruiter-1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "success" || len(body.Sequence) != 2 || body.SequenceID == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Sequence[0] != (modelSequence.Step{Step: "1", Content: "Send intro email"}) {
		t.Fatalf("unexpected first step: %+v", body.Sequence[0])
	}

	stored, ok := st.Sequence(body.SequenceID)
	if !ok || stored.UserID != "recruiter-1" {
		t.Fatalf("sequence not stored for user: %+v", stored)
	}
}

func TestGenerateSequenceEmptyListIsSuccess(t *testing.T) {
	r := setupRouter(t, &aitest.Model{Reply: "- email\n- call"}, store.NewMemoryStore())

	resp := send(r, http.MethodPost, "/generate-sequence", map[string]any{"context": map[string]any{}})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"sequence":[]`)) {
		t.Fatalf("expected empty sequence array, got %s", resp.Body.String())
	}
}

func TestGenerateSequenceProviderFailure(t *testing.T) {
	r := setupRouter(t, &aitest.Model{Err: errors.New("quota exceeded")}, store.NewMemoryStore())

	resp := send(r, http.MethodPost, "/generate-sequence", map[string]any{})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"source":"model_provider"`)) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestGenerateSequenceUnsupportedProvider(t *testing.T) {
	r := setupRouter(t, &aitest.Model{Reply: "Step 1: x"}, store.NewMemoryStore())

	resp := send(r, http.MethodPost, "/generate-sequence", map[string]any{"modelProvider": "llama"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUpdateSequenceReplacesSteps(t *testing.T) {
	st := store.NewMemoryStore()
	r := setupRouter(t, &aitest.Model{Reply: "Step 1: a\nStep 2: b"}, st)

	resp := send(r, http.MethodPost, "/generate-sequence", map[string]any{})
	var generated generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	resp = send(r, http.MethodPut, "/update-sequence", map[string]any{
		"sequenceId": generated.SequenceID,
		"steps":      []modelSequence.Step{{Step: "1", Content: "rewritten"}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body updateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "success" || body.Message != "Sequence updated successfully" {
		t.Fatalf("unexpected body: %+v", body)
	}

	stored, _ := st.Sequence(generated.SequenceID)
	if len(stored.Steps) != 1 || stored.Steps[0].Content != "rewritten" {
		t.Fatalf("old steps still present: %+v", stored.Steps)
	}
}

func TestUpdateSequenceErrors(t *testing.T) {
	r := setupRouter(t, &aitest.Model{}, store.NewMemoryStore())

	resp := send(r, http.MethodPut, "/update-sequence", map[string]any{"steps": []any{}})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", resp.Code)
	}

	resp = send(r, http.MethodPut, "/update-sequence", map[string]any{"sequenceId": 42, "steps": []any{}})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.Code)
	}

	resp = send(r, http.MethodPut, "/update-sequence", map[string]any{"sequenceId": true})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for boolean id, got %d", resp.Code)
	}
}

func TestSequenceIDUnmarshal(t *testing.T) {
	cases := map[string]string{
		`"abc-123"`: "abc-123",
		`17`:        "17",
		`null`:      "",
	}
	for raw, want := range cases {
		var id sequenceID
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			t.Fatalf("Unmarshal(%s) err: %v", raw, err)
		}
		if string(id) != want {
			t.Fatalf("Unmarshal(%s) = %q, want %q", raw, id, want)
		}
	}
}
