package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhouzirui/helix/backend/internal/service/ai"
	chatService "github.com/zhouzirui/helix/backend/internal/service/chat"
	sequenceService "github.com/zhouzirui/helix/backend/internal/service/sequence"
	"github.com/zhouzirui/helix/backend/internal/store"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		source string
	}{
		{"unsupported provider", fmt.Errorf("%w: %q", ai.ErrUnsupportedProvider, "x"), http.StatusBadRequest, SourceModelSelection},
		{"missing credential", fmt.Errorf("%w: gemini", ai.ErrMissingCredential), http.StatusBadRequest, SourceModelSelection},
		{"missing id", sequenceService.ErrSequenceIDRequired, http.StatusBadRequest, SourceValidation},
		{"not found", store.ErrSequenceNotFound, http.StatusNotFound, SourceDatabase},
		{"unconfigured store", fmt.Errorf("%w: %w", chatService.ErrPersistUserMessage, store.ErrNotConfigured), http.StatusBadRequest, SourceDatabase},
		{"write failure", fmt.Errorf("%w: %w", chatService.ErrPersistUserMessage, errors.New("boom")), http.StatusInternalServerError, SourceDatabase},
		{"provider failure", fmt.Errorf("%w: openai: %w", ai.ErrCompletion, errors.New("429")), http.StatusInternalServerError, SourceModelProvider},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, SourceServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, source := Classify(tc.err)
			if status != tc.status || source != tc.source {
				t.Fatalf("Classify(%v) = %d/%s, want %d/%s", tc.err, status, source, tc.status, tc.source)
			}
		})
	}
}

func TestRespondWritesSourceTaggedBody(t *testing.T) {
	resp := httptest.NewRecorder()
	BadRequest(resp, "invalid request body")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "error" || body["source"] != SourceValidation || body["error"] != "invalid request body" {
		t.Fatalf("unexpected body: %v", body)
	}

	resp = httptest.NewRecorder()
	Respond(resp, store.ErrSequenceNotFound)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
