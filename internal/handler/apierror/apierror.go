// Package apierror maps service errors onto HTTP status codes and the
// "source" tag reported to the frontend.
package apierror

import (
	"errors"
	"net/http"

	"github.com/zhouzirui/helix/backend/internal/service/ai"
	chatService "github.com/zhouzirui/helix/backend/internal/service/chat"
	sequenceService "github.com/zhouzirui/helix/backend/internal/service/sequence"
	"github.com/zhouzirui/helix/backend/internal/store"
	"github.com/zhouzirui/helix/backend/pkg/utils"
)

// Sources reported in error bodies.
const (
	SourceModelSelection = "model_selection"
	SourceModelProvider  = "model_provider"
	SourceDatabase       = "database"
	SourceValidation     = "validation"
	SourceServer         = "server"
)

// Classify returns the HTTP status and source for err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, ai.ErrUnsupportedProvider), errors.Is(err, ai.ErrMissingCredential):
		return http.StatusBadRequest, SourceModelSelection
	case errors.Is(err, sequenceService.ErrSequenceIDRequired), errors.Is(err, sequenceService.ErrInvalidContext):
		return http.StatusBadRequest, SourceValidation
	case errors.Is(err, store.ErrSequenceNotFound):
		return http.StatusNotFound, SourceDatabase
	case errors.Is(err, store.ErrNotConfigured):
		return http.StatusBadRequest, SourceDatabase
	case errors.Is(err, chatService.ErrPersistUserMessage), errors.Is(err, sequenceService.ErrPersistSequence):
		return http.StatusInternalServerError, SourceDatabase
	case errors.Is(err, ai.ErrCompletion):
		return http.StatusInternalServerError, SourceModelProvider
	default:
		return http.StatusInternalServerError, SourceServer
	}
}

// Respond writes err as {error, status, source}.
func Respond(w http.ResponseWriter, err error) {
	status, source := Classify(err)
	utils.RespondErrorFrom(w, status, err.Error(), source)
}

// BadRequest writes a validation failure.
func BadRequest(w http.ResponseWriter, message string) {
	utils.RespondErrorFrom(w, http.StatusBadRequest, message, SourceValidation)
}
