package sequence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/helix/backend/internal/handler/apierror"
	modelSequence "github.com/zhouzirui/helix/backend/internal/model/sequence"
	sequenceService "github.com/zhouzirui/helix/backend/internal/service/sequence"
	"github.com/zhouzirui/helix/backend/pkg/utils"
)

// Handler 序列服务的HTTP处理器
type Handler struct {
	sequenceSvc *sequenceService.Service
}

// New 创建序列处理器
func New(sequenceSvc *sequenceService.Service) *Handler {
	return &Handler{sequenceSvc: sequenceSvc}
}

// RegisterRoutes 注册序列相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate-sequence", h.handleGenerate)
	r.Put("/update-sequence", h.handleUpdate)
}

type generateRequest struct {
	Context       json.RawMessage `json:"context"`
	UserID        string          `json:"userId"`
	ModelProvider string          `json:"modelProvider"`
	ModelName     string          `json:"modelName"`
}

type generateResponse struct {
	Sequence   []modelSequence.Step `json:"sequence"`
	SequenceID string               `json:"sequenceId"`
	Status     string               `json:"status"`
}

// handleGenerate 根据上下文生成外联序列
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.sequenceSvc.Generate(r.Context(), sequenceService.GenerateRequest{
		Context:   payload.Context,
		UserID:    payload.UserID,
		Provider:  payload.ModelProvider,
		ModelName: payload.ModelName,
	})
	if err != nil {
		log.Printf("[sequence] generate failed: %v", err)
		apierror.Respond(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, generateResponse{
		Sequence:   result.Steps,
		SequenceID: result.SequenceID,
		Status:     utils.StatusSuccess,
	})
}

// sequenceID accepts both string and numeric identifiers.
type sequenceID string

func (id *sequenceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = sequenceID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("sequenceId must be a string or number")
	}
	*id = sequenceID(n.String())
	return nil
}

type updateRequest struct {
	SequenceID sequenceID           `json:"sequenceId"`
	Steps      []modelSequence.Step `json:"steps"`
}

type updateResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// handleUpdate 用用户编辑后的步骤整体替换已存储的步骤
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload updateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}

	id := strings.TrimSpace(string(payload.SequenceID))
	if err := h.sequenceSvc.Update(r.Context(), id, payload.Steps); err != nil {
		log.Printf("[sequence] update failed for sequence=%s: %v", id, err)
		apierror.Respond(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, updateResponse{
		Message: "Sequence updated successfully",
		Status:  utils.StatusSuccess,
	})
}
