package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/helix/backend/internal/handler/apierror"
	chatService "github.com/zhouzirui/helix/backend/internal/service/chat"
	"github.com/zhouzirui/helix/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

type chatRequest struct {
	Message       string `json:"message"`
	UserID        string `json:"userId"`
	ModelProvider string `json:"modelProvider"`
	ModelName     string `json:"modelName"`
}

type chatResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// handleChat 转发一条用户消息并返回模型回复
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}

	reply, err := h.chatSvc.Reply(r.Context(), chatService.Request{
		Message:   payload.Message,
		UserID:    payload.UserID,
		Provider:  payload.ModelProvider,
		ModelName: payload.ModelName,
	})
	if err != nil {
		log.Printf("[chat] request failed: %v", err)
		apierror.Respond(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Message: reply.Message,
		Status:  utils.StatusSuccess,
	})
}
