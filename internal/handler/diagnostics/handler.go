package diagnostics

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/helix/backend/internal/handler/apierror"
	"github.com/zhouzirui/helix/backend/internal/service/ai"
	"github.com/zhouzirui/helix/backend/internal/store"
	"github.com/zhouzirui/helix/backend/pkg/utils"
)

// Handler 健康检查与外部依赖连通性探测
type Handler struct {
	aiSvc *ai.Service
	store store.Store
}

// New 创建诊断处理器
func New(aiSvc *ai.Service, st store.Store) *Handler {
	return &Handler{aiSvc: aiSvc, store: st}
}

// RegisterRoutes 注册诊断相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/test-openai", h.providerProbe(ai.ProviderOpenAI))
	r.Get("/test-gemini", h.providerProbe(ai.ProviderGemini))
	r.Get("/test-ark", h.providerProbe(ai.ProviderArk))
	r.Get("/test-supabase", h.handleStoreProbe)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type providerProbeResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Message  string `json:"message"`
}

func (h *Handler) providerProbe(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		completion, err := h.aiSvc.Probe(r.Context(), provider)
		if err != nil {
			log.Printf("[diagnostics] %s probe failed: %v", provider, err)
			apierror.Respond(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, providerProbeResponse{
			Status:   utils.StatusSuccess,
			Provider: completion.Provider,
			Model:    completion.Model,
			Message:  completion.Content,
		})
	}
}

type storeProbeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Rows    int    `json:"rows"`
}

func (h *Handler) handleStoreProbe(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.Probe(r.Context())
	if err != nil {
		log.Printf("[diagnostics] store probe failed: %v", err)
		apierror.Respond(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, storeProbeResponse{
		Status:  utils.StatusSuccess,
		Message: "Store connection successful",
		Rows:    rows,
	})
}
