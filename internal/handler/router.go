package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zhouzirui/helix/backend/internal/handler/chat"
	"github.com/zhouzirui/helix/backend/internal/handler/diagnostics"
	"github.com/zhouzirui/helix/backend/internal/handler/sequence"
	aiService "github.com/zhouzirui/helix/backend/internal/service/ai"
	chatService "github.com/zhouzirui/helix/backend/internal/service/chat"
	sequenceService "github.com/zhouzirui/helix/backend/internal/service/sequence"
	"github.com/zhouzirui/helix/backend/internal/store"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(aiSvc *aiService.Service, st store.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chatHandler := chat.New(chatService.NewService(aiSvc, st))
	sequenceHandler := sequence.New(sequenceService.NewService(aiSvc, st))
	diagnosticsHandler := diagnostics.New(aiSvc, st)

	r.Route("/api", func(api chi.Router) {
		diagnosticsHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		sequenceHandler.RegisterRoutes(api)
	})

	return r
}
