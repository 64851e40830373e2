package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hearsight/internal/auth"
	"hearsight/internal/handlers"
	"hearsight/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService    service.ChatService
	SearchService  service.SearchService
	LibraryService service.LibraryService
	Health         *handlers.HealthHandler
	Auth           *auth.Authenticator
	CORSOrigins    []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	r.Use(CORS(deps.CORSOrigins))

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	searchHandler := handlers.NewSearchHandler(deps.SearchService)
	libraryHandler := handlers.NewLibraryHandler(deps.LibraryService)

	r.Route("/api", func(r chi.Router) {
		if deps.Health != nil {
			r.Method(http.MethodGet, "/health", deps.Health)
		}

		r.Group(func(r chi.Router) {
			if deps.Auth != nil {
				r.Use(deps.Auth.Middleware)
			}

			r.Method(http.MethodPost, "/chat", chatHandler)
			r.Get("/chat/history/{session_id}", chatHandler.History)
			r.Delete("/chat/history/{session_id}", chatHandler.DeleteHistory)

			r.Method(http.MethodPost, "/search", searchHandler)

			r.Get("/videos", libraryHandler.ListVideos)
			r.Get("/videos/{video_id}/paragraphs", libraryHandler.VideoParagraphs)
			r.Delete("/videos/{video_id}", libraryHandler.DeleteVideo)

			r.Get("/folders", libraryHandler.ListFolders)
			r.Post("/folders", libraryHandler.CreateFolder)
			r.Post("/folders/move-video", libraryHandler.MoveVideo)
			r.Put("/folders/{folder_id}", libraryHandler.RenameFolder)
			r.Put("/folders/{folder_id}/parent", libraryHandler.UpdateParent)
			r.Delete("/folders/{folder_id}", libraryHandler.DeleteFolder)
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
