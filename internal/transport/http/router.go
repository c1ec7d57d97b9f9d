package http

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/handler"
	"github.com/lucho20091/firebase-next/internal/httputil"
	authmw "github.com/lucho20091/firebase-next/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	CommentHandler *handler.CommentHandler
	PostHandler    *handler.PostHandler
	MediaHandler   *handler.MediaHandler
	Verifier       authmw.TokenVerifier
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// Browsers refuse credentials together with a wildcard origin
	allowCredentials := len(cfg.AllowedOrigins) > 0 && !slices.Contains(cfg.AllowedOrigins, "*")
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	optionalAuth := authmw.OptionalAuthMiddleware(cfg.Verifier)
	requireAuth := authmw.AuthMiddleware(cfg.Verifier)
	logRequests := authmw.RequestLogger(cfg.Logger)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public reads with optional authentication, so like state reflects the viewer
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth, logRequests)

		r.Get("/posts/{id}", cfg.PostHandler.GetByID)
		r.Get("/posts/{id}/comments", cfg.CommentHandler.List)
		r.Get("/users/{id}/posts", cfg.PostHandler.GetUserPosts)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, logRequests)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Post("/posts/{id}/like", cfg.PostHandler.ToggleLike)

		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)
		r.Post("/posts/{id}/comments/replies", cfg.CommentHandler.Reply)
		r.Post("/posts/{id}/comments/likes", cfg.CommentHandler.ToggleLike)

		r.Post("/media/posts", cfg.MediaHandler.UploadPostMedia)
		r.Post("/media/posts/presign", cfg.MediaHandler.PresignPostUpload)
		r.Post("/media/avatar", cfg.MediaHandler.UploadAvatar)
	})

	return r
}
