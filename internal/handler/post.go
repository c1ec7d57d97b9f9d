package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/httputil"
	"github.com/lucho20091/firebase-next/internal/model"
	"github.com/lucho20091/firebase-next/internal/service"
	"github.com/lucho20091/firebase-next/internal/transport/http/middleware"
)

type PostHandler struct {
	postService   *service.PostService
	defaultAvatar string
	log           *zap.Logger
}

func NewPostHandler(postService *service.PostService, defaultAvatar string, log *zap.Logger) *PostHandler {
	return &PostHandler{
		postService:   postService,
		defaultAvatar: defaultAvatar,
		log:           log.With(zap.String("component", "post_handler")),
	}
}

// Create handles POST /posts
// Creates a new post for the authenticated user.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.Create(r.Context(), identity.Author(h.defaultAvatar), req)
	if err != nil {
		writeServiceError(w, h.log.With(zap.String("user_id", identity.UserID)), err, "Failed to create post")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, post)
}

// GetByID handles GET /posts/{id}
// Returns the post with like and comment counts and the rendered thread.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	post, err := h.postService.GetByID(r.Context(), postID, middleware.ViewerID(r.Context()))
	if err != nil {
		writeServiceError(w, h.log.With(zap.String("post_id", postID)), err, "Failed to get post")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, post)
}

// GetUserPosts handles GET /users/{id}/posts
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	posts, err := h.postService.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log.With(zap.String("user_id", userID)), err, "Failed to get posts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, posts)
}

// ToggleLike handles POST /posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.postService.ToggleLike(r.Context(), chi.URLParam(r, "id"), identity.Author(h.defaultAvatar))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to toggle like")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
