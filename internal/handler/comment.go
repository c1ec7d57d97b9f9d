package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/httputil"
	"github.com/lucho20091/firebase-next/internal/model"
	"github.com/lucho20091/firebase-next/internal/service"
	"github.com/lucho20091/firebase-next/internal/transport/http/middleware"
)

// maxCommentBody bounds JSON bodies for comment requests.
const maxCommentBody = 64 << 10

type CommentHandler struct {
	commentService *service.CommentService
	defaultAvatar  string
	log            *zap.Logger
}

func NewCommentHandler(commentService *service.CommentService, defaultAvatar string, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		defaultAvatar:  defaultAvatar,
		log:            log.With(zap.String("component", "comment_handler")),
	}
}

// List handles GET /posts/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	thread, err := h.commentService.Thread(r.Context(), postID, middleware.ViewerID(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get comments")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, thread)
}

// Create handles POST /posts/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.commentService.AddComment(r.Context(), chi.URLParam(r, "id"), identity.Author(h.defaultAvatar), req.Text)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to add comment")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// Reply handles POST /posts/{id}/comments/replies
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateReplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Path) == 0 {
		httputil.WriteBadRequest(w, "path is required")
		return
	}

	resp, err := h.commentService.AddReply(r.Context(), chi.URLParam(r, "id"), req.Path, identity.Author(h.defaultAvatar), req.Text)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to add reply")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// ToggleLike handles POST /posts/{id}/comments/likes
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.ToggleCommentLikeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Path) == 0 {
		httputil.WriteBadRequest(w, "path is required")
		return
	}

	resp, err := h.commentService.ToggleLike(r.Context(), chi.URLParam(r, "id"), req.Path, identity.Author(h.defaultAvatar))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to toggle like")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// decodeJSON reads a bounded JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxCommentBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}
