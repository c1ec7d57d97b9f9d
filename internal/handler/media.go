package handler

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/httputil"
	"github.com/lucho20091/firebase-next/internal/model"
	"github.com/lucho20091/firebase-next/internal/transport/http/middleware"
)

// MediaUploader is implemented by service.MediaService.
type MediaUploader interface {
	UploadPostMedia(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	PresignPostUpload(ctx context.Context, req model.PresignPostUploadRequest) (*model.PresignPostUploadResponse, error)
	UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
}

type MediaHandler struct {
	mediaService MediaUploader
	log          *zap.Logger
}

// NewMediaHandler accepts a nil service; every endpoint then answers 503.
func NewMediaHandler(mediaService MediaUploader, log *zap.Logger) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, log: log.With(zap.String("component", "media_handler"))}
}

// UploadPostMedia handles POST /media/posts (multipart field "file")
func (h *MediaHandler) UploadPostMedia(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, model.MaxPostMediaSize, false)
}

// UploadAvatar handles POST /media/avatar (multipart field "file")
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, model.MaxAvatarSizeBytes, true)
}

func (h *MediaHandler) upload(w http.ResponseWriter, r *http.Request, maxSize int64, avatar bool) {
	if !h.ready(w, r) {
		return
	}

	// Leave room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+(1<<20))
	if err := r.ParseMultipartForm(maxSize); err != nil {
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "file is required")
		return
	}
	defer file.Close()

	var res *model.UploadResult
	if avatar {
		res, err = h.mediaService.UploadAvatar(r.Context(), file, header)
	} else {
		res, err = h.mediaService.UploadPostMedia(r.Context(), file, header)
	}
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to upload media")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// PresignPostUpload handles POST /media/posts/presign
// Returns a presigned URL for uploading post media directly to R2.
func (h *MediaHandler) PresignPostUpload(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB is plenty for JSON
	var req model.PresignPostUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.ContentType = strings.TrimSpace(req.ContentType)
	if req.ContentType == "" {
		httputil.WriteBadRequest(w, "content_type is required")
		return
	}

	res, err := h.mediaService.PresignPostUpload(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create upload URL")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// ready checks authentication and that storage is configured.
func (h *MediaHandler) ready(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := middleware.GetIdentityFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return false
	}
	if h.mediaService == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Media storage is not configured")
		return false
	}
	return true
}
