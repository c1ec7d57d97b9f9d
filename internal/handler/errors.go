package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/httputil"
	"github.com/lucho20091/firebase-next/internal/model"
)

// writeServiceError maps domain errors to the API error envelope. Anything
// unrecognized is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, msg string) {
	switch {
	case errors.Is(err, model.ErrPathNotFound):
		httputil.WriteError(w, http.StatusNotFound, httputil.ErrCodePathNotFound, "Comment not found at that path")
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrContentRequired):
		httputil.WriteBadRequest(w, "Comment text is required")
	case errors.Is(err, model.ErrContentTooLong):
		httputil.WriteBadRequest(w, "Comment too long (max 2200 characters)")
	case errors.Is(err, model.ErrCaptionTooLong):
		httputil.WriteBadRequest(w, "Caption too long (max 2200 characters)")
	case errors.Is(err, model.ErrEmptyPost):
		httputil.WriteBadRequest(w, "A post needs text or media")
	case errors.Is(err, model.ErrInvalidMediaURL):
		httputil.WriteBadRequest(w, "Media must be an http(s) URL")
	case errors.Is(err, model.ErrInvalidMediaType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidMediaType, "Unsupported media type. Allowed: jpeg, png, gif, webp, mp4, webm, ogg, avi, mov")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds the size limit")
	case errors.Is(err, model.ErrWriteFailed):
		log.Error(msg, zap.Error(err))
		httputil.WriteBadGateway(w, httputil.ErrCodeWriteFailed, "Could not save changes, try again")
	default:
		log.Error(msg, zap.Error(err))
		httputil.WriteInternalError(w, msg)
	}
}
