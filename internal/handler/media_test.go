package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/httputil"
	"github.com/lucho20091/firebase-next/internal/model"
	"github.com/lucho20091/firebase-next/internal/transport/http/middleware"
)

// =============================================================================
// MOCK UPLOADER
// =============================================================================

type mockUploader struct {
	uploadPostFn   func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	presignFn      func(ctx context.Context, req model.PresignPostUploadRequest) (*model.PresignPostUploadResponse, error)
	uploadAvatarFn func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
}

func (m *mockUploader) UploadPostMedia(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	return m.uploadPostFn(ctx, file, header)
}

func (m *mockUploader) PresignPostUpload(ctx context.Context, req model.PresignPostUploadRequest) (*model.PresignPostUploadResponse, error) {
	return m.presignFn(ctx, req)
}

func (m *mockUploader) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	return m.uploadAvatarFn(ctx, file, header)
}

// =============================================================================
// HELPERS
// =============================================================================

func authed(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.IdentityKey, model.Identity{UserID: "u1"})
	return r.WithContext(ctx)
}

func multipartRequest(t *testing.T, target, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, "photo.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(data)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httputil.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error.Code
}

// =============================================================================
// UPLOAD TESTS
// =============================================================================

func TestMediaHandler_UploadPostMedia(t *testing.T) {
	// ARRANGE
	var gotName string
	uploader := &mockUploader{
		uploadPostFn: func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
			gotName = header.Filename
			return &model.UploadResult{URL: "https://cdn.example.com/posts/images/x.png", Key: "posts/images/x.png", MediaType: model.MediaTypeImage}, nil
		},
	}
	h := NewMediaHandler(uploader, zap.NewNop())
	rec := httptest.NewRecorder()

	// ACT
	h.UploadPostMedia(rec, authed(multipartRequest(t, "/media/posts", "file", []byte("png"))))

	// ASSERT
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if gotName != "photo.png" {
		t.Errorf("filename = %q", gotName)
	}
	var res model.UploadResult
	json.NewDecoder(rec.Body).Decode(&res)
	if res.Key != "posts/images/x.png" {
		t.Errorf("key = %q", res.Key)
	}
}

func TestMediaHandler_UploadAvatarUsesAvatarPath(t *testing.T) {
	called := false
	uploader := &mockUploader{
		uploadAvatarFn: func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
			called = true
			return &model.UploadResult{URL: "https://cdn.example.com/avatars/a.jpg"}, nil
		},
	}
	h := NewMediaHandler(uploader, zap.NewNop())
	rec := httptest.NewRecorder()

	h.UploadAvatar(rec, authed(multipartRequest(t, "/media/avatar", "file", []byte("png"))))

	if rec.Code != http.StatusCreated || !called {
		t.Errorf("status = %d, called = %v", rec.Code, called)
	}
}

func TestMediaHandler_UploadErrors(t *testing.T) {
	uploader := &mockUploader{
		uploadPostFn: func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
			return nil, model.ErrInvalidMediaType
		},
	}

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{"missing file", authed(multipartRequest(t, "/media/posts", "", nil)), http.StatusBadRequest, httputil.ErrCodeBadRequest},
		{"rejected type", authed(multipartRequest(t, "/media/posts", "file", []byte("x"))), http.StatusBadRequest, model.CodeInvalidMediaType},
		{"unauthenticated", multipartRequest(t, "/media/posts", "file", []byte("x")), http.StatusUnauthorized, httputil.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMediaHandler(uploader, zap.NewNop())
			rec := httptest.NewRecorder()

			h.UploadPostMedia(rec, tt.req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

// =============================================================================
// PRESIGN TESTS
// =============================================================================

func TestMediaHandler_Presign(t *testing.T) {
	var got model.PresignPostUploadRequest
	uploader := &mockUploader{
		presignFn: func(ctx context.Context, req model.PresignPostUploadRequest) (*model.PresignPostUploadResponse, error) {
			got = req
			return &model.PresignPostUploadResponse{UploadURL: "https://upload", Key: "posts/images/k.png"}, nil
		},
	}
	h := NewMediaHandler(uploader, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/media/posts/presign", strings.NewReader(`{"content_type":" image/png ","file_size":42}`))
	h.PresignPostUpload(rec, authed(req))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.ContentType != "image/png" || got.FileSize != 42 {
		t.Errorf("request = %+v", got)
	}
}

func TestMediaHandler_PresignRequiresContentType(t *testing.T) {
	h := NewMediaHandler(&mockUploader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/media/posts/presign", strings.NewReader(`{"file_size":42}`))
	h.PresignPostUpload(rec, authed(req))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMediaHandler_StorageUnavailable(t *testing.T) {
	h := NewMediaHandler(nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.UploadPostMedia(rec, authed(multipartRequest(t, "/media/posts", "file", []byte("x"))))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if code := errorCode(t, rec); code != "STORAGE_UNAVAILABLE" {
		t.Errorf("code = %q", code)
	}
}
