package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/handler"
	"github.com/lucho20091/firebase-next/internal/httputil"
	"github.com/lucho20091/firebase-next/internal/model"
	"github.com/lucho20091/firebase-next/internal/queue"
	"github.com/lucho20091/firebase-next/internal/repository"
	"github.com/lucho20091/firebase-next/internal/service"
	authmw "github.com/lucho20091/firebase-next/internal/transport/http/middleware"
)

const testSecret = "router-secret"

type testServer struct {
	router http.Handler
	repo   repository.PostRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	repo := repository.NewMemoryPostRepository()
	pub := queue.NopPublisher{}

	router := NewRouter(RouterConfig{
		CommentHandler: handler.NewCommentHandler(service.NewCommentService(repo, pub, log), "/avatar.jpg", log),
		PostHandler:    handler.NewPostHandler(service.NewPostService(repo, pub, log), "/avatar.jpg", log),
		MediaHandler:   handler.NewMediaHandler(nil, log),
		Verifier:       authmw.NewHMACVerifier(testSecret),
		Logger:         log,
		AllowedOrigins: []string{"https://app.example.com"},
	})
	return &testServer{router: router, repo: repo}
}

func (s *testServer) seed(t *testing.T, post *model.Post) {
	t.Helper()
	if err := s.repo.Create(context.Background(), post); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func token(t *testing.T, userID, name string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": userID}
	if name != "" {
		claims["name"] = name
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[httputil.ErrorResponse](t, rec).Error.Code
}

// =============================================================================
// Tests
// =============================================================================

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCommentFlow(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, &model.Post{ID: "p1", AuthorID: "owner", Caption: "hello"})
	alice := token(t, "alice", "Alice")
	bob := token(t, "bob", "")

	// Top-level comment
	rec := s.do(t, http.MethodPost, "/posts/p1/comments", alice, model.CreateCommentRequest{Text: "first!"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create comment: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[model.CommentResponse](t, rec)
	if created.Comment.AuthorName != "Alice" || created.Comment.AuthorImage != "/avatar.jpg" || created.Total != 1 {
		t.Errorf("created = %+v", created)
	}

	// Reply addressed by the path returned above
	rec = s.do(t, http.MethodPost, "/posts/p1/comments/replies", bob, model.CreateReplyRequest{Path: created.Comment.Path, Text: "reply"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reply: %d %s", rec.Code, rec.Body.String())
	}
	reply := decode[model.CommentResponse](t, rec)
	if len(reply.Comment.Path) != 2 || reply.Total != 2 {
		t.Errorf("reply = %+v", reply)
	}

	// Like the reply
	rec = s.do(t, http.MethodPost, "/posts/p1/comments/likes", alice, model.ToggleCommentLikeRequest{Path: reply.Comment.Path})
	if rec.Code != http.StatusOK {
		t.Fatalf("like: %d %s", rec.Code, rec.Body.String())
	}
	if like := decode[model.ToggleLikeResponse](t, rec); !like.Liked || like.LikeCount != 1 {
		t.Errorf("like = %+v", like)
	}

	// Thread as seen by alice
	rec = s.do(t, http.MethodGet, "/posts/p1/comments", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("thread: %d", rec.Code)
	}
	thread := decode[model.ThreadResponse](t, rec)
	if thread.Total != 2 || len(thread.Comments) != 1 {
		t.Fatalf("thread = %+v", thread)
	}
	got := thread.Comments[0].Replies[0]
	if !got.LikedByViewer || got.LikesLabel != "1 like" || got.AuthorName != model.AnonymousName {
		t.Errorf("reply view = %+v", got)
	}

	// Anonymous viewers see counts but never their own like
	rec = s.do(t, http.MethodGet, "/posts/p1/comments", "", nil)
	anon := decode[model.ThreadResponse](t, rec)
	if anon.Comments[0].Replies[0].LikedByViewer {
		t.Error("anonymous viewer must not be reported as liking")
	}

	// Post view carries the same count
	rec = s.do(t, http.MethodGet, "/posts/p1", "", nil)
	post := decode[model.PostResponse](t, rec)
	if post.CommentCount != 2 || len(post.Thread) != 1 {
		t.Errorf("post = %+v", post)
	}
}

func TestCommentErrors(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, &model.Post{ID: "p1", AuthorID: "owner"})
	alice := token(t, "alice", "Alice")

	tests := []struct {
		name       string
		method     string
		path       string
		bearer     string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"unauthenticated", http.MethodPost, "/posts/p1/comments", "", model.CreateCommentRequest{Text: "x"}, http.StatusUnauthorized, httputil.ErrCodeUnauthorized},
		{"empty text", http.MethodPost, "/posts/p1/comments", alice, model.CreateCommentRequest{Text: "  "}, http.StatusBadRequest, httputil.ErrCodeBadRequest},
		{"missing post", http.MethodPost, "/posts/nope/comments", alice, model.CreateCommentRequest{Text: "x"}, http.StatusNotFound, httputil.ErrCodeNotFound},
		{"bad path", http.MethodPost, "/posts/p1/comments/replies", alice, model.CreateReplyRequest{Path: model.Path{3}, Text: "x"}, http.StatusNotFound, httputil.ErrCodePathNotFound},
		{"no path", http.MethodPost, "/posts/p1/comments/likes", alice, model.ToggleCommentLikeRequest{}, http.StatusBadRequest, httputil.ErrCodeBadRequest},
		{"bad json", http.MethodPost, "/posts/p1/comments", alice, "not an object", http.StatusBadRequest, httputil.ErrCodeBadRequest},
		{"thread of missing post", http.MethodGet, "/posts/nope/comments", "", nil, http.StatusNotFound, httputil.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.bearer, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestPostFlow(t *testing.T) {
	s := newTestServer(t)
	alice := token(t, "alice", "Alice")
	bob := token(t, "bob", "Bob")

	rec := s.do(t, http.MethodPost, "/posts", alice, model.CreatePostRequest{Caption: "sunset"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[model.PostResponse](t, rec)
	if created.ID == "" || created.AuthorName != "Alice" {
		t.Fatalf("created = %+v", created)
	}

	rec = s.do(t, http.MethodPost, "/posts/"+created.ID+"/like", bob, nil)
	if like := decode[model.ToggleLikeResponse](t, rec); !like.Liked || like.LikeCount != 1 {
		t.Errorf("like = %+v", like)
	}

	rec = s.do(t, http.MethodGet, "/posts/"+created.ID, bob, nil)
	post := decode[model.PostResponse](t, rec)
	if !post.LikedByViewer || post.LikesLabel != "1 like" {
		t.Errorf("post = %+v", post)
	}

	rec = s.do(t, http.MethodPost, "/posts/"+created.ID+"/like", bob, nil)
	if like := decode[model.ToggleLikeResponse](t, rec); like.Liked || like.LikeCount != 0 {
		t.Errorf("unlike = %+v", like)
	}

	rec = s.do(t, http.MethodGet, "/users/alice/posts", "", nil)
	list := decode[model.PostListResponse](t, rec)
	if len(list.Posts) != 1 || list.Posts[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	rec = s.do(t, http.MethodPost, "/posts", alice, model.CreatePostRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty post status = %d, want 400", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/posts/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing post status = %d, want 404", rec.Code)
	}
}

func TestMediaDisabled(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/media/posts/presign", token(t, "alice", ""), model.PresignPostUploadRequest{ContentType: "image/png", FileSize: 10})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/posts/p1/comments", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestGetPost_SendsTreeOnlyAsThread(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, &model.Post{
		ID:       "p1",
		AuthorID: "owner",
		Comments: []model.CommentNode{{AuthorID: "u1", Text: "hi"}},
	})

	rec := s.do(t, http.MethodGet, "/posts/p1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decode[map[string]json.RawMessage](t, rec)
	if _, ok := body["comments"]; ok {
		t.Error("raw comment tree must not be sent alongside the thread")
	}
	if _, ok := body["thread"]; !ok {
		t.Error("thread is missing")
	}
	if string(body["comment_count"]) != "1" {
		t.Errorf("comment_count = %s, want 1", body["comment_count"])
	}
}
