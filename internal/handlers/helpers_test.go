package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/topichub/backend/internal/docstore"
	"github.com/anonto42/topichub/backend/internal/identity/identitytest"
	"github.com/anonto42/topichub/backend/internal/middleware"
	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/anonto42/topichub/backend/internal/repositories"
	"github.com/anonto42/topichub/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type countingRecorder struct {
	kinds map[string]int
}

func (r *countingRecorder) RecordError(kind string) {
	r.kinds[kind]++
}

type testServer struct {
	e        *echo.Echo
	repos    *repositories.Repositories
	ident    *identitytest.Fake
	auth     *AuthHandler
	recorder *countingRecorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	ident := identitytest.New(0)
	repos := repositories.New(docstore.NewMemory(), ident, log, repositories.Options{})
	rec := &countingRecorder{kinds: map[string]int{}}

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = NewErrorHandler(log, rec)

	public := e.Group("/api/v1")
	protected := public.Group("", middleware.JWTAuthMiddleware(testSecret))
	admin := protected.Group("", middleware.RequireAdmin())

	auth := NewAuthHandler(repos.Users, ident, testSecret, time.Hour, log)
	auth.RegisterAuthRoutes(public, admin)
	NewPostHandler(repos.Posts, repos.Topics, repos.Users).RegisterPostRoutes(public, protected, admin)
	NewTopicHandler(repos.Topics, repos.Posts).RegisterTopicRoutes(public, admin)
	NewUserHandler(repos.Users, repos.Posts).RegisterUserRoutes(public, protected, admin)

	return &testServer{e: e, repos: repos, ident: ident, auth: auth, recorder: rec}
}

// login registers a user and returns a session token for it.
func (s *testServer) login(t *testing.T, uid string, admin bool) string {
	t.Helper()
	s.ident.AddUser(models.User{ID: uid, DisplayName: uid})
	require.NoError(t, s.repos.Users.CreateUserDocument(context.Background(), uid))
	token, err := s.auth.generateJWT(uid, uid+"@example.com", admin)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createTopic(t *testing.T, token, name string) {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/topics",
		`{"name":"`+name+`","description":"about `+name+`","thumbnail_link":"https://example.com/t.png"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *testServer) createPost(t *testing.T, token, topic, title string, published bool) models.Post {
	t.Helper()
	body, err := json.Marshal(models.PostInput{
		Title:       title,
		Caption:     "caption",
		Description: "description",
		TopicName:   topic,
		Published:   published,
	})
	require.NoError(t, err)
	rec := s.do(http.MethodPost, "/api/v1/posts", string(body), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Post](t, rec)
}
