package handlers

import (
	"net/http"
	"testing"

	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicRoutes_CreateAndRead(t *testing.T) {
	s := newTestServer(t)
	editor := s.login(t, "editor", true)
	s.createTopic(t, editor, "rust")
	s.createTopic(t, editor, "go")

	rec := s.do(http.MethodGet, "/api/v1/topics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	topics := decode[[]models.Topic](t, rec)
	require.Len(t, topics, 2)
	assert.Equal(t, "go", topics[0].Name)
	assert.Equal(t, "rust", topics[1].Name)

	rec = s.do(http.MethodGet, "/api/v1/topics/rust", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	topic := decode[models.Topic](t, rec)
	assert.Equal(t, "about rust", topic.Description)
	assert.Equal(t, "https://example.com/t.png", topic.ThumbnailLink)

	rec = s.do(http.MethodGet, "/api/v1/topics/zig/exists", "", "")
	assert.Equal(t, map[string]bool{"exists": false}, decode[map[string]bool](t, rec))

	rec = s.do(http.MethodGet, "/api/v1/topics/zig", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Topic does not exist with name : zig", decode[ErrorBody](t, rec).Error.Message)
}

func TestTopicRoutes_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	editor := s.login(t, "editor", true)
	reader := s.login(t, "reader", false)
	valid := `{"name":"go","description":"d","thumbnail_link":"https://example.com/go.png"}`

	rec := s.do(http.MethodPost, "/api/v1/topics", valid, reader)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/topics", `{"name":"a/b","description":"d","thumbnail_link":"https://example.com/x.png"}`, editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/topics", `{"name":"go","description":"d","thumbnail_link":"not a url"}`, editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorBody](t, rec).Error.Message, "thumbnail_link")
}

func TestTopicRoutes_Posts(t *testing.T) {
	s := newTestServer(t)
	editor := s.login(t, "editor", true)
	s.createTopic(t, editor, "go")
	s.createTopic(t, editor, "empty")
	s.createPost(t, editor, "go", "Visible", true)
	s.createPost(t, editor, "go", "Hidden", false)

	rec := s.do(http.MethodGet, "/api/v1/topics/go/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[[]models.Post](t, rec)
	require.Len(t, posts, 1)
	assert.Equal(t, "Visible", posts[0].Title)

	rec = s.do(http.MethodGet, "/api/v1/topics/empty/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/topics/missing/posts", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "INVALID_TOPIC_NAME", decode[ErrorBody](t, rec).Error.Code)
}

func TestTopicRoutes_Followers(t *testing.T) {
	s := newTestServer(t)
	editor := s.login(t, "editor", true)
	alice := s.login(t, "alice", false)
	s.createTopic(t, editor, "go")

	rec := s.do(http.MethodPost, "/api/v1/users/alice/topics/go", "", alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/topics/go/followers/count", "", "")
	assert.Equal(t, map[string]int{"count": 1}, decode[map[string]int](t, rec))

	rec = s.do(http.MethodGet, "/api/v1/topics/go/followers", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Data   []models.User `json:"data"`
		Errors []ErrorDetail `json:"errors"`
	}](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "alice", body.Data[0].ID)
	assert.Empty(t, body.Errors)
}
