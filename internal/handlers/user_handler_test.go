package handlers

import (
	"net/http"
	"testing"

	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoutes_SelfOnly(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice", false)
	s.login(t, "bob", false)
	editor := s.login(t, "editor", true)

	paths := []string{
		"/api/v1/users/bob/saved-posts",
		"/api/v1/users/bob/topics",
		"/api/v1/users/bob/dark-mode",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, path, "", "").Code)
			assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, "", alice).Code)
			assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, "", editor).Code)
		})
	}

	rec := s.do(http.MethodPut, "/api/v1/users/bob/dark-mode", "", alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserRoutes_ListUsersIsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice", false)
	editor := s.login(t, "editor", true)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/users", "", alice).Code)

	rec := s.do(http.MethodGet, "/api/v1/users", "", editor)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]models.User](t, rec)
	assert.Len(t, users, 2)
}

func TestUserRoutes_Profile(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice", false)

	rec := s.do(http.MethodGet, "/api/v1/users/alice/exists", "", "")
	assert.Equal(t, map[string]bool{"exists": true}, decode[map[string]bool](t, rec))
	rec = s.do(http.MethodGet, "/api/v1/users/ghost/exists", "", "")
	assert.Equal(t, map[string]bool{"exists": false}, decode[map[string]bool](t, rec))

	rec = s.do(http.MethodGet, "/api/v1/users/alice", "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[models.User](t, rec).DisplayName)

	rec = s.do(http.MethodGet, "/api/v1/users/ghost", "", alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "INVALID_USER_ID", decode[ErrorBody](t, rec).Error.Code)
}

func TestUserRoutes_SavedPosts(t *testing.T) {
	s := newTestServer(t)
	editor := s.login(t, "editor", true)
	alice := s.login(t, "alice", false)
	s.createTopic(t, editor, "go")
	kept := s.createPost(t, editor, "go", "Kept", true)
	gone := s.createPost(t, editor, "go", "Gone", true)
	saved := "/api/v1/users/alice/saved-posts"

	for _, id := range []string{kept.ID, gone.ID} {
		rec := s.do(http.MethodPost, saved+"/"+id, "", alice)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := s.do(http.MethodPost, saved+"/"+kept.ID, "", alice)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, saved+"/"+kept.ID, "", alice)
	assert.Equal(t, map[string]bool{"saved": true}, decode[map[string]bool](t, rec))

	rec = s.do(http.MethodGet, "/api/v1/posts/"+kept.ID+"/saves/count", "", "")
	assert.Equal(t, map[string]int{"count": 1}, decode[map[string]int](t, rec))

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/v1/posts/"+gone.ID, "", editor).Code)

	rec = s.do(http.MethodGet, saved, "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Data   []models.Post `json:"data"`
		Errors []ErrorDetail `json:"errors"`
	}](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, kept.ID, body.Data[0].ID)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "INVALID_POST_ID", body.Errors[0].Code)

	rec = s.do(http.MethodDelete, saved+"/"+kept.ID, "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodDelete, saved+"/"+kept.ID, "", alice)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Post with id : "+kept.ID+" is not saved by user with id : alice", decode[ErrorBody](t, rec).Error.Message)
}

func TestUserRoutes_FollowedTopics(t *testing.T) {
	s := newTestServer(t)
	editor := s.login(t, "editor", true)
	alice := s.login(t, "alice", false)
	s.createTopic(t, editor, "go")
	topics := "/api/v1/users/alice/topics"

	rec := s.do(http.MethodPost, topics+"/go", "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "go", decode[models.Topic](t, rec).Name)

	rec = s.do(http.MethodPost, topics+"/go", "", alice)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, topics+"/zig", "", alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "INVALID_TOPIC_NAME", decode[ErrorBody](t, rec).Error.Code)

	rec = s.do(http.MethodGet, topics+"/go", "", alice)
	assert.Equal(t, map[string]bool{"followed": true}, decode[map[string]bool](t, rec))

	rec = s.do(http.MethodGet, topics, "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Data []models.Topic `json:"data"`
	}](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "go", body.Data[0].Name)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, topics+"/go", "", alice).Code)
	rec = s.do(http.MethodGet, topics+"/go", "", alice)
	assert.Equal(t, map[string]bool{"followed": false}, decode[map[string]bool](t, rec))
}

func TestUserRoutes_DarkMode(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice", false)
	darkMode := "/api/v1/users/alice/dark-mode"

	rec := s.do(http.MethodGet, darkMode, "", alice)
	assert.Equal(t, map[string]bool{"dark_mode": false}, decode[map[string]bool](t, rec))

	rec = s.do(http.MethodPut, darkMode, "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"dark_mode": true}, decode[map[string]bool](t, rec))

	rec = s.do(http.MethodGet, darkMode, "", alice)
	assert.Equal(t, map[string]bool{"dark_mode": true}, decode[map[string]bool](t, rec))

	rec = s.do(http.MethodDelete, darkMode, "", alice)
	assert.Equal(t, map[string]bool{"dark_mode": false}, decode[map[string]bool](t, rec))
}
