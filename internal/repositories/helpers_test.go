package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/topichub/backend/internal/docstore"
	"github.com/anonto42/topichub/backend/internal/identity/identitytest"
	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

// faultyStore fails the named methods and forwards everything else.
type faultyStore struct {
	docstore.Store
	fail map[string]bool
}

func (s *faultyStore) err(method string) error {
	if s.fail[method] {
		return errStoreDown
	}
	return nil
}

func (s *faultyStore) Get(ctx context.Context, collection, key string) (docstore.Document, error) {
	if err := s.err("Get"); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, collection, key)
}

func (s *faultyStore) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if err := s.err("Add"); err != nil {
		return "", err
	}
	return s.Store.Add(ctx, collection, fields)
}

func (s *faultyStore) Set(ctx context.Context, collection, key string, fields docstore.Fields) error {
	if err := s.err("Set"); err != nil {
		return err
	}
	return s.Store.Set(ctx, collection, key, fields)
}

func (s *faultyStore) Update(ctx context.Context, collection, key string, fields docstore.Fields) error {
	if err := s.err("Update"); err != nil {
		return err
	}
	return s.Store.Update(ctx, collection, key, fields)
}

func (s *faultyStore) Delete(ctx context.Context, collection, key string) error {
	if err := s.err("Delete"); err != nil {
		return err
	}
	return s.Store.Delete(ctx, collection, key)
}

func (s *faultyStore) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := s.err("Query"); err != nil {
		return nil, err
	}
	return s.Store.Query(ctx, collection, q)
}

func (s *faultyStore) ArrayUnion(ctx context.Context, collection, key, field string, value any) error {
	if err := s.err("ArrayUnion"); err != nil {
		return err
	}
	return s.Store.ArrayUnion(ctx, collection, key, field, value)
}

type fixture struct {
	repos *Repositories
	store *faultyStore
	ident *identitytest.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &faultyStore{Store: docstore.NewMemory(), fail: map[string]bool{}}
	ident := identitytest.New(2)
	return &fixture{
		repos: New(store, ident, zap.NewNop(), Options{FanoutLimit: 4}),
		store: store,
		ident: ident,
	}
}

// addUser registers an identity and its application document.
func (f *fixture) addUser(t *testing.T, id string) {
	t.Helper()
	f.ident.AddUser(models.User{ID: id, DisplayName: "user " + id, CreationTime: time.Now().UTC()})
	require.NoError(t, f.repos.Users.CreateUserDocument(context.Background(), id))
}

func (f *fixture) addTopic(t *testing.T, name string) *models.Topic {
	t.Helper()
	topic, err := f.repos.Topics.CreateTopic(context.Background(), models.TopicInput{
		Name:          name,
		Description:   "all about " + name,
		ThumbnailLink: "https://example.com/" + name + ".png",
	})
	require.NoError(t, err)
	return topic
}

func (f *fixture) addPost(t *testing.T, topic, title string, published bool) *models.Post {
	t.Helper()
	post, err := f.repos.Posts.CreatePost(context.Background(), models.PostInput{
		Title:       title,
		Caption:     title + " caption",
		Description: title + " description",
		TopicName:   topic,
		Published:   published,
	})
	require.NoError(t, err)
	return post
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
