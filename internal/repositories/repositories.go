package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/topichub/backend/internal/docstore"
	"github.com/anonto42/topichub/backend/internal/identity"
	"github.com/anonto42/topichub/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	postsCollection  = "posts"
	topicsCollection = "topics"
	usersCollection  = "users"
)

// DefaultFanoutLimit bounds concurrent per-element lookups in list operations.
const DefaultFanoutLimit = 16

// Repositories bundles the three access modules. Post, topic and user access
// call into one another through narrow interfaces, so they are built together.
type Repositories struct {
	Posts  *DocumentPostRepository
	Topics *DocumentTopicRepository
	Users  *DocumentUserRepository
}

// Options tunes the access layer.
type Options struct {
	FanoutLimit int
}

// New builds and links the access modules over one store and identity provider.
func New(store docstore.Store, ident identity.Provider, log *zap.Logger, opts Options) *Repositories {
	if opts.FanoutLimit <= 0 {
		opts.FanoutLimit = DefaultFanoutLimit
	}
	posts := &DocumentPostRepository{accessor: newAccessor(store, ident, log, "post", opts)}
	topics := &DocumentTopicRepository{accessor: newAccessor(store, ident, log, "topic", opts)}
	users := &DocumentUserRepository{accessor: newAccessor(store, ident, log, "user", opts)}

	posts.topics = topics
	posts.users = users
	topics.posts = posts
	users.posts = posts
	users.topics = topics

	return &Repositories{Posts: posts, Topics: topics, Users: users}
}

// accessor carries what every access module shares.
type accessor struct {
	store       docstore.Store
	identity    identity.Provider
	log         *zap.Logger
	fanoutLimit int
}

func newAccessor(store docstore.Store, ident identity.Provider, log *zap.Logger, module string, opts Options) accessor {
	return accessor{
		store:       store,
		identity:    ident,
		log:         log.With(zap.String("module", module)),
		fanoutLimit: opts.FanoutLimit,
	}
}

// unknown logs an infrastructure failure and converts it to kind.
func (a accessor) unknown(op string, kind models.ErrorKind, err error, fields ...zap.Field) error {
	a.log.Error(op+" failed", append(fields, zap.Error(err))...)
	return models.UnknownError(kind, err)
}

// reject logs a precondition violation and returns it unchanged.
func (a accessor) reject(op string, err *models.Error) error {
	a.log.Debug(op+" rejected", zap.String("kind", string(err.Kind)), zap.String("reason", err.Message))
	return err
}

// passthrough keeps typed errors from another module and converts anything else.
func (a accessor) passthrough(op string, kind models.ErrorKind, err error, fields ...zap.Field) error {
	var typed *models.Error
	if errors.As(err, &typed) {
		return err
	}
	return a.unknown(op, kind, err, fields...)
}

// fetchUser resolves a profile from the identity provider.
func (a accessor) fetchUser(ctx context.Context, userID string) (models.User, error) {
	user, err := a.identity.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return models.User{}, models.NewError(models.KindInvalidUserID, "User does not exist with id : %s", userID)
		}
		return models.User{}, a.unknown("fetch user", models.KindQueryFailed, err, zap.String("user_id", userID))
	}
	return *user, nil
}

// resolveAll resolves ids concurrently and keeps input order. Empty or
// failing ids are skipped; the rest of the batch still resolves and the
// failures come back together as one QUERY_FAILED error.
func resolveAll[T any](ctx context.Context, limit int, ids []string, resolve func(context.Context, string) (T, error)) ([]T, error) {
	results := make([]T, len(ids))
	failures := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			if id == "" {
				failures[i] = fmt.Errorf("element %d: empty id", i)
				return nil
			}
			v, err := resolve(ctx, id)
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", id, err)
				return nil
			}
			results[i] = v
			return nil
		})
	}
	_ = g.Wait()

	out := make([]T, 0, len(ids))
	var failed []error
	for i := range ids {
		if failures[i] != nil {
			failed = append(failed, failures[i])
			continue
		}
		out = append(out, results[i])
	}
	if len(failed) > 0 {
		return out, models.WrapError(models.KindQueryFailed, errors.Join(failed...),
			"%d of %d elements could not be fetched", len(failed), len(ids))
	}
	return out, nil
}
