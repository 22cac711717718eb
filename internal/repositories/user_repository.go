package repositories

import (
	"context"
	"errors"
	"slices"

	"github.com/anonto42/topichub/backend/internal/docstore"
	"github.com/anonto42/topichub/backend/internal/identity"
	"github.com/anonto42/topichub/backend/internal/models"
	"go.uber.org/zap"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	CreateUserDocument(ctx context.Context, userID string) error
	GrantAdminClaim(ctx context.Context, userID string) error

	IsPostSavedByUser(ctx context.Context, userID, postID string) (bool, error)
	SavePost(ctx context.Context, userID, postID string) (*models.Post, error)
	UnsavePost(ctx context.Context, userID, postID string) (*models.Post, error)
	GetSavedPosts(ctx context.Context, userID string) ([]models.Post, error)
	GetSavedCount(ctx context.Context, postID string) (int, error)

	IsTopicFollowedByUser(ctx context.Context, userID, topicName string) (bool, error)
	FollowTopic(ctx context.Context, userID, topicName string) (*models.Topic, error)
	UnfollowTopic(ctx context.Context, userID, topicName string) (*models.Topic, error)
	GetFollowedTopics(ctx context.Context, userID string) ([]models.Topic, error)

	GetDarkMode(ctx context.Context, userID string) (bool, error)
	EnableDarkMode(ctx context.Context, userID string) (bool, error)
	DisableDarkMode(ctx context.Context, userID string) (bool, error)
}

// AdminClaim is the custom identity claim marking administrators.
const AdminClaim = "admin"

type publishedPostReader interface {
	GetPostByID(ctx context.Context, postID string) (*models.Post, error)
	PostExists(ctx context.Context, postID string) (bool, error)
}

type topicReader interface {
	GetTopicByName(ctx context.Context, name string) (*models.Topic, error)
	TopicExists(ctx context.Context, name string) (bool, error)
}

// DocumentUserRepository implements UserRepository. Profiles come from the
// identity provider; saved posts, followed topics and preferences live in
// the users collection under the same id.
type DocumentUserRepository struct {
	accessor
	posts  publishedPostReader
	topics topicReader
}

var _ UserRepository = (*DocumentUserRepository)(nil)

// GetAllUsers walks every page of the identity provider
func (r *DocumentUserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var (
		users     []models.User
		pageToken string
	)
	for {
		page, next, err := r.identity.ListUsers(ctx, pageToken)
		if err != nil {
			return nil, r.unknown("list users", models.KindQueryFailed, err, zap.Int("fetched", len(users)))
		}
		users = append(users, page...)
		if next == "" {
			break
		}
		pageToken = next
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetUserByID returns a user profile
func (r *DocumentUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := r.fetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether the identity provider knows userID. Lookup
// failures other than not-found are returned as QUERY_FAILED.
func (r *DocumentUserRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	_, err := r.fetchUser(ctx, userID)
	if errors.Is(err, models.ErrInvalidUserID) {
		return false, nil
	}
	return err == nil, err
}

// CreateUserDocument initializes the application fields of a new user. An
// existing document is left alone.
func (r *DocumentUserRepository) CreateUserDocument(ctx context.Context, userID string) error {
	err := r.store.Create(ctx, usersCollection, userID, docstore.Fields{
		models.UserFieldFollowedTopics: []string{},
		models.UserFieldSavedPosts:     []string{},
		models.UserFieldDarkMode:       false,
	})
	switch {
	case err == nil:
		r.log.Info("user document created", zap.String("user_id", userID))
		return nil
	case errors.Is(err, docstore.ErrAlreadyExists):
		return nil
	case errors.Is(err, docstore.ErrInvalidKey):
		return r.reject("create user document", models.NewError(models.KindInvalidUserID, "User does not exist with id : %s", userID))
	default:
		return r.unknown("create user document", models.KindUserMutationFailed, err, zap.String("user_id", userID))
	}
}

// GrantAdminClaim sets the custom claim admin=true on the user's identity.
// Other custom claims of the user are replaced.
func (r *DocumentUserRepository) GrantAdminClaim(ctx context.Context, userID string) error {
	const op = "grant admin claim"
	err := r.identity.SetCustomClaims(ctx, userID, map[string]any{AdminClaim: true})
	switch {
	case err == nil:
		r.log.Info("admin claim granted", zap.String("user_id", userID))
		return nil
	case errors.Is(err, identity.ErrUserNotFound):
		return r.reject(op, models.NewError(models.KindInvalidUserID, "User does not exist with id : %s", userID))
	default:
		return r.unknown(op, models.KindUserMutationFailed, err, zap.String("user_id", userID))
	}
}

// IsPostSavedByUser reports whether postID is in the user's saved list.
// With no user document the answer is false once both ids are known valid.
func (r *DocumentUserRepository) IsPostSavedByUser(ctx context.Context, userID, postID string) (bool, error) {
	const op = "check saved post"
	doc, err := r.userDocument(ctx, op, userID)
	if err != nil {
		return false, err
	}
	if doc != nil {
		return slices.Contains(doc.SavedPosts, postID), nil
	}

	if err := r.checkUser(ctx, op, userID); err != nil {
		return false, err
	}
	exists, err := r.posts.PostExists(ctx, postID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, r.reject(op, models.NewError(models.KindInvalidPostID, "Post does not exist with id : %s", postID))
	}
	return false, nil
}

// SavePost adds a published post to the user's saved list
func (r *DocumentUserRepository) SavePost(ctx context.Context, userID, postID string) (*models.Post, error) {
	const op = "save post"
	saved, err := r.savedState(ctx, op, userID, postID)
	if err != nil {
		return nil, err
	}
	if saved {
		return nil, r.reject(op, models.NewError(models.KindInvalidOperation,
			"Post with id : %s is already saved by user with id : %s", postID, userID))
	}
	if err := r.store.ArrayUnion(ctx, usersCollection, userID, models.UserFieldSavedPosts, postID); err != nil {
		return nil, r.mutationFailure(op, userID, err)
	}
	return r.posts.GetPostByID(ctx, postID)
}

// UnsavePost removes a post from the user's saved list
func (r *DocumentUserRepository) UnsavePost(ctx context.Context, userID, postID string) (*models.Post, error) {
	const op = "unsave post"
	saved, err := r.savedState(ctx, op, userID, postID)
	if err != nil {
		return nil, err
	}
	if !saved {
		return nil, r.reject(op, models.NewError(models.KindInvalidOperation,
			"Post with id : %s is not saved by user with id : %s", postID, userID))
	}
	if err := r.store.ArrayRemove(ctx, usersCollection, userID, models.UserFieldSavedPosts, postID); err != nil {
		return nil, r.mutationFailure(op, userID, err)
	}
	return r.posts.GetPostByID(ctx, postID)
}

// GetSavedPosts resolves the user's saved posts that are still published.
// Saved ids that no longer resolve are reported in the returned error.
func (r *DocumentUserRepository) GetSavedPosts(ctx context.Context, userID string) ([]models.Post, error) {
	doc, err := r.requireDocument(ctx, "list saved posts", userID)
	if err != nil {
		return nil, err
	}
	posts, err := resolveAll(ctx, r.fanoutLimit, doc.SavedPosts, r.posts.GetPostByID)
	return derefAll(posts), err
}

// GetSavedCount returns how many users saved a post
func (r *DocumentUserRepository) GetSavedCount(ctx context.Context, postID string) (int, error) {
	docs, err := r.store.Query(ctx, usersCollection, docstore.Query{}.
		Where(models.UserFieldSavedPosts, docstore.OpArrayContains, postID))
	if err != nil {
		return 0, r.unknown("count saves", models.KindQueryFailed, err, zap.String("post_id", postID))
	}
	return len(docs), nil
}

// IsTopicFollowedByUser reports whether topicName is in the user's followed list
func (r *DocumentUserRepository) IsTopicFollowedByUser(ctx context.Context, userID, topicName string) (bool, error) {
	const op = "check followed topic"
	doc, err := r.userDocument(ctx, op, userID)
	if err != nil {
		return false, err
	}
	if doc != nil {
		return slices.Contains(doc.FollowedTopics, topicName), nil
	}

	if err := r.checkUser(ctx, op, userID); err != nil {
		return false, err
	}
	exists, err := r.topics.TopicExists(ctx, topicName)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, r.reject(op, models.NewError(models.KindInvalidTopicName, "Topic does not exist with name : %s", topicName))
	}
	return false, nil
}

// FollowTopic adds a topic to the user's followed list
func (r *DocumentUserRepository) FollowTopic(ctx context.Context, userID, topicName string) (*models.Topic, error) {
	const op = "follow topic"
	followed, err := r.followState(ctx, op, userID, topicName)
	if err != nil {
		return nil, err
	}
	if followed {
		return nil, r.reject(op, models.NewError(models.KindInvalidOperation,
			"Topic with name : %s is already followed by user with id : %s", topicName, userID))
	}
	if err := r.store.ArrayUnion(ctx, usersCollection, userID, models.UserFieldFollowedTopics, topicName); err != nil {
		return nil, r.mutationFailure(op, userID, err)
	}
	return r.topics.GetTopicByName(ctx, topicName)
}

// UnfollowTopic removes a topic from the user's followed list
func (r *DocumentUserRepository) UnfollowTopic(ctx context.Context, userID, topicName string) (*models.Topic, error) {
	const op = "unfollow topic"
	followed, err := r.followState(ctx, op, userID, topicName)
	if err != nil {
		return nil, err
	}
	if !followed {
		return nil, r.reject(op, models.NewError(models.KindInvalidOperation,
			"Topic with name : %s is not followed by user with id : %s", topicName, userID))
	}
	if err := r.store.ArrayRemove(ctx, usersCollection, userID, models.UserFieldFollowedTopics, topicName); err != nil {
		return nil, r.mutationFailure(op, userID, err)
	}
	return r.topics.GetTopicByName(ctx, topicName)
}

// GetFollowedTopics resolves the topics a user follows
func (r *DocumentUserRepository) GetFollowedTopics(ctx context.Context, userID string) ([]models.Topic, error) {
	doc, err := r.requireDocument(ctx, "list followed topics", userID)
	if err != nil {
		return nil, err
	}
	topics, err := resolveAll(ctx, r.fanoutLimit, doc.FollowedTopics, r.topics.GetTopicByName)
	return derefAll(topics), err
}

// GetDarkMode returns the user's dark mode preference
func (r *DocumentUserRepository) GetDarkMode(ctx context.Context, userID string) (bool, error) {
	const op = "get dark mode"
	if err := r.checkUser(ctx, op, userID); err != nil {
		return false, err
	}
	doc, err := r.userDocument(ctx, op, userID)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, r.unknown(op, models.KindQueryFailed, docstore.ErrNotFound, zap.String("user_id", userID))
	}
	return doc.DarkMode, nil
}

// EnableDarkMode turns dark mode on and returns the new value
func (r *DocumentUserRepository) EnableDarkMode(ctx context.Context, userID string) (bool, error) {
	return r.setDarkMode(ctx, "enable dark mode", userID, true)
}

// DisableDarkMode turns dark mode off and returns the new value
func (r *DocumentUserRepository) DisableDarkMode(ctx context.Context, userID string) (bool, error) {
	return r.setDarkMode(ctx, "disable dark mode", userID, false)
}

func (r *DocumentUserRepository) setDarkMode(ctx context.Context, op, userID string, on bool) (bool, error) {
	if err := r.checkUser(ctx, op, userID); err != nil {
		return false, err
	}
	if err := r.store.Update(ctx, usersCollection, userID, docstore.Fields{models.UserFieldDarkMode: on}); err != nil {
		return false, r.mutationFailure(op, userID, err)
	}
	return on, nil
}

// userDocument loads the stored fields of a user. A missing document is
// returned as nil without error.
func (r *DocumentUserRepository) userDocument(ctx context.Context, op, userID string) (*models.UserDocument, error) {
	doc, err := r.store.Get(ctx, usersCollection, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("user_id", userID))
	}
	var user models.UserDocument
	if err := doc.DataTo(&user); err != nil {
		return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("user_id", userID))
	}
	user.ID = doc.ID()
	return &user, nil
}

// requireDocument is userDocument for callers that treat a missing document
// as an unknown user.
func (r *DocumentUserRepository) requireDocument(ctx context.Context, op, userID string) (*models.UserDocument, error) {
	doc, err := r.userDocument(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, r.reject(op, models.NewError(models.KindInvalidUserID, "User does not exist with id : %s", userID))
	}
	return doc, nil
}

// savedState validates the user and the published post, then reports
// whether the post is currently saved.
func (r *DocumentUserRepository) savedState(ctx context.Context, op, userID, postID string) (bool, error) {
	if err := r.checkUser(ctx, op, userID); err != nil {
		return false, err
	}
	if _, err := r.posts.GetPostByID(ctx, postID); err != nil {
		return false, err
	}
	return r.IsPostSavedByUser(ctx, userID, postID)
}

func (r *DocumentUserRepository) followState(ctx context.Context, op, userID, topicName string) (bool, error) {
	if err := r.checkUser(ctx, op, userID); err != nil {
		return false, err
	}
	if _, err := r.topics.GetTopicByName(ctx, topicName); err != nil {
		return false, err
	}
	return r.IsTopicFollowedByUser(ctx, userID, topicName)
}

func (r *DocumentUserRepository) checkUser(ctx context.Context, op, userID string) error {
	exists, err := r.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return r.reject(op, models.NewError(models.KindInvalidUserID, "User does not exist with id : %s", userID))
	}
	return nil
}

// mutationFailure reports a failed write to the users collection. Writes
// never create the document, so a missing one is a failure too.
func (r *DocumentUserRepository) mutationFailure(op, userID string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		r.log.Warn(op+" failed: no user document", zap.String("user_id", userID))
		return models.WrapError(models.KindUserMutationFailed, err, "User document does not exist for id : %s", userID)
	}
	return r.unknown(op, models.KindUserMutationFailed, err, zap.String("user_id", userID))
}

func derefAll[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
