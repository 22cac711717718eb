package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/topichub/backend/internal/docstore"
	"github.com/anonto42/topichub/backend/internal/models"
	"go.uber.org/zap"
)

// TopicRepository defines the interface for topic data operations
type TopicRepository interface {
	GetAllTopics(ctx context.Context) ([]models.Topic, error)
	GetTopicByName(ctx context.Context, name string) (*models.Topic, error)
	TopicExists(ctx context.Context, name string) (bool, error)
	CreateTopic(ctx context.Context, input models.TopicInput) (*models.Topic, error)
	GetTopicOfPost(ctx context.Context, postID string) (*models.Topic, error)
	GetTopicFollowers(ctx context.Context, name string) ([]models.User, error)
	GetFollowersCount(ctx context.Context, name string) (int, error)
}

type editorPostReader interface {
	GetPostByIDForEditor(ctx context.Context, postID string) (*models.Post, error)
}

// DocumentTopicRepository implements TopicRepository over a docstore.Store.
// Topics are keyed by name.
type DocumentTopicRepository struct {
	accessor
	posts editorPostReader
}

var _ TopicRepository = (*DocumentTopicRepository)(nil)

// GetAllTopics lists every topic
func (r *DocumentTopicRepository) GetAllTopics(ctx context.Context) ([]models.Topic, error) {
	const op = "list topics"
	docs, err := r.store.Query(ctx, topicsCollection, docstore.Query{})
	if err != nil {
		return nil, r.unknown(op, models.KindQueryFailed, err)
	}
	topics := make([]models.Topic, 0, len(docs))
	for _, doc := range docs {
		topic, err := decodeTopic(doc)
		if err != nil {
			return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("topic", doc.ID()))
		}
		topics = append(topics, *topic)
	}
	return topics, nil
}

// GetTopicByName returns a topic by its name
func (r *DocumentTopicRepository) GetTopicByName(ctx context.Context, name string) (*models.Topic, error) {
	const op = "get topic"
	doc, err := r.store.Get(ctx, topicsCollection, name)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, r.reject(op, models.NewError(models.KindInvalidTopicName, "Topic does not exist with name : %s", name))
		}
		return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("topic", name))
	}
	topic, err := decodeTopic(doc)
	if err != nil {
		return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("topic", name))
	}
	return topic, nil
}

// TopicExists reports whether a topic with the given name exists
func (r *DocumentTopicRepository) TopicExists(ctx context.Context, name string) (bool, error) {
	_, err := r.GetTopicByName(ctx, name)
	if errors.Is(err, models.ErrInvalidTopicName) {
		return false, nil
	}
	return err == nil, err
}

// CreateTopic writes a topic under its name. An existing topic of the same
// name is overwritten, including its creation time.
func (r *DocumentTopicRepository) CreateTopic(ctx context.Context, input models.TopicInput) (*models.Topic, error) {
	const op = "create topic"
	err := r.store.Set(ctx, topicsCollection, input.Name, docstore.Fields{
		models.TopicFieldDescription:   input.Description,
		models.TopicFieldThumbnailLink: input.ThumbnailLink,
		models.TopicFieldCreationTime:  docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, r.unknown(op, models.KindTopicMutationFailed, err, zap.String("topic", input.Name))
	}

	topic, err := r.GetTopicByName(ctx, input.Name)
	if err != nil {
		r.log.Warn("re-read after create failed", zap.String("topic", input.Name), zap.Error(err))
		return &models.Topic{
			Name:          input.Name,
			Description:   input.Description,
			ThumbnailLink: input.ThumbnailLink,
		}, nil
	}
	return topic, nil
}

// GetTopicOfPost returns the topic a post is filed under, published or not
func (r *DocumentTopicRepository) GetTopicOfPost(ctx context.Context, postID string) (*models.Topic, error) {
	post, err := r.posts.GetPostByIDForEditor(ctx, postID)
	if err != nil {
		return nil, err
	}
	return r.GetTopicByName(ctx, post.TopicName)
}

// GetTopicFollowers resolves the profiles of users following a topic
func (r *DocumentTopicRepository) GetTopicFollowers(ctx context.Context, name string) ([]models.User, error) {
	ids, err := r.followerIDs(ctx, "list topic followers", name)
	if err != nil {
		return nil, err
	}
	return resolveAll(ctx, r.fanoutLimit, ids, r.fetchUser)
}

// GetFollowersCount returns the number of users following a topic
func (r *DocumentTopicRepository) GetFollowersCount(ctx context.Context, name string) (int, error) {
	ids, err := r.followerIDs(ctx, "count topic followers", name)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (r *DocumentTopicRepository) followerIDs(ctx context.Context, op, name string) ([]string, error) {
	docs, err := r.store.Query(ctx, usersCollection, docstore.Query{}.
		Where(models.UserFieldFollowedTopics, docstore.OpArrayContains, name))
	if err != nil {
		return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("topic", name))
	}
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID()
	}
	return ids, nil
}

func decodeTopic(doc docstore.Document) (*models.Topic, error) {
	var topic models.Topic
	if err := doc.DataTo(&topic); err != nil {
		return nil, err
	}
	topic.Name = doc.ID()
	return &topic, nil
}
