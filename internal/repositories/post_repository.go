package repositories

import (
	"context"
	"errors"
	"slices"

	"github.com/anonto42/topichub/backend/internal/docstore"
	"github.com/anonto42/topichub/backend/internal/models"
	"go.uber.org/zap"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetDraftPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByTopic(ctx context.Context, topicName string) ([]models.Post, error)
	GetPostByID(ctx context.Context, postID string) (*models.Post, error)
	GetPostByIDForEditor(ctx context.Context, postID string) (*models.Post, error)
	PostExists(ctx context.Context, postID string) (bool, error)
	PostExistsForEditor(ctx context.Context, postID string) (bool, error)
	CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, postID string, input models.PostInput) (*models.Post, error)
	UpdatePostTitle(ctx context.Context, postID, title string) (string, error)
	UpdatePostCaption(ctx context.Context, postID, caption string) (string, error)
	DeletePost(ctx context.Context, postID string) error
	LikePost(ctx context.Context, userID, postID string) (*models.Post, error)
	DislikePost(ctx context.Context, userID, postID string) (*models.Post, error)
	GetPostLikers(ctx context.Context, postID string) ([]models.User, error)
	GetLikesCount(ctx context.Context, postID string) (int, error)
	HasUserLikedPost(ctx context.Context, userID, postID string) (bool, error)
}

type topicChecker interface {
	TopicExists(ctx context.Context, name string) (bool, error)
}

type userChecker interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// DocumentPostRepository implements PostRepository over a docstore.Store
type DocumentPostRepository struct {
	accessor
	topics topicChecker
	users  userChecker
}

var _ PostRepository = (*DocumentPostRepository)(nil)

// GetAllPosts lists published posts, newest first
func (r *DocumentPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.listPosts(ctx, "list posts", docstore.Query{}.
		Where(models.PostFieldPublished, docstore.OpEqual, true).
		Order(models.PostFieldCreationTime, docstore.Desc))
}

// GetDraftPosts lists unpublished posts, newest first
func (r *DocumentPostRepository) GetDraftPosts(ctx context.Context) ([]models.Post, error) {
	return r.listPosts(ctx, "list drafts", docstore.Query{}.
		Where(models.PostFieldPublished, docstore.OpEqual, false).
		Order(models.PostFieldCreationTime, docstore.Desc))
}

// GetPostsByTopic lists published posts of a topic, newest first. An empty
// result is only an error when the topic itself does not exist.
func (r *DocumentPostRepository) GetPostsByTopic(ctx context.Context, topicName string) ([]models.Post, error) {
	posts, err := r.listPosts(ctx, "list topic posts", docstore.Query{}.
		Where(models.PostFieldPublished, docstore.OpEqual, true).
		Where(models.PostFieldTopicName, docstore.OpEqual, topicName).
		Order(models.PostFieldCreationTime, docstore.Desc))
	if err != nil || len(posts) > 0 {
		return posts, err
	}

	exists, err := r.topics.TopicExists(ctx, topicName)
	if err != nil {
		return nil, r.passthrough("list topic posts", models.KindQueryFailed, err, zap.String("topic", topicName))
	}
	if !exists {
		return nil, r.reject("list topic posts", models.NewError(models.KindInvalidTopicName, "Topic does not exist with name : %s", topicName))
	}
	return posts, nil
}

// GetPostByID returns a post if it exists and is published
func (r *DocumentPostRepository) GetPostByID(ctx context.Context, postID string) (*models.Post, error) {
	return r.getPost(ctx, postID, true)
}

// GetPostByIDForEditor returns a post regardless of its published flag
func (r *DocumentPostRepository) GetPostByIDForEditor(ctx context.Context, postID string) (*models.Post, error) {
	return r.getPost(ctx, postID, false)
}

// PostExists reports whether a published post exists
func (r *DocumentPostRepository) PostExists(ctx context.Context, postID string) (bool, error) {
	return r.exists(ctx, postID, true)
}

// PostExistsForEditor reports whether a post exists, published or not
func (r *DocumentPostRepository) PostExistsForEditor(ctx context.Context, postID string) (bool, error) {
	return r.exists(ctx, postID, false)
}

// CreatePost stores a new post with a server-assigned id and creation time
func (r *DocumentPostRepository) CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error) {
	const op = "create post"
	if err := r.checkTopic(ctx, op, input.TopicName); err != nil {
		return nil, err
	}

	postID, err := r.store.Add(ctx, postsCollection, docstore.Fields{
		models.PostFieldTitle:        input.Title,
		models.PostFieldCaption:      input.Caption,
		models.PostFieldDescription:  input.Description,
		models.PostFieldTopicName:    input.TopicName,
		models.PostFieldPublished:    input.Published,
		models.PostFieldCreationTime: docstore.ServerTimestamp,
		models.PostFieldLikes:        []string{},
	})
	if err != nil {
		return nil, r.unknown(op, models.KindPostMutationFailed, err)
	}

	post, err := r.GetPostByIDForEditor(ctx, postID)
	if err != nil {
		// The write went through; hand back what was written.
		r.log.Warn("re-read after create failed", zap.String("post_id", postID), zap.Error(err))
		return postFromInput(postID, input), nil
	}
	return post, nil
}

// UpdatePost replaces the editable fields of a post. Likes and creation time are kept.
func (r *DocumentPostRepository) UpdatePost(ctx context.Context, postID string, input models.PostInput) (*models.Post, error) {
	const op = "edit post"
	if err := r.checkTopic(ctx, op, input.TopicName); err != nil {
		return nil, err
	}

	err := r.update(ctx, op, postID, docstore.Fields{
		models.PostFieldTitle:       input.Title,
		models.PostFieldCaption:     input.Caption,
		models.PostFieldDescription: input.Description,
		models.PostFieldTopicName:   input.TopicName,
		models.PostFieldPublished:   input.Published,
	})
	if err != nil {
		return nil, err
	}

	post, err := r.GetPostByIDForEditor(ctx, postID)
	if err != nil {
		r.log.Warn("re-read after edit failed", zap.String("post_id", postID), zap.Error(err))
		return postFromInput(postID, input), nil
	}
	return post, nil
}

// UpdatePostTitle changes only the title and returns the new title
func (r *DocumentPostRepository) UpdatePostTitle(ctx context.Context, postID, title string) (string, error) {
	if err := r.update(ctx, "edit post title", postID, docstore.Fields{models.PostFieldTitle: title}); err != nil {
		return "", err
	}
	return title, nil
}

// UpdatePostCaption changes only the caption and returns the new caption
func (r *DocumentPostRepository) UpdatePostCaption(ctx context.Context, postID, caption string) (string, error) {
	if err := r.update(ctx, "edit post caption", postID, docstore.Fields{models.PostFieldCaption: caption}); err != nil {
		return "", err
	}
	return caption, nil
}

// DeletePost removes a post. Deleting a post that does not exist succeeds.
func (r *DocumentPostRepository) DeletePost(ctx context.Context, postID string) error {
	if err := r.store.Delete(ctx, postsCollection, postID); err != nil {
		return r.classifyMutation(ctx, "delete post", postID, err)
	}
	return nil
}

// LikePost records that a user likes a published post
func (r *DocumentPostRepository) LikePost(ctx context.Context, userID, postID string) (*models.Post, error) {
	const op = "like post"
	post, err := r.likeTarget(ctx, op, userID, postID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(post.Likes, userID) {
		return nil, r.reject(op, models.NewError(models.KindInvalidOperation,
			"User with id : %s has already liked post with id : %s", userID, postID))
	}

	if err := r.store.ArrayUnion(ctx, postsCollection, postID, models.PostFieldLikes, userID); err != nil {
		return nil, r.likeFailure(op, postID, err)
	}
	return r.GetPostByID(ctx, postID)
}

// DislikePost withdraws a like
func (r *DocumentPostRepository) DislikePost(ctx context.Context, userID, postID string) (*models.Post, error) {
	const op = "dislike post"
	post, err := r.likeTarget(ctx, op, userID, postID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(post.Likes, userID) {
		return nil, r.reject(op, models.NewError(models.KindInvalidOperation,
			"User with id : %s has not liked post with id : %s", userID, postID))
	}

	if err := r.store.ArrayRemove(ctx, postsCollection, postID, models.PostFieldLikes, userID); err != nil {
		return nil, r.likeFailure(op, postID, err)
	}
	return r.GetPostByID(ctx, postID)
}

// GetPostLikers resolves the profiles of everyone who liked a post. Likers
// that cannot be resolved are left out and reported in the returned error.
func (r *DocumentPostRepository) GetPostLikers(ctx context.Context, postID string) ([]models.User, error) {
	post, err := r.GetPostByIDForEditor(ctx, postID)
	if err != nil {
		return nil, err
	}
	return resolveAll(ctx, r.fanoutLimit, post.Likes, r.fetchUser)
}

// GetLikesCount returns the number of likes on a post
func (r *DocumentPostRepository) GetLikesCount(ctx context.Context, postID string) (int, error) {
	post, err := r.GetPostByIDForEditor(ctx, postID)
	if err != nil {
		return 0, err
	}
	return len(post.Likes), nil
}

// HasUserLikedPost reports whether userID appears in the likes of a post
func (r *DocumentPostRepository) HasUserLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	const op = "check like"
	if err := r.checkUser(ctx, op, userID); err != nil {
		return false, err
	}
	post, err := r.GetPostByIDForEditor(ctx, postID)
	if err != nil {
		return false, err
	}
	return slices.Contains(post.Likes, userID), nil
}

func (r *DocumentPostRepository) listPosts(ctx context.Context, op string, q docstore.Query) ([]models.Post, error) {
	docs, err := r.store.Query(ctx, postsCollection, q)
	if err != nil {
		return nil, r.unknown(op, models.KindQueryFailed, err)
	}
	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		post, err := decodePost(doc)
		if err != nil {
			return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("post_id", doc.ID()))
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (r *DocumentPostRepository) getPost(ctx context.Context, postID string, publishedOnly bool) (*models.Post, error) {
	const op = "get post"
	doc, err := r.store.Get(ctx, postsCollection, postID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, r.reject(op, models.NewError(models.KindInvalidPostID, "Post does not exist with id : %s", postID))
		}
		return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("post_id", postID))
	}
	post, err := decodePost(doc)
	if err != nil {
		return nil, r.unknown(op, models.KindQueryFailed, err, zap.String("post_id", postID))
	}
	if publishedOnly && !post.Published {
		return nil, r.reject(op, models.NewError(models.KindInvalidPostID, "Post does not exist with id : %s", postID))
	}
	return post, nil
}

func (r *DocumentPostRepository) exists(ctx context.Context, postID string, publishedOnly bool) (bool, error) {
	_, err := r.getPost(ctx, postID, publishedOnly)
	if errors.Is(err, models.ErrInvalidPostID) {
		return false, nil
	}
	return err == nil, err
}

// update applies fields to an existing post, visible or not.
func (r *DocumentPostRepository) update(ctx context.Context, op, postID string, fields docstore.Fields) error {
	exists, err := r.PostExistsForEditor(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return r.reject(op, models.NewError(models.KindInvalidPostID, "Post does not exist with id : %s", postID))
	}
	if err := r.store.Update(ctx, postsCollection, postID, fields); err != nil {
		return r.classifyMutation(ctx, op, postID, err)
	}
	return nil
}

// classifyMutation tells a vanished post apart from a failed write.
func (r *DocumentPostRepository) classifyMutation(ctx context.Context, op, postID string, cause error) error {
	if exists, err := r.PostExistsForEditor(ctx, postID); err == nil && !exists {
		return r.reject(op, models.NewError(models.KindInvalidPostID, "Post does not exist with id : %s", postID))
	}
	return r.unknown(op, models.KindPostMutationFailed, cause, zap.String("post_id", postID))
}

func (r *DocumentPostRepository) checkTopic(ctx context.Context, op, topicName string) error {
	exists, err := r.topics.TopicExists(ctx, topicName)
	if err != nil {
		return r.passthrough(op, models.KindQueryFailed, err, zap.String("topic", topicName))
	}
	if !exists {
		return r.reject(op, models.NewError(models.KindInvalidTopicName, "Topic does not exist with name : %s", topicName))
	}
	return nil
}

func (r *DocumentPostRepository) checkUser(ctx context.Context, op, userID string) error {
	exists, err := r.users.UserExists(ctx, userID)
	if err != nil {
		return r.passthrough(op, models.KindQueryFailed, err, zap.String("user_id", userID))
	}
	if !exists {
		return r.reject(op, models.NewError(models.KindInvalidUserID, "User does not exist with id : %s", userID))
	}
	return nil
}

// likeTarget validates both sides of a like and returns the published post.
func (r *DocumentPostRepository) likeTarget(ctx context.Context, op, userID, postID string) (*models.Post, error) {
	if err := r.checkUser(ctx, op, userID); err != nil {
		return nil, err
	}
	return r.GetPostByID(ctx, postID)
}

func (r *DocumentPostRepository) likeFailure(op, postID string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return r.reject(op, models.NewError(models.KindInvalidPostID, "Post does not exist with id : %s", postID))
	}
	return r.unknown(op, models.KindPostMutationFailed, err, zap.String("post_id", postID))
}

func decodePost(doc docstore.Document) (*models.Post, error) {
	var post models.Post
	if err := doc.DataTo(&post); err != nil {
		return nil, err
	}
	post.ID = doc.ID()
	if post.Likes == nil {
		post.Likes = []string{}
	}
	return &post, nil
}

func postFromInput(postID string, input models.PostInput) *models.Post {
	return &models.Post{
		ID:          postID,
		Title:       input.Title,
		Caption:     input.Caption,
		Description: input.Description,
		TopicName:   input.TopicName,
		Published:   input.Published,
		Likes:       []string{},
	}
}
