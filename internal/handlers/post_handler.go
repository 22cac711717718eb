package handlers

import (
	"net/http"

	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/anonto42/topichub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository  repositories.PostRepository
	topicRepository repositories.TopicRepository
	userRepository  repositories.UserRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, topicRepo repositories.TopicRepository, userRepo repositories.UserRepository) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		topicRepository: topicRepo,
		userRepository:  userRepo,
	}
}

// RegisterPostRoutes registers post routes on the public, authenticated and
// editor groups
func (h *PostHandler) RegisterPostRoutes(public, protected, editor *echo.Group) {
	public.GET("/posts", h.GetPosts)
	public.GET("/posts/:id", h.GetPost)
	public.GET("/posts/:id/exists", h.PostExists)
	public.GET("/posts/:id/topic", h.GetPostTopic)
	public.GET("/posts/:id/likes", h.GetLikers)
	public.GET("/posts/:id/likes/count", h.GetLikesCount)
	public.GET("/posts/:id/saves/count", h.GetSavedCount)

	protected.POST("/posts/:id/likes/:userId", h.LikePost)
	protected.DELETE("/posts/:id/likes/:userId", h.DislikePost)

	editor.GET("/editor/posts/drafts", h.GetDrafts)
	editor.GET("/editor/posts/:id", h.GetPostForEditor)
	editor.GET("/editor/posts/:id/exists", h.PostExistsForEditor)
	editor.POST("/posts", h.CreatePost)
	editor.PUT("/posts/:id", h.UpdatePost)
	editor.PATCH("/posts/:id/title", h.UpdatePostTitle)
	editor.PATCH("/posts/:id/caption", h.UpdatePostCaption)
	editor.DELETE("/posts/:id", h.DeletePost)
}

// GetPosts lists published posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a published post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) PostExists(c echo.Context) error {
	exists, err := h.postRepository.PostExists(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}

// GetPostTopic resolves the topic a post is filed under
func (h *PostHandler) GetPostTopic(c echo.Context) error {
	topic, err := h.topicRepository.GetTopicOfPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, topic)
}

func (h *PostHandler) GetLikers(c echo.Context) error {
	users, err := h.postRepository.GetPostLikers(c.Request().Context(), c.Param("id"))
	return list(c, users, err)
}

func (h *PostHandler) GetLikesCount(c echo.Context) error {
	count, err := h.postRepository.GetLikesCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *PostHandler) GetSavedCount(c echo.Context) error {
	count, err := h.userRepository.GetSavedCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// LikePost records a like on behalf of the user in the path
func (h *PostHandler) LikePost(c echo.Context) error {
	userID := c.Param("userId")
	if err := authorizeSelf(c, userID); err != nil {
		return err
	}
	post, err := h.postRepository.LikePost(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DislikePost withdraws a like on behalf of the user in the path
func (h *PostHandler) DislikePost(c echo.Context) error {
	userID := c.Param("userId")
	if err := authorizeSelf(c, userID); err != nil {
		return err
	}
	post, err := h.postRepository.DislikePost(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) GetDrafts(c echo.Context) error {
	posts, err := h.postRepository.GetDraftPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPostForEditor retrieves a post whether or not it is published
func (h *PostHandler) GetPostForEditor(c echo.Context) error {
	post, err := h.postRepository.GetPostByIDForEditor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) PostExistsForEditor(c echo.Context) error {
	exists, err := h.postRepository.PostExistsForEditor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.PostInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postRepository.CreatePost(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost replaces the editable fields of a post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.PostInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postRepository.UpdatePost(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) UpdatePostTitle(c echo.Context) error {
	var req models.EditPostTitleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	title, err := h.postRepository.UpdatePostTitle(c.Request().Context(), c.Param("id"), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"title": title})
}

func (h *PostHandler) UpdatePostCaption(c echo.Context) error {
	var req models.EditPostCaptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	caption, err := h.postRepository.UpdatePostCaption(c.Request().Context(), c.Param("id"), req.Caption)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"caption": caption})
}

// DeletePost deletes a post. Deleting a missing post succeeds.
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.postRepository.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
