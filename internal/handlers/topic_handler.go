package handlers

import (
	"net/http"

	"github.com/anonto42/topichub/backend/internal/models"
	"github.com/anonto42/topichub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// TopicHandler handles HTTP requests related to topics
type TopicHandler struct {
	topicRepository repositories.TopicRepository
	postRepository  repositories.PostRepository
}

// NewTopicHandler creates a new TopicHandler
func NewTopicHandler(topicRepo repositories.TopicRepository, postRepo repositories.PostRepository) *TopicHandler {
	return &TopicHandler{topicRepository: topicRepo, postRepository: postRepo}
}

// RegisterTopicRoutes registers topic routes
func (h *TopicHandler) RegisterTopicRoutes(public, editor *echo.Group) {
	public.GET("/topics", h.GetTopics)
	public.GET("/topics/:name", h.GetTopic)
	public.GET("/topics/:name/exists", h.TopicExists)
	public.GET("/topics/:name/posts", h.GetTopicPosts)
	public.GET("/topics/:name/followers", h.GetFollowers)
	public.GET("/topics/:name/followers/count", h.GetFollowersCount)

	editor.POST("/topics", h.CreateTopic)
}

func (h *TopicHandler) GetTopics(c echo.Context) error {
	topics, err := h.topicRepository.GetAllTopics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, topics)
}

func (h *TopicHandler) GetTopic(c echo.Context) error {
	topic, err := h.topicRepository.GetTopicByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, topic)
}

func (h *TopicHandler) TopicExists(c echo.Context) error {
	exists, err := h.topicRepository.TopicExists(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}

// GetTopicPosts lists the published posts of a topic, newest first
func (h *TopicHandler) GetTopicPosts(c echo.Context) error {
	posts, err := h.postRepository.GetPostsByTopic(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *TopicHandler) GetFollowers(c echo.Context) error {
	users, err := h.topicRepository.GetTopicFollowers(c.Request().Context(), c.Param("name"))
	return list(c, users, err)
}

func (h *TopicHandler) GetFollowersCount(c echo.Context) error {
	count, err := h.topicRepository.GetFollowersCount(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// CreateTopic writes a topic under its name, replacing any topic of the same name
func (h *TopicHandler) CreateTopic(c echo.Context) error {
	var req models.TopicInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	topic, err := h.topicRepository.CreateTopic(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, topic)
}
