package handlers

import (
	"net/http"

	"github.com/anonto42/topichub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo, postRepository: postRepo}
}

// RegisterUserRoutes registers user routes. Routes under /users/:id that
// touch a user's own lists or preferences are limited to that user or an admin.
func (h *UserHandler) RegisterUserRoutes(public, protected, admin *echo.Group) {
	public.GET("/users/:id/exists", h.UserExists)

	protected.GET("/users/:id", h.GetUser)
	protected.GET("/users/:id/likes/:postId", h.HasLikedPost)

	self := h.requireSelf
	protected.GET("/users/:id/saved-posts", h.GetSavedPosts, self)
	protected.GET("/users/:id/saved-posts/:postId", h.IsPostSaved, self)
	protected.POST("/users/:id/saved-posts/:postId", h.SavePost, self)
	protected.DELETE("/users/:id/saved-posts/:postId", h.UnsavePost, self)
	protected.GET("/users/:id/topics", h.GetFollowedTopics, self)
	protected.GET("/users/:id/topics/:name", h.IsTopicFollowed, self)
	protected.POST("/users/:id/topics/:name", h.FollowTopic, self)
	protected.DELETE("/users/:id/topics/:name", h.UnfollowTopic, self)
	protected.GET("/users/:id/dark-mode", h.GetDarkMode, self)
	protected.PUT("/users/:id/dark-mode", h.EnableDarkMode, self)
	protected.DELETE("/users/:id/dark-mode", h.DisableDarkMode, self)

	admin.GET("/users", h.GetUsers)
}

func (h *UserHandler) requireSelf(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := authorizeSelf(c, c.Param("id")); err != nil {
			return err
		}
		return next(c)
	}
}

// GetUsers lists every user known to the identity provider
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userRepository.GetAllUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UserExists(c echo.Context) error {
	exists, err := h.userRepository.UserExists(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}

func (h *UserHandler) HasLikedPost(c echo.Context) error {
	liked, err := h.postRepository.HasUserLikedPost(c.Request().Context(), c.Param("id"), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}

func (h *UserHandler) GetSavedPosts(c echo.Context) error {
	posts, err := h.userRepository.GetSavedPosts(c.Request().Context(), c.Param("id"))
	return list(c, posts, err)
}

func (h *UserHandler) IsPostSaved(c echo.Context) error {
	saved, err := h.userRepository.IsPostSavedByUser(c.Request().Context(), c.Param("id"), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"saved": saved})
}

func (h *UserHandler) SavePost(c echo.Context) error {
	post, err := h.userRepository.SavePost(c.Request().Context(), c.Param("id"), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *UserHandler) UnsavePost(c echo.Context) error {
	post, err := h.userRepository.UnsavePost(c.Request().Context(), c.Param("id"), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *UserHandler) GetFollowedTopics(c echo.Context) error {
	topics, err := h.userRepository.GetFollowedTopics(c.Request().Context(), c.Param("id"))
	return list(c, topics, err)
}

func (h *UserHandler) IsTopicFollowed(c echo.Context) error {
	followed, err := h.userRepository.IsTopicFollowedByUser(c.Request().Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"followed": followed})
}

func (h *UserHandler) FollowTopic(c echo.Context) error {
	topic, err := h.userRepository.FollowTopic(c.Request().Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, topic)
}

func (h *UserHandler) UnfollowTopic(c echo.Context) error {
	topic, err := h.userRepository.UnfollowTopic(c.Request().Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, topic)
}

func (h *UserHandler) GetDarkMode(c echo.Context) error {
	dark, err := h.userRepository.GetDarkMode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"dark_mode": dark})
}

func (h *UserHandler) EnableDarkMode(c echo.Context) error {
	dark, err := h.userRepository.EnableDarkMode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"dark_mode": dark})
}

func (h *UserHandler) DisableDarkMode(c echo.Context) error {
	dark, err := h.userRepository.DisableDarkMode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"dark_mode": dark})
}
