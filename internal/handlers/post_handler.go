package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/feed"
	"github.com/lumagram/backend/internal/middleware"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/repositories"
)

// PostHandler handles post creation, deletion, per-author listing and
// bookmarks
type PostHandler struct {
	aggregator     *feed.Aggregator
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(aggregator *feed.Aggregator, postRepo repositories.PostRepository) *PostHandler {
	return &PostHandler{aggregator: aggregator, postRepository: postRepo}
}

// RegisterPostRoutes registers post-related routes on the authenticated
// group and read routes on the public group
func (h *PostHandler) RegisterPostRoutes(public, private *echo.Group) {
	public.GET("/posts/:id", h.GetPost)
	public.GET("/profiles/:id/posts", h.GetPostsByAuthor)
	private.POST("/posts", h.CreatePost)
	private.DELETE("/posts/:id", h.DeletePost)
	private.POST("/posts/:id/save", h.SavePost)
	private.DELETE("/posts/:id/save", h.UnsavePost)
}

// CreatePost creates a new post for the authenticated user
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.aggregator.CreatePost(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err, "Post not found")
	}

	return ok(c, http.StatusCreated, echo.Map{"post": post})
}

// GetPost returns a single post
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err, "Post not found")
	}
	return ok(c, http.StatusOK, echo.Map{"post": post})
}

// GetPostsByAuthor returns one page of an author's posts
func (h *PostHandler) GetPostsByAuthor(c echo.Context) error {
	authorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid profile ID")
	}

	skip, _ := strconv.ParseInt(c.QueryParam("cursor"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > feed.MaxPageSize {
		limit = 12
	}

	posts, err := h.postRepository.GetPostsByAuthorID(c.Request().Context(), uint(authorID), skip, limit)
	if err != nil {
		return httpError(err, "Posts not found")
	}

	return ok(c, http.StatusOK, echo.Map{"posts": posts})
}

// DeletePost deletes the authenticated user's own post
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	if err := h.aggregator.DeletePost(c.Request().Context(), c.Param("id"), userID); err != nil {
		return httpError(err, "Post not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// SavePost bookmarks a post for the authenticated user
func (h *PostHandler) SavePost(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	if err := h.aggregator.SavePost(c.Request().Context(), c.Param("id"), userID); err != nil {
		return httpError(err, "Post not found")
	}
	return ok(c, http.StatusOK, echo.Map{"saved": true})
}

// UnsavePost removes the authenticated user's bookmark
func (h *PostHandler) UnsavePost(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	if err := h.aggregator.UnsavePost(c.Request().Context(), c.Param("id"), userID); err != nil {
		return httpError(err, "Post not found")
	}
	return ok(c, http.StatusOK, echo.Map{"saved": false})
}
