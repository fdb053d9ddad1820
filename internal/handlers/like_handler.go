package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/feed"
	"github.com/lumagram/backend/internal/middleware"
	"github.com/lumagram/backend/internal/repositories"
)

// LikeHandler handles liking and unliking posts
type LikeHandler struct {
	aggregator     *feed.Aggregator
	likeRepository repositories.LikeRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(aggregator *feed.Aggregator, likeRepo repositories.LikeRepository) *LikeHandler {
	return &LikeHandler{aggregator: aggregator, likeRepository: likeRepo}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes/status", h.GetLikeStatus)
}

// LikePost likes a post. Liking an already-liked post answers 200 with the
// unchanged state instead of an error.
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, _ := middleware.UserID(c)
	postID := c.Param("post_id")

	if err := h.aggregator.LikePost(c.Request().Context(), postID, userID); err != nil {
		return httpError(err, "Post not found")
	}
	return ok(c, http.StatusOK, echo.Map{"post_id": postID, "liked": true})
}

// UnlikePost removes a like. Unliking a post the user never liked is a
// no-op success.
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, _ := middleware.UserID(c)
	postID := c.Param("post_id")

	if err := h.aggregator.UnlikePost(c.Request().Context(), postID, userID); err != nil {
		return httpError(err, "Post not found")
	}
	return ok(c, http.StatusOK, echo.Map{"post_id": postID, "liked": false})
}

// GetLikeStatus reports whether the authenticated user has liked the post
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	userID, _ := middleware.UserID(c)
	postID := c.Param("post_id")

	liked, err := h.likeRepository.HasUserLikedPost(postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ok(c, http.StatusOK, echo.Map{"post_id": postID, "liked": liked})
}
