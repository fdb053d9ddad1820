package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/cache"
	"github.com/lumagram/backend/internal/feed"
	"github.com/lumagram/backend/internal/middleware"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/notify"
	"github.com/lumagram/backend/internal/repositories"
)

// CommentHandler handles comments on posts
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	profileRepository repositories.ProfileRepository
	queryCache        *cache.QueryCache
	sink              notify.Sink
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	profileRepo repositories.ProfileRepository,
	queryCache *cache.QueryCache,
	sink notify.Sink,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		profileRepository: profileRepo,
		queryCache:        queryCache,
		sink:              sink,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(public, private *echo.Group) {
	public.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	private.POST("/posts/:post_id/comments", h.CreateComment)
	private.DELETE("/comments/:id", h.DeleteComment)
}

// GetCommentsByPostID returns a post's comments, oldest first, each
// annotated with its author's profile. Profiles are fetched in one batched
// read keyed by the distinct author ids of the comment set.
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return httpError(err, "Post not found")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authorSet := make(map[uint]bool)
	var authorIDs []uint
	for _, comment := range comments {
		if !authorSet[comment.UserID] {
			authorSet[comment.UserID] = true
			authorIDs = append(authorIDs, comment.UserID)
		}
	}

	profiles, err := h.profileRepository.GetProfilesByIDs(authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	profileMap := make(map[uint]models.ProfileCompact, len(profiles))
	for _, p := range profiles {
		profileMap[p.ID] = p.ToCompact()
	}

	enriched := make([]models.CommentWithAuthor, len(comments))
	for i, comment := range comments {
		author := models.UnknownAuthor()
		if compact, ok := profileMap[comment.UserID]; ok {
			author = models.FoundAuthor(compact)
		}
		enriched[i] = models.CommentWithAuthor{Comment: comment, Author: author}
	}

	return ok(c, http.StatusOK, echo.Map{"comments": enriched})
}

// CreateComment adds a comment to a post and notifies the post's author
// unless they are the commenter
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, _ := middleware.UserID(c)
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err, "Post not found")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Comment counts feed into enriched posts, so the feed cache is stale.
	h.queryCache.Invalidate(feed.CachePrefix)

	if post.AuthorID != userID {
		h.sink.Notify(c.Request().Context(), notify.Event{
			Type:        models.NotificationComment,
			ActorID:     userID,
			RecipientID: post.AuthorID,
			TargetID:    postID,
			TargetType:  "post",
			Preview:     req.Content,
		})
	}

	return ok(c, http.StatusCreated, echo.Map{"comment": comment})
}

// DeleteComment deletes the authenticated user's own comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		return httpError(err, "Comment not found")
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(uint(commentID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.queryCache.Invalidate(feed.CachePrefix)
	return c.NoContent(http.StatusNoContent)
}
