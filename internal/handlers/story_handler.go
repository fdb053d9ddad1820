package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/middleware"
	"github.com/lumagram/backend/internal/stories"
)

// StoryHandler serves the story rail and story mutations
type StoryHandler struct {
	aggregator *stories.Aggregator
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(aggregator *stories.Aggregator) *StoryHandler {
	return &StoryHandler{aggregator: aggregator}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(public, private *echo.Group) {
	public.GET("/stories", h.GetStories)
	private.POST("/stories", h.CreateStory)
	private.DELETE("/stories/:id", h.DeleteStory)
}

// GetStories returns the story rail: one entry per author with an active
// story, newest author first, each carrying that author's full story group
func (h *StoryHandler) GetStories(c echo.Context) error {
	var viewerID *uint
	if id, authed := middleware.UserID(c); authed {
		viewerID = &id
	}

	rail, err := h.aggregator.GetActiveStories(c.Request().Context(), viewerID)
	if err != nil {
		return httpError(err, "Stories not available")
	}

	return ok(c, http.StatusOK, rail)
}

// CreateStory uploads the media file from the multipart form and creates
// the story
func (h *StoryHandler) CreateStory(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	fileHeader, err := c.FormFile("media")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing media file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read media file")
	}
	defer file.Close()

	story, err := h.aggregator.CreateStory(
		c.Request().Context(),
		userID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		return httpError(err, "Story not found")
	}

	return ok(c, http.StatusCreated, echo.Map{"story": story})
}

// DeleteStory deletes the authenticated user's own story before expiry
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	if err := h.aggregator.DeleteStory(c.Request().Context(), c.Param("id"), userID); err != nil {
		return httpError(err, "Story not found")
	}
	return c.NoContent(http.StatusNoContent)
}
