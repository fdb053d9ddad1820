package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/feed"
	"github.com/lumagram/backend/internal/middleware"
)

// FeedHandler serves the enriched, paginated feed
type FeedHandler struct {
	aggregator *feed.Aggregator
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(aggregator *feed.Aggregator) *FeedHandler {
	return &FeedHandler{aggregator: aggregator}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns one feed page. Anonymous requests get is_liked=false and
// is_saved=false on every post. The cursor query param is the offset
// returned as next_cursor by the previous page; absent means first page.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	var viewerID *uint
	if id, authed := middleware.UserID(c); authed {
		viewerID = &id
	}

	cursor, _ := strconv.ParseInt(c.QueryParam("cursor"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	page, err := h.aggregator.GetPage(c.Request().Context(), viewerID, cursor, limit)
	if err != nil {
		return httpError(err, "Feed not available")
	}

	return ok(c, http.StatusOK, page)
}
