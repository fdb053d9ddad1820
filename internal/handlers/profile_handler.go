package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/middleware"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/notify"
	"github.com/lumagram/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// EnrichedProfile is a profile annotated with aggregate counts and the
// viewer's follow state.
type EnrichedProfile struct {
	models.Profile
	PostsCount     int64 `json:"posts_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
}

// ProfileHandler serves profiles, follows and search
type ProfileHandler struct {
	profileRepository repositories.ProfileRepository
	followRepository  repositories.FollowRepository
	postRepository    repositories.PostRepository
	sink              notify.Sink
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(
	profileRepo repositories.ProfileRepository,
	followRepo repositories.FollowRepository,
	postRepo repositories.PostRepository,
	sink notify.Sink,
) *ProfileHandler {
	return &ProfileHandler{
		profileRepository: profileRepo,
		followRepository:  followRepo,
		postRepository:    postRepo,
		sink:              sink,
	}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(public, private *echo.Group) {
	public.GET("/profiles/:username", h.GetProfile)
	public.GET("/profiles/search", h.SearchProfiles)
	public.GET("/profiles/:id/followers", h.GetFollowers)
	public.GET("/profiles/:id/following", h.GetFollowing)
	private.PUT("/profile", h.UpdateProfile)
	private.POST("/profiles/:id/follow", h.FollowProfile)
	private.DELETE("/profiles/:id/follow", h.UnfollowProfile)
}

// GetProfile returns a profile by username, enriched with post, follower
// and following counts, and whether the viewer follows it. The four reads
// run concurrently and join before the response is built.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profileRepository.GetProfileByUsername(c.Param("username"))
	if err != nil {
		return httpError(err, "Profile not found")
	}

	viewerID, authed := middleware.UserID(c)

	var (
		postsCount     int64
		followersCount int64
		followingCount int64
		isFollowing    bool
	)

	ctx := c.Request().Context()
	var g errgroup.Group
	g.Go(func() error {
		var err error
		postsCount, err = h.postRepository.CountPostsByAuthorID(ctx, profile.ID)
		return err
	})
	g.Go(func() error {
		var err error
		followersCount, err = h.followRepository.GetFollowersCount(profile.ID)
		return err
	})
	g.Go(func() error {
		var err error
		followingCount, err = h.followRepository.GetFollowingCount(profile.ID)
		return err
	})
	if authed {
		g.Go(func() error {
			var err error
			isFollowing, err = h.followRepository.IsFollowing(viewerID, profile.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ok(c, http.StatusOK, echo.Map{"profile": EnrichedProfile{
		Profile:        *profile,
		PostsCount:     postsCount,
		FollowersCount: followersCount,
		FollowingCount: followingCount,
		IsFollowing:    isFollowing,
	}})
}

// UpdateProfile updates the authenticated user's own profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.profileRepository.GetProfileByID(userID)
	if err != nil {
		return httpError(err, "Profile not found")
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Website != nil {
		profile.Website = *req.Website
	}

	if err := h.profileRepository.UpdateProfile(profile); err != nil {
		return httpError(err, "Profile not found")
	}

	return ok(c, http.StatusOK, echo.Map{"profile": profile})
}

// FollowProfile makes the authenticated user follow the given profile.
// Following yourself is rejected; following twice is a no-op.
func (h *ProfileHandler) FollowProfile(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	followingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid profile ID")
	}
	if uint(followingID) == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	if _, err := h.profileRepository.GetProfileByID(uint(followingID)); err != nil {
		return httpError(err, "Profile not found")
	}

	err = h.followRepository.CreateFollow(&models.Follow{
		FollowerID:  userID,
		FollowingID: uint(followingID),
	})
	if err != nil {
		if errors.Is(err, errs.Duplicate) {
			return ok(c, http.StatusOK, echo.Map{"following": true})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.sink.Notify(c.Request().Context(), notify.Event{
		Type:        models.NotificationFollow,
		ActorID:     userID,
		RecipientID: uint(followingID),
		TargetID:    strconv.FormatUint(uint64(userID), 10),
		TargetType:  "profile",
	})

	return ok(c, http.StatusCreated, echo.Map{"following": true})
}

// UnfollowProfile removes the follow; absent is a no-op
func (h *ProfileHandler) UnfollowProfile(c echo.Context) error {
	userID, _ := middleware.UserID(c)

	followingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid profile ID")
	}

	if err := h.followRepository.DeleteFollow(userID, uint(followingID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ok(c, http.StatusOK, echo.Map{"following": false})
}

// SearchProfiles searches profiles by username substring
func (h *ProfileHandler) SearchProfiles(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return ok(c, http.StatusOK, echo.Map{"profiles": []models.Profile{}})
	}

	profiles, err := h.profileRepository.SearchProfiles(query, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ok(c, http.StatusOK, echo.Map{"profiles": profiles})
}

// GetFollowers lists the profiles following the given profile
func (h *ProfileHandler) GetFollowers(c echo.Context) error {
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid profile ID")
	}

	profiles, err := h.followRepository.GetFollowers(uint(profileID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ok(c, http.StatusOK, echo.Map{"profiles": profiles})
}

// GetFollowing lists the profiles the given profile follows
func (h *ProfileHandler) GetFollowing(c echo.Context) error {
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid profile ID")
	}

	profiles, err := h.followRepository.GetFollowing(uint(profileID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ok(c, http.StatusOK, echo.Map{"profiles": profiles})
}
