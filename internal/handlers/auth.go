package handlers

import (
	"errors"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/repositories"
)

// AuthHandler exchanges Firebase ID tokens for local sessions. Identity
// itself (passwords, OAuth, email verification) is owned by Firebase; only
// the token exchange and the profile row live here.
type AuthHandler struct {
	profileRepository repositories.ProfileRepository
	firebaseAuth      *auth.Client
	jwtSecret         string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(profileRepo repositories.ProfileRepository, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		profileRepository: profileRepo,
		firebaseAuth:      firebaseAuthClient,
		jwtSecret:         jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
}

// Signup verifies a Firebase ID token, creates the profile for that
// identity, and issues a session token.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	if _, err := h.profileRepository.GetProfileByFirebaseUID(token.UID); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Profile already registered for this identity")
	}

	profile := &models.Profile{
		Username:    req.Username,
		FullName:    req.FullName,
		FirebaseUID: token.UID,
	}
	if err := h.profileRepository.CreateProfile(profile); err != nil {
		return httpError(err, "Profile not found")
	}

	return h.issueSession(c, http.StatusCreated, profile)
}

// Login verifies a Firebase ID token for an existing profile and issues a
// session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	profile, err := h.profileRepository.GetProfileByFirebaseUID(token.UID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No profile for this identity; sign up first")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.issueSession(c, http.StatusOK, profile)
}

func (h *AuthHandler) issueSession(c echo.Context, status int, profile *models.Profile) error {
	claims := &models.JwtCustomClaims{
		UserID:   profile.ID,
		Username: profile.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not sign session token")
	}

	return ok(c, status, echo.Map{"token": signed, "profile": profile})
}
