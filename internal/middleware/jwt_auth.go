package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/models"
)

const claimsContextKey = "claims"

// RequireAuth checks for a valid JWT and stores the user claims on the
// request context. Requests without a valid token are rejected.
func RequireAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseBearerToken(c, jwtSecret)
			if err != nil {
				return err
			}
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// OptionalAuth stores user claims when a valid token is present and lets
// anonymous requests through. Used on reads that support anonymous
// browsing (feed, stories, profiles, search).
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") != "" {
				claims, err := parseBearerToken(c, jwtSecret)
				if err != nil {
					return err
				}
				c.Set(claimsContextKey, claims)
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id, or false for anonymous
// requests.
func UserID(c echo.Context) (uint, bool) {
	claims, ok := c.Get(claimsContextKey).(*models.JwtCustomClaims)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func parseBearerToken(c echo.Context, jwtSecret string) (*models.JwtCustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	return claims, nil
}
