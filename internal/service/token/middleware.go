package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(float64); ok {
		c.Set(ctxUserID, uint(sub))
	}
	if role, ok := claims["role"].(string); ok {
		c.Set(ctxRole, role)
	}
}

// UserID returns the authenticated user's id set by AutoRefreshMiddleware.
func UserID(c echo.Context) (uint, error) {
	if id, ok := c.Get(ctxUserID).(uint); ok {
		return id, nil
	}
	return 0, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
}

// Role returns the authenticated user's role.
func Role(c echo.Context) string {
	if role, ok := c.Get(ctxRole).(string); ok {
		return role
	}
	return ""
}

// AutoRefreshMiddleware authenticates from the access cookie, transparently
// rotating the pair through the refresh cookie when the access token has
// expired.
func (t *TokenService) AutoRefreshMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		asCookie, err := c.Cookie("accessToken")
		if err == nil {
			token, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
				return t.JWTSecret, nil
			})
			if err == nil && token.Valid {
				setUserContext(c, token.Claims.(jwt.MapClaims))
				return next(c)
			}
			if !errors.Is(err, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		rfCookie, err := c.Cookie("refreshToken")
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}
		newAccess, newRefresh, err := t.RotateToken(rfCookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token: "+err.Error())
		}

		c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(accessTTL)))
		c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(refreshTTL)))

		token, err := jwt.Parse(newAccess, func(j *jwt.Token) (interface{}, error) {
			return t.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		setUserContext(c, token.Claims.(jwt.MapClaims))
		return next(c)
	}
}

// RequireRole gates a route group to one role. It assumes
// AutoRefreshMiddleware already ran.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Role(c) != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
