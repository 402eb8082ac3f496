package middleware

import (
	"net/http"
	"strings"

	"baybook/core/constants"
	"baybook/core/errors"
	"baybook/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware validates the bearer token and stores the parsed claims in
// the request context under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrMissingAuthorizationHeader, "missing authorization header", nil))
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid authorization header format", nil))
			}

			claims, err := utils.ValidateAndParseToken(parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrUnauthorized, "invalid or expired token", err))
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// AdminMiddleware requires an authenticated token with the admin role. It must
// run after AuthMiddleware.
func (m *Middleware) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenData := c.Get(constants.ContextTokenData)
			claims, ok := tokenData.(*utils.TokenClaims)
			if !ok || claims == nil {
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrUnauthorized, "not authenticated", nil))
			}
			if claims.Role != "admin" {
				return c.JSON(http.StatusForbidden,
					errors.NewAppError(errors.ErrForbidden, "admin access required", nil))
			}
			return next(c)
		}
	}
}
