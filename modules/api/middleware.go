package api

import (
	"errors"
	"strings"

	"github.com/example/smart-ai/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store token claims in the Fiber context.
	UserContextKey = "user"

	bearerPrefix = "bearer "
)

// unauthorized writes a 401 carrying the bearer challenge header.
func unauthorized(c *fiber.Ctx, code, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// AuthMiddleware rejects requests without a valid bearer token.
// Every token failure gets the same response.
func AuthMiddleware(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			return unauthorized(c, "not_authenticated", "Not authenticated")
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if token == "" {
			return unauthorized(c, "not_authenticated", "Not authenticated")
		}

		claims, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				return unauthorized(c, auth.CodeInvalidToken, "Could not validate credentials")
			}
			return internalError(c)
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}
