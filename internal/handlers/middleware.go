package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/httpx"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
)

const currentUserKey = "currentUser"

// UserResolver loads the account behind an authenticated identity.
type UserResolver interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// RequireUser resolves the caller from the X-User-ID header placed there by
// the upstream credential-checking layer. Requests without a resolvable user
// are rejected with 401.
func RequireUser(users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("X-User-ID")
		if header == "" {
			return httpx.Unauthorized(c, "Authentication required")
		}

		userID, err := uuid.Parse(header)
		if err != nil {
			return httpx.Unauthorized(c, "Invalid user identity")
		}

		user, err := users.GetUserByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return httpx.Unauthorized(c, "Unknown user")
			}
			return httpx.InternalServerError(c, "Could not resolve user")
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// RequireAdmin gates a route on the ROLE_ADMIN role. Must run after
// RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return httpx.Unauthorized(c, "Authentication required")
		}
		if !user.HasRole(domain.RoleAdmin) {
			return httpx.Forbidden(c, "Administrator role required")
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by RequireUser, or nil.
func CurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(currentUserKey).(*domain.User)
	return user
}
