package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/httpx"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
	"github.com/Danielbclr/E-commerce-API/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var request domain.RegisterUserRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.Name == "" || request.Email == "" || request.Password == "" {
		return httpx.BadRequest(c, "Name, email and password are required", nil)
	}

	user, err := h.users.Register(c.UserContext(), request)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return httpx.Conflict(c, "Email is already registered", nil)
		}
		log.Error().Err(err).Str("email", request.Email).Msg("User registration failed")
		return httpx.InternalServerError(c, "User registration failed")
	}

	log.Info().Str("user_id", user.ID.String()).Msg("User registered")
	return httpx.Created(c, "User registered successfully", mapUser(user))
}

func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	return httpx.Success(c, "User retrieved successfully", mapUser(CurrentUser(c)))
}
