package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/middleware"
	"github.com/noah-isme/hackathon-go-api/internal/service"
	"github.com/noah-isme/hackathon-go-api/internal/utils"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	service service.AuthService
	jwt     fiber.Handler
	logger  zerolog.Logger
}

// NewAuthHandler constructs the auth handler. jwt guards the profile route.
func NewAuthHandler(service service.AuthService, jwt fiber.Handler, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		jwt:     jwt,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Get("/me", h.jwt, middleware.WithAuth(h.me, middleware.AuthOptions{RequireUser: true}))
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Register(c.Context(), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().Uint("team_id", response.Team.ID).Msg("team registered")
	return utils.SendCreated(c, "team registered", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Login(c.Context(), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	profile, err := h.service.Me(c.Context(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}
