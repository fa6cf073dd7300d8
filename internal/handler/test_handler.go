package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/service"
	"github.com/noah-isme/hackathon-go-api/internal/utils"
)

// TestHandler serves round questions, practice runs and submissions.
type TestHandler struct {
	service     service.TestService
	submitGuard fiber.Handler
	logger      zerolog.Logger
}

// NewTestHandler constructs the test handler. submitGuard, typically a rate
// limiter, runs in front of round submissions and may be nil.
func NewTestHandler(service service.TestService, submitGuard fiber.Handler, logger zerolog.Logger) *TestHandler {
	if submitGuard == nil {
		submitGuard = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &TestHandler{
		service:     service,
		submitGuard: submitGuard,
		logger:      logger.With().Str("component", "test_handler").Logger(),
	}
}

// Register binds test routes. The run route is declared first so it is not
// captured by the round parameter.
func (h *TestHandler) Register(router fiber.Router) {
	router.Post("/run", h.run)
	router.Get("/:round", h.questions)
	router.Post("/:round/submit", h.submitGuard, h.submit)
}

func (h *TestHandler) questions(c *fiber.Ctx) error {
	round, err := parseRound(c.Params("round"))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	questions, err := h.service.GetRoundQuestions(c.Context(), teamIDFromContext(c), round)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *TestHandler) run(c *fiber.Ctx) error {
	var payload dto.RunCodeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunPractice(c.Context(), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "code executed", result)
}

func (h *TestHandler) submit(c *fiber.Ctx) error {
	round, err := parseRound(c.Params("round"))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	var payload dto.SubmitRoundRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	teamID := teamIDFromContext(c)
	response, err := h.service.SubmitRound(c.Context(), teamID, round, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("team_id", teamID).
		Int("round", round).
		Float64("total_score", response.TotalScore).
		Msg("round submitted")
	return utils.SendCreated(c, "submission received", response)
}
