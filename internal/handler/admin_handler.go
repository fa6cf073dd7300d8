package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/service"
	"github.com/noah-isme/hackathon-go-api/internal/utils"
)

const defaultRecentTeams = 5

// AdminHandler exposes round control, team management and grading endpoints.
type AdminHandler struct {
	service service.AdminService
	reviews service.ReviewService
	logger  zerolog.Logger
}

// NewAdminHandler constructs the admin handler.
func NewAdminHandler(service service.AdminService, reviews service.ReviewService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		reviews: reviews,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register binds admin routes. Callers must guard the group with the admin role.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/settings", h.settings)
	router.Post("/rounds/:round/deploy", h.deploy)
	router.Post("/rounds/:round/finalize", h.finalize)
	router.Post("/rounds/:round/publish", h.publish)
	router.Post("/certificates/generate", h.generateCertificates)

	router.Get("/stats", h.stats)
	router.Get("/teams", h.teams)
	router.Patch("/teams/:id/qualification", h.setQualification)
	router.Post("/teams/:id/verify-payment", h.verifyPayment)
	router.Delete("/teams/:id", h.deleteTeam)

	router.Get("/submissions", h.submissions)
	router.Patch("/submissions/:id/score", h.updateScore)
	router.Post("/submissions/:id/review", h.review)
	router.Get("/leaderboard/:round", h.leaderboard)
}

func (h *AdminHandler) settings(c *fiber.Ctx) error {
	settings, err := h.service.GetSettings(c.Context())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "settings retrieved", settings)
}

func (h *AdminHandler) deploy(c *fiber.Ctx) error {
	round, err := parseRound(c.Params("round"))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	settings, err := h.service.DeployRound(c.Context(), activityActorFromContext(c), round)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "round deployed", settings)
}

func (h *AdminHandler) finalize(c *fiber.Ctx) error {
	round, err := parseRound(c.Params("round"))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	actor := activityActorFromContext(c)
	var result dto.QualificationResponse
	if round == 1 {
		result, err = h.service.FinalizeRound1(c.Context(), actor)
	} else {
		result, err = h.service.FinalizeRound2(c.Context(), actor)
	}
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Int("round", round).
		Int("qualified", result.Qualified).
		Msg("round finalized")
	return utils.SendSuccess(c, "round finalized", result)
}

func (h *AdminHandler) publish(c *fiber.Ctx) error {
	round, err := parseRound(c.Params("round"))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	result, err := h.service.PublishRound(c.Context(), activityActorFromContext(c), round)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "results published", result)
}

func (h *AdminHandler) generateCertificates(c *fiber.Ctx) error {
	result, err := h.service.GenerateCertificates(c.Context(), activityActorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "certificates generated", result)
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "stats retrieved", stats)
}

// teams lists every team, or the most recent ones when recent=true.
func (h *AdminHandler) teams(c *fiber.Ctx) error {
	var (
		teams []dto.TeamResponse
		err   error
	)
	if c.QueryBool("recent", false) {
		teams, err = h.service.RecentTeams(c.Context(), c.QueryInt("limit", defaultRecentTeams))
	} else {
		teams, err = h.service.AllTeams(c.Context())
	}
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "teams retrieved", teams)
}

func (h *AdminHandler) setQualification(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SetTeamStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	team, err := h.service.SetTeamQualification(c.Context(), activityActorFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "team qualification updated", team)
}

func (h *AdminHandler) verifyPayment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	team, err := h.service.VerifyPayment(c.Context(), activityActorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "payment verified", team)
}

func (h *AdminHandler) deleteTeam(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteTeam(c.Context(), activityActorFromContext(c), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "team deleted", nil)
}

func (h *AdminHandler) submissions(c *fiber.Ctx) error {
	var round *int
	if raw := c.Query("round"); raw != "" {
		parsed, err := parseRound(raw)
		if err != nil {
			return handleError(c, h.logger, err)
		}
		round = &parsed
	}

	submissions, err := h.service.ListSubmissions(c.Context(), round)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *AdminHandler) updateScore(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UpdateScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.UpdateSubmissionScore(c.Context(), activityActorFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "submission score updated", submission)
}

func (h *AdminHandler) review(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.reviews.ReviewAnswer(c.Context(), activityActorFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "answer reviewed", review)
}

func (h *AdminHandler) leaderboard(c *fiber.Ctx) error {
	round, err := parseRound(c.Params("round"))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	entries, err := h.service.Leaderboard(c.Context(), round)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "leaderboard retrieved", entries)
}
