package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/service"
	"github.com/noah-isme/hackathon-go-api/internal/utils"
)

// AdminActivityHandler exposes the audit trail of administrative transitions.
type AdminActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	pageSize := c.QueryInt("page_size", 25)
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	req := dto.AdminActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if actorID := c.QueryInt("actor_id", 0); actorID > 0 {
		req.ActorID = uint(actorID)
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.OK(c, response.Items, "activity logs", response.Pagination)
}
