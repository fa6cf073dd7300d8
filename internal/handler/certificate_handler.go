package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackathon-go-api/internal/service"
	"github.com/noah-isme/hackathon-go-api/internal/utils"
)

// CertificateHandler serves public verification and team certificate lookup.
type CertificateHandler struct {
	service service.CertificateService
	logger  zerolog.Logger
}

// NewCertificateHandler constructs the certificate handler.
func NewCertificateHandler(service service.CertificateService, logger zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{
		service: service,
		logger:  logger.With().Str("component", "certificate_handler").Logger(),
	}
}

// RegisterPublic binds the unauthenticated verification route.
func (h *CertificateHandler) RegisterPublic(router fiber.Router) {
	router.Get("/:id", h.verify)
}

// Register binds the participant certificate routes.
func (h *CertificateHandler) Register(router fiber.Router) {
	router.Get("/mine", h.mine)
}

func (h *CertificateHandler) verify(c *fiber.Ctx) error {
	certificate, err := h.service.Verify(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "certificate verified", certificate)
}

func (h *CertificateHandler) mine(c *fiber.Ctx) error {
	certificates, err := h.service.ListForTeam(c.Context(), teamIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "certificates retrieved", certificates)
}
