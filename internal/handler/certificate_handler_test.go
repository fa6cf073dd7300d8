package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/handler"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/service"
)

type stubCertificateService struct {
	certificates map[string]dto.CertificateResponse
	mine         []dto.CertificateResponse
	mineErr      error
	lastTeamID   uint
}

func (s *stubCertificateService) Verify(_ context.Context, id string) (dto.CertificateResponse, error) {
	certificate, ok := s.certificates[id]
	if !ok {
		return dto.CertificateResponse{}, service.ErrCertificateNotFound
	}
	return certificate, nil
}

func (s *stubCertificateService) ListForTeam(_ context.Context, teamID uint) ([]dto.CertificateResponse, error) {
	s.lastTeamID = teamID
	return s.mine, s.mineErr
}

var _ service.CertificateService = (*stubCertificateService)(nil)

func TestCertificateHandlerVerifyContract(t *testing.T) {
	const id = "0123456789abcdef0123456789abcdef"
	svc := &stubCertificateService{certificates: map[string]dto.CertificateResponse{
		id: {TeamName: "Null Pointers", Achievement: models.AchievementWinnerFirst, VerificationID: id, IssuedAt: time.Now().UTC()},
	}}

	app := fiber.New()
	handler.NewCertificateHandler(svc, zerolog.Nop()).RegisterPublic(app.Group("/api/v1/verify"))

	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/verify/"+id, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	requireContract(t, "certificate", raw)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/v1/verify/ffffffffffffffffffffffffffffffff", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, service.ErrCertificateNotFound.Error(), decodeEnvelope(t, raw).Message)
}

func TestCertificateHandlerMine(t *testing.T) {
	svc := &stubCertificateService{mineErr: service.ErrCertificatesNotPublished}

	app := fiber.New()
	handler.NewCertificateHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/certificates", withIdentity(11, 4, models.UserRoleLeader)))

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/certificates/mine", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, uint(4), svc.lastTeamID)

	svc.mineErr = nil
	svc.mine = []dto.CertificateResponse{{TeamName: "Null Pointers", Achievement: models.AchievementAppreciation}}
	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/certificates/mine", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var certificates []dto.CertificateResponse
	decodeData(t, raw, &certificates)
	require.Len(t, certificates, 1)
}
