package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/handler"
	"github.com/noah-isme/hackathon-go-api/internal/service"
)

type stubActivityService struct {
	last dto.AdminActivityListRequest
}

func (s *stubActivityService) Record(_ context.Context, entry service.ActivityEntry) (dto.AdminActivityResponse, error) {
	return dto.AdminActivityResponse{Action: entry.Action}, nil
}

func (s *stubActivityService) List(_ context.Context, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error) {
	s.last = req
	return dto.AdminActivityListResponse{
		Items:      []dto.AdminActivityResponse{{ID: 1, Action: "round.deployed", EntityType: "settings"}},
		Pagination: dto.PaginationMeta{Page: req.Page, PageSize: req.PageSize, TotalItems: 1, TotalPages: 1},
	}, nil
}

var _ service.ActivityService = (*stubActivityService)(nil)

func TestAdminActivityHandlerList(t *testing.T) {
	svc := &stubActivityService{}
	app := fiber.New()
	handler.NewAdminActivityHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/admin/activity"))

	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/admin/activity?page_size=500&action=round.deployed&actor_id=2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, svc.last.Page)
	require.Equal(t, 200, svc.last.PageSize)
	require.Equal(t, uint(2), svc.last.ActorID)
	require.Equal(t, "round.deployed", svc.last.Action)

	payload := decodeEnvelope(t, raw)
	var meta dto.PaginationMeta
	require.NoError(t, json.Unmarshal(payload.Meta, &meta))
	require.Equal(t, int64(1), meta.TotalItems)

	var items []dto.AdminActivityResponse
	require.NoError(t, json.Unmarshal(payload.Data, &items))
	require.Len(t, items, 1)
}
