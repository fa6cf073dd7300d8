package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, zerolog.Nop())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "Admin",
		Action:     "Payment.Verified",
		EntityType: "team",
		EntityID:   ptrUint(5),
		Metadata: map[string]interface{}{
			"leader_email":      "lead@example.com",
			"payment_signature": "abc",
			"team_name":         "Alpha",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "***", entry.Metadata["leader_email"])
	require.Equal(t, "***", entry.Metadata["payment_signature"])
	require.Equal(t, "Alpha", entry.Metadata["team_name"])
	require.Equal(t, "payment.verified", entry.Action)
	require.Equal(t, "admin", entry.ActorRole)
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, zerolog.Nop())
	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "team"})
	require.Error(t, err)
}

func TestActivityServiceListPaginates(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, zerolog.Nop())
	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), ActivityEntry{Action: "round.deployed", EntityType: "settings"})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), dto.AdminActivityListRequest{Page: 0, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 1, list.Pagination.Page)
	require.Equal(t, 2, list.Pagination.TotalPages)
	require.EqualValues(t, 3, list.Pagination.TotalItems)
	require.Equal(t, "system", list.Items[0].ActorRole)
}

func ptrUint(v uint) *uint {
	return &v
}
