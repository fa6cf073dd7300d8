package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeImageUploader struct {
	calls    int
	uploaded []byte
}

func (f *fakeImageUploader) UploadQuestionImage(_ context.Context, questionID uint, filename string, reader io.Reader) (string, error) {
	f.calls++
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.uploaded = data
	return "https://cdn.test/questions/" + filename, nil
}

func setupQuestionService(t *testing.T) (QuestionService, *fakeImageUploader, *stubActivityRecorder) {
	t.Helper()

	db := setupServiceDB(t)
	images := &fakeImageUploader{}
	activity := &stubActivityRecorder{}
	svc := NewQuestionService(repository.NewQuestionRepository(db), images, activity, newTestValidator(), zerolog.Nop())
	return svc, images, activity
}

func mcqRequest() dto.QuestionRequest {
	return dto.QuestionRequest{
		Title:       "Capital",
		Description: "Pick the capital of France<script>alert(1)</script>",
		Round:       1,
		Type:        models.QuestionTypeMCQ,
		Options: []models.QuestionOption{
			{ID: "a", Text: "Paris"},
			{ID: "b", Text: "Lyon"},
		},
		CorrectAnswer: "a",
	}
}

func TestQuestionServiceCreateAppliesDefaults(t *testing.T) {
	svc, _, activity := setupQuestionService(t)

	response, err := svc.Create(context.Background(), ActivityActor{ID: 1, Role: "admin"}, mcqRequest())
	require.NoError(t, err)
	require.NotZero(t, response.ID)
	require.Equal(t, models.DefaultQuestionPoints, response.Points)
	require.Equal(t, "Pick the capital of France", response.Description)
	require.Len(t, activity.entries, 1)
	require.Equal(t, "question.created", activity.entries[0].Action)
}

func TestQuestionServiceRejectsBrokenInvariants(t *testing.T) {
	svc, _, _ := setupQuestionService(t)
	ctx := context.Background()

	objective := mcqRequest()
	objective.CorrectAnswer = ""
	_, err := svc.Create(ctx, ActivityActor{}, objective)
	require.ErrorIs(t, err, ErrInvalidQuestion)

	judged := dto.QuestionRequest{Title: "Sum", Description: "Add numbers", Round: 2, Type: models.QuestionTypeCode, Points: 20}
	_, err = svc.Create(ctx, ActivityActor{}, judged)
	require.ErrorIs(t, err, ErrInvalidQuestion)

	judged.TestCases = []models.TestCase{{Input: "1 2", ExpectedOutput: "3"}}
	created, err := svc.Create(ctx, ActivityActor{}, judged)
	require.NoError(t, err)
	require.Equal(t, 20, created.Points)
}

func TestQuestionServiceUpdateAndDelete(t *testing.T) {
	svc, _, _ := setupQuestionService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ActivityActor{}, mcqRequest())
	require.NoError(t, err)

	req := mcqRequest()
	req.Title = "Capital city"
	req.Points = 15
	updated, err := svc.Update(ctx, ActivityActor{}, created.ID, req)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Capital city", updated.Title)

	listed, err := svc.ListByRound(ctx, 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, 15, listed[0].Points)

	_, err = svc.Update(ctx, ActivityActor{}, 999, req)
	require.ErrorIs(t, err, ErrQuestionNotFound)

	require.NoError(t, svc.Delete(ctx, ActivityActor{}, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, ActivityActor{}, created.ID), ErrQuestionNotFound)

	_, err = svc.ListByRound(ctx, 3)
	require.ErrorIs(t, err, ErrInvalidRound)
}

func TestQuestionServiceUploadImage(t *testing.T) {
	svc, images, _ := setupQuestionService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ActivityActor{}, mcqRequest())
	require.NoError(t, err)

	_, err = svc.UploadImage(ctx, ActivityActor{}, created.ID, "notes.txt", bytes.NewReader([]byte("plain text body")))
	require.ErrorIs(t, err, ErrUnsupportedImage)
	require.Zero(t, images.calls)

	response, err := svc.UploadImage(ctx, ActivityActor{}, created.ID, "map.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/questions/map.png", response.ImageURL)
	require.Equal(t, pngHeader, images.uploaded)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, response.ImageURL, stored.ImageURL)

	_, err = svc.UploadImage(ctx, ActivityActor{}, 404, "map.png", bytes.NewReader(pngHeader))
	require.ErrorIs(t, err, ErrQuestionNotFound)
}
