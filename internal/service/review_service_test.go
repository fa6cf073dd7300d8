package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
	"github.com/noah-isme/hackathon-go-api/pkg/ai"
)

type fakeReviewer struct {
	inputs []ai.ReviewInput
	err    error
}

func (f *fakeReviewer) Review(_ context.Context, input ai.ReviewInput) (ai.Review, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return ai.Review{}, f.err
	}
	return ai.Review{Verdict: "good", Feedback: "Handles input cleanly.", Suggestions: []string{"Add comments"}, Model: "test-model"}, nil
}

func TestReviewServiceReviewsJudgedAnswer(t *testing.T) {
	db := setupServiceDB(t)
	team := seedTeam(t, db, "Reviewed", nil)

	code := models.Question{Title: "Echo", Description: "Echo", Round: 1, Type: models.QuestionTypeCode, Points: 10,
		TestCases: []models.TestCase{{Input: "a", ExpectedOutput: "a"}}}
	mcq := models.Question{Title: "MCQ", Description: "Pick", Round: 1, Type: models.QuestionTypeMCQ, Points: 10, CorrectAnswer: "a"}
	require.NoError(t, db.Create(&code).Error)
	require.NoError(t, db.Create(&mcq).Error)

	submission := models.Submission{TeamID: team.ID, Round: 1, TotalScore: 20, Status: models.SubmissionStatusPending, SubmittedAt: time.Now(),
		Answers: []models.Answer{
			{QuestionID: code.ID, Answer: "print(input())", Language: "python", IsCorrect: true, Score: 10},
			{QuestionID: mcq.ID, Answer: "a", IsCorrect: true, Score: 10},
		}}
	require.NoError(t, db.Omit("Team").Create(&submission).Error)

	reviewer := &fakeReviewer{}
	codeJudge := &stubJudge{passes: 1}
	activity := &stubActivityRecorder{}
	svc := NewReviewService(repository.NewSubmissionRepository(db), repository.NewQuestionRepository(db), codeJudge, reviewer, activity, newTestValidator(), zerolog.Nop())
	ctx := context.Background()
	actor := ActivityActor{ID: 1, Role: "admin"}

	response, err := svc.ReviewAnswer(ctx, actor, submission.ID, dto.ReviewRequest{QuestionID: code.ID})
	require.NoError(t, err)
	require.Equal(t, "good", response.Verdict)
	require.Equal(t, "test-model", response.Model)
	require.Len(t, reviewer.inputs, 1)
	require.Equal(t, "python", reviewer.inputs[0].Language)
	require.Equal(t, "Accepted", reviewer.inputs[0].JudgeStatus)
	require.Len(t, activity.entries, 1)

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	require.Equal(t, "Handles input cleanly.", stored.Answers[0].Review)
	require.Equal(t, 20.0, stored.TotalScore)

	_, err = svc.ReviewAnswer(ctx, actor, submission.ID, dto.ReviewRequest{QuestionID: mcq.ID})
	require.ErrorIs(t, err, ErrNotJudgedAnswer)

	_, err = svc.ReviewAnswer(ctx, actor, submission.ID, dto.ReviewRequest{QuestionID: 999})
	require.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = svc.ReviewAnswer(ctx, actor, 999, dto.ReviewRequest{QuestionID: code.ID})
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	reviewer.err = errors.New("model overloaded")
	_, err = svc.ReviewAnswer(ctx, actor, submission.ID, dto.ReviewRequest{QuestionID: code.ID})
	require.EqualError(t, err, "model overloaded")
}

func TestReviewServiceWithoutReviewer(t *testing.T) {
	svc := NewReviewService(nil, nil, nil, nil, nil, newTestValidator(), zerolog.Nop())
	_, err := svc.ReviewAnswer(context.Background(), ActivityActor{}, 1, dto.ReviewRequest{QuestionID: 1})
	require.ErrorIs(t, err, ErrReviewerUnavailable)
}
