package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
	"github.com/noah-isme/hackathon-go-api/pkg/ai"
)

// ReviewService attaches AI feedback to judged answers. Feedback is advisory
// and never changes a score.
type ReviewService interface {
	ReviewAnswer(ctx context.Context, actor ActivityActor, submissionID uint, req dto.ReviewRequest) (dto.ReviewResponse, error)
}

type reviewService struct {
	submissions repository.SubmissionRepository
	questions   repository.QuestionRepository
	judge       CodeJudge
	reviewer    ai.Reviewer
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewReviewService constructs the review service. reviewer may be nil, in
// which case every call fails with ErrReviewerUnavailable.
func NewReviewService(submissions repository.SubmissionRepository, questions repository.QuestionRepository, codeJudge CodeJudge, reviewer ai.Reviewer, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) ReviewService {
	return &reviewService{
		submissions: submissions,
		questions:   questions,
		judge:       codeJudge,
		reviewer:    reviewer,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) ReviewAnswer(ctx context.Context, actor ActivityActor, submissionID uint, req dto.ReviewRequest) (dto.ReviewResponse, error) {
	if s.reviewer == nil {
		return dto.ReviewResponse{}, ErrReviewerUnavailable
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ReviewResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrSubmissionNotFound
		}
		return dto.ReviewResponse{}, persistenceError("load submission", err)
	}

	index := -1
	for i, answer := range submission.Answers {
		if answer.QuestionID == req.QuestionID {
			index = i
			break
		}
	}
	if index < 0 {
		return dto.ReviewResponse{}, fmt.Errorf("%w: submission has no answer for question %d", ErrQuestionNotFound, req.QuestionID)
	}

	question, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrQuestionNotFound
		}
		return dto.ReviewResponse{}, persistenceError("load question", err)
	}
	if !models.IsJudged(question.Type) {
		return dto.ReviewResponse{}, ErrNotJudgedAnswer
	}

	answer := submission.Answers[index]
	input := ai.ReviewInput{
		QuestionTitle:  question.Title,
		QuestionPrompt: question.Description,
		Language:       answer.Language,
		SourceCode:     answer.Answer,
	}
	if s.judge != nil {
		if visible := question.VisibleTestCases(); len(visible) > 0 {
			result := s.judge.Evaluate(ctx, answer.Answer, answer.Language, toJudgeTestCases(visible))
			input.JudgeStatus = result.Status
			input.JudgeMessage = result.Message
			input.JudgeOutputs = result.Outputs
		}
	}

	review, err := s.reviewer.Review(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("ai review failed")
		return dto.ReviewResponse{}, err
	}

	answers := make([]models.Answer, len(submission.Answers))
	copy(answers, submission.Answers)
	answers[index].Review = review.Feedback
	if err := s.submissions.UpdateAnswers(ctx, submission.ID, answers); err != nil {
		return dto.ReviewResponse{}, persistenceError("store review", err)
	}

	if s.activity != nil {
		if _, err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "submission.reviewed",
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata:   map[string]interface{}{"question_id": req.QuestionID, "verdict": review.Verdict, "model": review.Model},
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record review activity")
		}
	}

	return dto.ReviewResponse{
		SubmissionID: submission.ID,
		QuestionID:   req.QuestionID,
		Verdict:      review.Verdict,
		Feedback:     review.Feedback,
		Suggestions:  review.Suggestions,
		Model:        review.Model,
	}, nil
}
