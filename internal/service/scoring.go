package service

import (
	"context"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/pkg/judge"
)

// CodeJudge evaluates source code against ordered test cases.
type CodeJudge interface {
	Evaluate(ctx context.Context, code, language string, testCases []judge.TestCase) judge.Result
}

// scoreAnswer grades one answer against its question. judged reports whether
// the question is a judged type, even when it could not be evaluated.
func scoreAnswer(ctx context.Context, codeJudge CodeJudge, question models.Question, input dto.AnswerInput) (answer models.Answer, judged bool, err error) {
	answer = models.Answer{QuestionID: input.QuestionID, Answer: input.Answer}

	evaluation, err := question.Evaluation()
	if err != nil {
		if models.IsJudged(question.Type) {
			answer.Language = judge.NormalizeLanguage(input.Language)
		}
		return answer, models.IsJudged(question.Type), err
	}

	switch rule := evaluation.(type) {
	case models.ObjectiveEvaluation:
		if input.Answer == rule.CorrectAnswer {
			answer.IsCorrect = true
			answer.Score = float64(question.Points)
		}
		return answer, false, nil
	case models.JudgedEvaluation:
		answer.Language = judge.NormalizeLanguage(input.Language)
		result := codeJudge.Evaluate(ctx, input.Answer, answer.Language, toJudgeTestCases(rule.TestCases))
		answer.IsCorrect = result.IsCorrect
		answer.Score = result.Score / 100 * float64(question.Points)
		return answer, true, nil
	default:
		return answer, false, models.ErrUnknownQuestionType
	}
}

func toJudgeTestCases(cases []models.TestCase) []judge.TestCase {
	converted := make([]judge.TestCase, 0, len(cases))
	for _, testCase := range cases {
		converted = append(converted, judge.TestCase{Input: testCase.Input, ExpectedOutput: testCase.ExpectedOutput})
	}
	return converted
}
