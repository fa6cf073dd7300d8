package ai

import "context"

// ReviewInput carries a judged answer and the judge's verdict for review.
type ReviewInput struct {
	QuestionTitle  string
	QuestionPrompt string
	Language       string
	SourceCode     string
	JudgeStatus    string
	JudgeMessage   string
	JudgeOutputs   []string
}

// Review is qualitative feedback on a submission. It never alters a score.
type Review struct {
	Verdict     string   `json:"verdict"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions,omitempty"`
	Model       string   `json:"model"`
}

// Reviewer produces feedback for judged answers.
type Reviewer interface {
	Review(ctx context.Context, input ReviewInput) (Review, error)
}
