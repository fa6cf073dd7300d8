package judge

import (
	"context"
	"errors"
)

// Judge0 status identifiers shared by every backend.
const (
	StatusInQueue           = 1
	StatusProcessing        = 2
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompilationError  = 6
	StatusRuntimeError      = 11
	StatusInternalError     = 13
)

// StatusError is the status reported for a test case whose run could not complete.
const StatusError = "Error"

// ErrJudgeUnavailable wraps any failure to obtain a verdict from a backend.
var ErrJudgeUnavailable = errors.New("judge unavailable")

// TestCase is a stdin/expected-output pair.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// Submission is a single program run against one test case.
type Submission struct {
	SourceCode     string
	Language       string
	Stdin          string
	ExpectedOutput string
}

// Execution is the verdict a backend returns for one Submission.
type Execution struct {
	StatusID      int
	Status        string
	Stdout        string
	Stderr        string
	CompileOutput string
}

// Accepted reports whether the program produced the expected output.
func (e Execution) Accepted() bool {
	return e.StatusID == StatusAccepted
}

// Output returns the first non-empty of stdout, stderr and compiler output.
func (e Execution) Output() string {
	switch {
	case e.Stdout != "":
		return e.Stdout
	case e.Stderr != "":
		return e.Stderr
	default:
		return e.CompileOutput
	}
}

// Backend executes one submission and reports its verdict.
type Backend interface {
	Execute(ctx context.Context, submission Submission) (Execution, error)
}

// Result aggregates the verdicts of a test-case run.
type Result struct {
	Status    string   `json:"status"`
	IsCorrect bool     `json:"is_correct"`
	Message   string   `json:"message"`
	Outputs   []string `json:"outputs"`
	Score     float64  `json:"score"`
}
