package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/hackathon-go-api/pkg/docker"
)

// compileFailedExit is the exit code the run scripts use for compiler failures.
const compileFailedExit = 97

type toolchain struct {
	image  string
	source string
	script string
}

var toolchains = map[string]toolchain{
	"python": {
		image:  "python:3.12-alpine",
		source: "main.py",
		script: "python3 main.py < input.txt",
	},
	"javascript": {
		image:  "node:20-alpine",
		source: "main.js",
		script: "node main.js < input.txt",
	},
	"java": {
		image:  "eclipse-temurin:21-jdk",
		source: "Main.java",
		script: "javac -d /tmp Main.java || exit 97; java -cp /tmp Main < input.txt",
	},
	"cpp": {
		image:  "gcc:13",
		source: "main.cpp",
		script: "g++ -O2 -std=c++17 -o /tmp/main main.cpp || exit 97; /tmp/main < input.txt",
	},
}

// DockerBackend judges submissions locally inside the sandbox.
type DockerBackend struct {
	runner docker.Runner
}

// NewDockerBackend wraps a sandbox runner.
func NewDockerBackend(runner docker.Runner) *DockerBackend {
	return &DockerBackend{runner: runner}
}

// Execute runs the program once and grades its stdout against the expected output.
func (b *DockerBackend) Execute(ctx context.Context, submission Submission) (Execution, error) {
	chain, ok := toolchains[NormalizeLanguage(submission.Language)]
	if !ok {
		chain = toolchains[DefaultLanguage]
	}

	run, err := b.runner.Run(ctx, docker.RunRequest{
		Image: chain.image,
		Cmd:   []string{"sh", "-c", chain.script},
		Files: map[string]string{
			chain.source: submission.SourceCode,
			"input.txt":  submission.Stdin,
		},
	})
	if err != nil && !errors.Is(err, docker.ErrTimeout) {
		return Execution{}, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}

	return grade(run, submission.ExpectedOutput), nil
}

func grade(run docker.RunResult, expected string) Execution {
	execution := Execution{Stdout: run.Stdout, Stderr: run.Stderr}

	switch {
	case run.TimedOut:
		execution.StatusID, execution.Status = StatusTimeLimitExceeded, "Time Limit Exceeded"
	case run.ExitCode == compileFailedExit:
		execution.StatusID, execution.Status = StatusCompilationError, "Compilation Error"
		execution.CompileOutput, execution.Stderr = run.Stderr, ""
	case run.ExitCode != 0:
		execution.StatusID, execution.Status = StatusRuntimeError, "Runtime Error"
	case trimOutput(run.Stdout) == trimOutput(expected):
		execution.StatusID, execution.Status = StatusAccepted, "Accepted"
	default:
		execution.StatusID, execution.Status = StatusWrongAnswer, "Wrong Answer"
	}
	return execution
}

func trimOutput(output string) string {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
