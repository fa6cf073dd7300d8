package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hackathon",
		Subsystem: "sandbox",
		Name:      "run_duration_seconds",
		Help:      "Duration of sandboxed program runs",
		Buckets:   prometheus.DefBuckets,
	}, []string{"image"})

	runTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackathon",
		Subsystem: "sandbox",
		Name:      "run_timeouts_total",
		Help:      "Number of sandboxed runs that hit the time limit",
	}, []string{"image"})

	runFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackathon",
		Subsystem: "sandbox",
		Name:      "run_failures_total",
		Help:      "Number of sandboxed runs that could not be completed",
	}, []string{"image"})
)

// ErrTimeout is returned when a run exceeds its time limit.
var ErrTimeout = errors.New("sandbox run timed out")

// Runner executes a program inside an isolated container.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// RunRequest describes a single program run. Files are written into a fresh
// workspace that is mounted at the configured working directory.
type RunRequest struct {
	Image   string
	Cmd     []string
	Files   map[string]string
	Timeout time.Duration
}

// RunResult is the captured outcome of a run.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	TimedOut bool
}

// Config groups sandbox limits and connection settings.
type Config struct {
	Host          string
	Timeout       time.Duration
	MemoryLimitMB int64
	CPUShares     int64
	WorkingDir    string
	Logger        zerolog.Logger
}

// Sandbox runs programs in network-less Docker containers.
type Sandbox struct {
	client *client.Client
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewSandbox connects to the Docker daemon described by cfg.
func NewSandbox(cfg Config) (*Sandbox, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	if cfg.WorkingDir == "" {
		cfg.WorkingDir = "/workspace"
	}

	return &Sandbox{
		client: cli,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/hackathon-go-api/pkg/docker"),
		logger: cfg.Logger.With().Str("component", "sandbox").Logger(),
	}, nil
}

// WorkingDir is the in-container path the workspace is mounted at.
func (s *Sandbox) WorkingDir() string {
	return s.cfg.WorkingDir
}

// Run writes the request files into a temporary workspace and executes Cmd.
func (s *Sandbox) Run(parent context.Context, req RunRequest) (RunResult, error) {
	if req.Image == "" {
		return RunResult{}, errors.New("image is required")
	}

	ctx, span := s.tracer.Start(parent, "sandbox.run", trace.WithAttributes(
		attribute.String("docker.image", req.Image),
	))
	defer span.End()

	workspace, err := prepareWorkspace(req.Files)
	if err != nil {
		runFailures.WithLabelValues(req.Image).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RunResult{}, err
	}
	defer os.RemoveAll(workspace)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	hostCfg := &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:    s.cfg.MemoryLimitMB * 1024 * 1024,
			CPUShares: s.cfg.CPUShares,
		},
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: workspace,
			Target: s.cfg.WorkingDir,
		}},
	}

	containerCfg := &container.Config{
		Image:        req.Image,
		Cmd:          req.Cmd,
		WorkingDir:   s.cfg.WorkingDir,
		AttachStdout: true,
		AttachStderr: true,
	}

	start := time.Now()
	result := RunResult{}

	created, err := s.client.ContainerCreate(ctx, containerCfg, hostCfg, &network.NetworkingConfig{}, nil, "")
	if err != nil {
		runFailures.WithLabelValues(req.Image).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("container create: %w", err)
	}

	containerID := created.ID
	defer func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.client.ContainerRemove(removeCtx, containerID, container.RemoveOptions{Force: true}); err != nil {
			s.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to remove container")
		}
	}()

	if err := s.client.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		runFailures.WithLabelValues(req.Image).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("container start: %w", err)
	}

	statusCh, errCh := s.client.ContainerWait(ctx, containerID, container.WaitConditionNextExit)

	var waitErr error
	select {
	case err := <-errCh:
		waitErr = err
	case status := <-statusCh:
		result.ExitCode = int(status.StatusCode)
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	result.Duration = time.Since(start)
	runDuration.WithLabelValues(req.Image).Observe(result.Duration.Seconds())

	if waitErr != nil {
		if !errors.Is(waitErr, context.DeadlineExceeded) && ctx.Err() != context.DeadlineExceeded {
			runFailures.WithLabelValues(req.Image).Inc()
			span.RecordError(waitErr)
			span.SetStatus(codes.Error, waitErr.Error())
			return result, fmt.Errorf("container wait: %w", waitErr)
		}

		result.TimedOut = true
		runTimeouts.WithLabelValues(req.Image).Inc()
		killCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.client.ContainerKill(killCtx, containerID, "KILL"); err != nil {
			s.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to kill timed out container")
		}
		span.SetStatus(codes.Error, "run timed out")
	}

	logs, err := s.client.ContainerLogs(parent, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		s.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to fetch container logs")
	} else {
		defer logs.Close()
		stdout, stderr, err := splitLogs(logs)
		if err != nil {
			s.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to read container logs")
		}
		result.Stdout = stdout
		result.Stderr = stderr
	}

	if result.TimedOut {
		return result, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return result, nil
}

func prepareWorkspace(files map[string]string) (string, error) {
	dir, err := os.MkdirTemp("", "sandbox-*")
	if err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	for name, content := range files {
		if filepath.Base(name) != name {
			os.RemoveAll(dir)
			return "", fmt.Errorf("invalid workspace file name %q", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("write workspace file: %w", err)
		}
	}
	return dir, nil
}

func splitLogs(reader io.Reader) (string, string, error) {
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, reader); err != nil {
		return stdout.String(), stderr.String(), err
	}
	return stdout.String(), stderr.String(), nil
}

// Close releases the Docker client.
func (s *Sandbox) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
