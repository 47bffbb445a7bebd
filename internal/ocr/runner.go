package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ToolError is a failed external command together with what it wrote to stderr.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if errors.Is(e.Err, exec.ErrNotFound) {
		return fmt.Sprintf("%s: not installed or not on PATH", e.Tool)
	}
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// run executes one tool through the engine's runner and logs the outcome.
// label names the tool in errors when it differs from the binary.
func (e *Engine) run(ctx context.Context, label, bin string, args ...string) ([]byte, error) {
	start := time.Now()
	out, errb, err := e.runner.Run(ctx, bin, args...)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		e.logger.Error("ocr.exec.error",
			"cmd", bin,
			"args", strings.Join(args, " "),
			"elapsed_ms", elapsed,
			"error", err,
			"stderr", truncate(string(errb), 8<<10),
		)
		return nil, &ToolError{Tool: label, Stderr: strings.TrimSpace(truncate(string(errb), 512)), Err: err}
	}
	e.logger.Debug("ocr.exec.ok",
		"cmd", bin,
		"elapsed_ms", elapsed,
		"stdout_bytes", len(out),
	)
	return out, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
