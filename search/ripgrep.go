package search

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"time"
)

// DefaultBinary is the external search tool resolved on PATH.
const DefaultBinary = "rg"

// runner owns the lifecycle of one external tool invocation: spawn, capture,
// terminate and exit interpretation.
type runner struct {
	binary string
}

// available reports whether the configured binary resolves on PATH.
func (r *runner) available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

type runOutput struct {
	outcome Outcome
	stdout  []byte
	stderr  string
}

// grepArgs builds the fixed argument set for one request. The tool enforces
// the per-file and per-line caps so the engine only has to apply the total
// cap afterwards.
func grepArgs(req Request, root string) []string {
	args := []string{
		"--no-heading",
		"--with-filename",
		"--line-number",
		"--color", "never",
		"--max-count", strconv.Itoa(PerFileMatches),
		"--max-columns", strconv.Itoa(MaxColumns),
	}
	if !req.CaseSensitive {
		args = append(args, "--ignore-case")
	}
	return append(args, "--", req.Pattern, root)
}

// run executes the tool under a per-request timeout. Exit status 0 and 1 are
// both natural terminations (matches and no matches). Outcome classification
// checks the parent context first so a caller abort that races the timeout
// reports Aborted, not TimedOut.
func (r *runner) run(ctx context.Context, timeout time.Duration, args []string) *runOutput {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := &runOutput{stdout: stdout.Bytes(), stderr: stderr.String()}
	switch {
	case ctx.Err() != nil:
		out.outcome = OutcomeAborted
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		out.outcome = OutcomeTimedOut
	case err == nil || exitCode(cmd) == 1:
		out.outcome = OutcomeCompleted
	default:
		out.outcome = OutcomeFailed
		if out.stderr == "" {
			out.stderr = err.Error()
		}
	}
	return out
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
