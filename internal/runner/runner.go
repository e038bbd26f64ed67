// Package runner executes templated command lines against a run context.
//
// A command line is split on single spaces before template expansion, so a
// command string cannot express a literal argument containing a space. A
// substituted value may contain spaces, since expansion happens per token
// after the split. This is a deliberate limitation inherited from the
// configuration format: project files must avoid literal spaces in command
// arguments and bind such values through placeholders instead.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/tenper/tenper/internal/logging"
	"github.com/tenper/tenper/internal/runctx"
)

// Runner resolves templated commands and runs them as child processes. One
// Runner serves a whole invocation; commands run strictly sequentially, and
// each call blocks until the child exits. There is no timeout: a hung child
// hangs the tool.
type Runner struct {
	// Out receives the trace line printed before each command. Defaults to
	// os.Stdout.
	Out io.Writer
	// Log receives debug entries for each command and its outcome.
	Log *logging.Logger
}

// New creates a Runner tracing to stdout.
func New(log *logging.Logger) *Runner {
	return &Runner{Out: os.Stdout, Log: log}
}

// Run resolves command against rc and extra, prints a trace line, and runs
// the result as a child process, waiting for it to exit.
//
// A zero exit status yields (true, stdout text, nil). A non-zero exit
// status yields (false, captured error text, nil) — never an error, so a
// caller chaining several commands can inspect each step and decide whether
// to continue. Only two conditions surface on the error channel, and both
// are fatal to the operation: a placeholder with no binding
// (*runctx.MissingBindingError) and an executable that cannot be launched.
func (r *Runner) Run(rc *runctx.Context, command string, extra map[string]any) (bool, string, error) {
	argv, err := r.resolve(rc, command, extra)
	if err != nil {
		return false, "", err
	}

	out, err := exec.Command(argv[0], argv[1:]...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			text := string(exitErr.Stderr)
			if text == "" {
				text = string(out)
			}
			r.Log.Debug("command failed", "command", strings.Join(argv, " "), "exit_code", exitErr.ExitCode())
			return false, text, nil
		}
		r.Log.Error("command could not be launched", "command", argv[0], "error", err.Error())
		return false, "", fmt.Errorf("running %q: %w", argv[0], err)
	}

	r.Log.Debug("command succeeded", "command", strings.Join(argv, " "))
	return true, string(out), nil
}

// Interactive resolves command like Run but attaches the child to the
// caller's terminal instead of capturing output. Used for attaching to tmux
// sessions and opening the editor.
func (r *Runner) Interactive(rc *runctx.Context, command string, extra map[string]any) error {
	argv, err := r.resolve(rc, command, extra)
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.Log.Debug("interactive command", "command", strings.Join(argv, " "))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %q: %w", argv[0], err)
	}
	return nil
}

// resolve splits command on single spaces, expands each token against the
// combined bindings, and prints the fully resolved command as a trace line.
func (r *Runner) resolve(rc *runctx.Context, command string, extra map[string]any) ([]string, error) {
	parts := strings.Split(command, " ")
	argv := make([]string, 0, len(parts))
	for _, part := range parts {
		resolved, err := rc.Resolve(part, extra)
		if err != nil {
			return nil, err
		}
		argv = append(argv, resolved)
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("empty command: %q", command)
	}

	fmt.Fprintf(r.traceWriter(), "* %s\n", strings.Join(argv, " "))
	return argv, nil
}

func (r *Runner) traceWriter() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}
