// Package tmux provides helpers for driving the configured terminal
// multiplexer through the command runner. Every command goes through the
// {tmux_command} placeholder, so a TENPER_TMUX_COMMAND override applies
// uniformly to session checks, window creation, and attach.
package tmux

import (
	"os"
	"strings"

	"github.com/tenper/tenper/internal/runctx"
)

// Runner is the subset of the command runner the tmux helpers need.
type Runner interface {
	Run(rc *runctx.Context, command string, extra map[string]any) (bool, string, error)
	Interactive(rc *runctx.Context, command string, extra map[string]any) error
}

// HasSession reports whether the session named by {session_name} exists.
// Any failure to ask (tmux not installed, no server running) counts as the
// session not existing.
func HasSession(r Runner, rc *runctx.Context) bool {
	ok, _, err := r.Run(rc, "{tmux_command} has-session -t {session_name}", nil)
	return err == nil && ok
}

// ListSessions returns the names of all running tmux sessions. A missing
// server yields an empty list, not an error.
func ListSessions(r Runner, rc *runctx.Context) []string {
	ok, output, err := r.Run(rc, "{tmux_command} list-sessions -F {format}", map[string]any{
		"format": "#{session_name}",
	})
	if err != nil || !ok {
		return nil
	}

	var names []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line != "" {
			names = append(names, line)
		}
	}
	return names
}

// Attach hands the terminal over to the session named by {session_name}.
// Inside an existing tmux client the session is switched to instead, since
// nesting attach fails.
func Attach(r Runner, rc *runctx.Context) error {
	if os.Getenv("TMUX") != "" {
		return r.Interactive(rc, "{tmux_command} switch-client -t {session_name}", nil)
	}
	return r.Interactive(rc, "{tmux_command} attach-session -t {session_name}", nil)
}

// SendKeys types keys into the given window target followed by Enter. The
// keys string may contain spaces; it is bound through a placeholder so it
// stays a single tmux argument.
func SendKeys(r Runner, rc *runctx.Context, target, keys string) (bool, string, error) {
	return r.Run(rc, "{tmux_command} send-keys -t {target} {keys} Enter", map[string]any{
		"target": target,
		"keys":   keys,
	})
}
