// Package project implements the tenper lifecycle operations: list, start,
// edit, rebuild, and delete. Each operation runs inside the scoped context
// the dispatcher has already established and issues its external side
// effects through the command runner.
package project

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tenper/tenper/internal/config"
	"github.com/tenper/tenper/internal/logging"
	"github.com/tenper/tenper/internal/runctx"
	"github.com/tenper/tenper/internal/tmux"
)

// Runner is the command execution surface the operations depend on.
// *runner.Runner satisfies it; tests substitute a fake.
type Runner interface {
	Run(rc *runctx.Context, command string, extra map[string]any) (bool, string, error)
	Interactive(rc *runctx.Context, command string, extra map[string]any) error
}

// Ops bundles the collaborators shared by all lifecycle operations.
type Ops struct {
	Runner Runner
	Log    *logging.Logger
	// In is the confirmation-prompt source, normally os.Stdin.
	In io.Reader
	// Out is where user-facing output goes, normally os.Stdout.
	Out io.Writer
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// List prints the configured projects, marking those with a live tmux
// session of the same name.
func (o *Ops) List(rc *runctx.Context) error {
	configPath := rc.String(runctx.KeyConfigPath)
	matches, err := filepath.Glob(filepath.Join(configPath, "*.yml"))
	if err != nil {
		return fmt.Errorf("listing %s: %w", configPath, err)
	}

	if len(matches) == 0 {
		fmt.Fprintln(o.Out, "No projects configured. Run 'tenper edit <name>' to create one.")
		return nil
	}

	running := make(map[string]bool)
	for _, name := range tmux.ListSessions(o.Runner, rc) {
		running[name] = true
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".yml"))
	}
	sort.Strings(names)

	fmt.Fprintln(o.Out, titleStyle.Render("Configured projects:"))
	for _, name := range names {
		if running[name] {
			fmt.Fprintf(o.Out, "  %s %s\n", name, runningStyle.Render("(running)"))
		} else {
			fmt.Fprintf(o.Out, "  %s\n", name)
		}
	}
	return nil
}

// Start attaches to the project's tmux session, creating it first when it
// does not exist: a detached session, the per-project environment, and the
// configured windows with their commands.
func (o *Ops) Start(rc *runctx.Context, name string) error {
	if tmux.HasSession(o.Runner, rc) {
		return tmux.Attach(o.Runner, rc)
	}

	ok, output, err := o.Runner.Run(rc, "{tmux_command} new-session -d -s {session_name}", nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("creating session %q: %s", rc.String(runctx.KeySessionName), strings.TrimSpace(output))
	}

	if err := o.applyEnvironment(rc); err != nil {
		return err
	}
	if err := o.buildWindows(rc); err != nil {
		return err
	}

	return tmux.Attach(o.Runner, rc)
}

// applyEnvironment sets the project's environment variables on the session
// so new windows inherit them. A failed set-environment is reported and
// skipped; the remaining variables are still applied.
func (o *Ops) applyEnvironment(rc *runctx.Context) error {
	env := rc.StringMap(runctx.KeyEnvironment)
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		ok, output, err := o.Runner.Run(rc, "{tmux_command} set-environment -t {session_name} {key} {value}", map[string]any{
			"key":   k,
			"value": env[k],
		})
		if err != nil {
			return err
		}
		if !ok {
			o.Log.Warn("set-environment failed", "key", k, "output", strings.TrimSpace(output))
		}
	}
	return nil
}

// buildWindows creates the configured windows in order. The first window
// reuses the one new-session created; tmux is assumed to use base-index 0.
// Each window gets a cd into the project root, the virtualenv activation
// when configured, and finally its own command.
func (o *Ops) buildWindows(rc *runctx.Context) error {
	windows := windowsFrom(rc)
	session := rc.String(runctx.KeySessionName)

	for i, w := range windows {
		target := fmt.Sprintf("%s:%d", session, i)

		var ok bool
		var output string
		var err error
		if i == 0 {
			ok, output, err = o.Runner.Run(rc, "{tmux_command} rename-window -t {target} {window_name}", map[string]any{
				"target":      target,
				"window_name": w.Name,
			})
		} else {
			ok, output, err = o.Runner.Run(rc, "{tmux_command} new-window -t {session_name} -n {window_name}", map[string]any{
				"window_name": w.Name,
			})
		}
		if err != nil {
			return err
		}
		if !ok {
			o.Log.Warn("window setup failed", "window", w.Name, "output", strings.TrimSpace(output))
			continue
		}

		if root := rc.String(runctx.KeyProjectRoot); root != "" {
			if _, _, err := tmux.SendKeys(o.Runner, rc, target, "cd "+root); err != nil {
				return err
			}
		}
		if rc.Bool(runctx.KeyVenvConfigured) {
			activate := "source " + rc.String(runctx.KeyVenvPath) + "/bin/activate"
			if _, _, err := tmux.SendKeys(o.Runner, rc, target, activate); err != nil {
				return err
			}
		}
		if w.Command != "" {
			if _, _, err := tmux.SendKeys(o.Runner, rc, target, w.Command); err != nil {
				return err
			}
		}
		if w.Layout != "" {
			if _, _, err := o.Runner.Run(rc, "{tmux_command} select-layout -t {target} {layout}", map[string]any{
				"target": target,
				"layout": w.Layout,
			}); err != nil {
				return err
			}
		}
	}

	if len(windows) > 0 {
		if _, _, err := o.Runner.Run(rc, "{tmux_command} select-window -t {target}", map[string]any{
			"target": session + ":0",
		}); err != nil {
			return err
		}
	}
	return nil
}

// Edit opens the project's configuration file in the configured editor,
// seeding a default configuration first when the file does not exist yet.
func (o *Ops) Edit(rc *runctx.Context, name, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := o.seedConfig(rc, name, path); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	return o.Runner.Interactive(rc, "{editor} {config_file}", map[string]any{
		"config_file": path,
	})
}

func (o *Ops) seedConfig(rc *runctx.Context, name, path string) error {
	content, err := rc.Resolve(config.DefaultProject, map[string]any{
		"project_name": name,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("seeding %s: %w", path, err)
	}
	o.Log.Info("seeded project config", "project", name, "path", path)
	return nil
}

// Rebuild deletes the project's virtualenv and creates a fresh one with the
// configured python binary and site-packages flag.
func (o *Ops) Rebuild(rc *runctx.Context, name string) error {
	if !rc.Bool(runctx.KeyVenvConfigured) {
		fmt.Fprintf(o.Out, "Project %q has no virtualenv configured.\n", name)
		return nil
	}

	venvPath := rc.String(runctx.KeyVenvPath)
	if venvPath == "" {
		return fmt.Errorf("project %q: virtualenv configured but no path derived", name)
	}
	if err := os.RemoveAll(venvPath); err != nil {
		return fmt.Errorf("removing %s: %w", venvPath, err)
	}

	ok, output, err := o.Runner.Run(rc, "virtualenv --python {virtualenv_python_binary} {virtualenv_use_site_packages} {virtualenv_path}", nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("rebuilding virtualenv for %q: %s", name, strings.TrimSpace(output))
	}

	fmt.Fprintf(o.Out, "Rebuilt virtualenv at %s\n", venvPath)
	return nil
}

// Delete removes the project's virtualenv directory and configuration file
// after an interactive confirmation.
func (o *Ops) Delete(rc *runctx.Context, name string) error {
	fmt.Fprintf(o.Out, "Delete project %q, its virtualenv and configuration? [y/N] ", name)
	response, _ := bufio.NewReader(o.In).ReadString('\n')
	if strings.ToLower(strings.TrimSpace(response)) != "y" {
		fmt.Fprintln(o.Out, "Aborted.")
		return nil
	}

	venvPath := filepath.Join(rc.String(runctx.KeyVirtualenvsPath), name)
	if err := os.RemoveAll(venvPath); err != nil {
		return fmt.Errorf("removing %s: %w", venvPath, err)
	}

	configFile := rc.String(runctx.KeyConfigFileName)
	if err := os.Remove(configFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", configFile, err)
	}

	fmt.Fprintf(o.Out, "Deleted project %q.\n", name)
	o.Log.Info("deleted project", "project", name)
	return nil
}

func windowsFrom(rc *runctx.Context) []config.Window {
	v, ok := rc.Value(runctx.KeyWindows)
	if !ok {
		return nil
	}
	windows, _ := v.([]config.Window)
	return windows
}
