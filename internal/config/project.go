package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tenper/tenper/internal/runctx"
)

// Window describes one tmux window in a project session.
type Window struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
	Layout  string `yaml:"layout"`
}

// Virtualenv describes a project's virtualenv opt-in. A project is
// considered virtualenv-configured when a python binary is set.
type Virtualenv struct {
	PythonBinary string `yaml:"python binary"`
	SitePackages bool   `yaml:"site packages"`
}

// Project is the parsed form of one project configuration file.
type Project struct {
	SessionName string            `yaml:"session name"`
	ProjectRoot string            `yaml:"project root"`
	Environment map[string]string `yaml:"environment"`
	Virtualenv  *Virtualenv       `yaml:"virtualenv"`
	Windows     []Window          `yaml:"windows"`
}

// FileName computes the configuration file path for a project:
// {config_path}/{project_name}.yml.
func FileName(rc *runctx.Context, projectName string) (string, error) {
	return rc.Resolve("{config_path}/{project_name}.yml", map[string]any{
		"project_name": projectName,
	})
}

// Load reads and parses a project configuration file and returns the
// context overrides it contributes. Missing or malformed files are this
// loader's errors to report; the dispatcher propagates them untouched.
func Load(rc *runctx.Context, path, projectName string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return p.ContextOverrides(rc, path, projectName), nil
}

// ContextOverrides maps a parsed project onto run-context keys. The session
// name defaults to the project name, and the virtualenv path is always
// {virtualenvs_path}/{project_name}.
func (p *Project) ContextOverrides(rc *runctx.Context, path, projectName string) map[string]any {
	sessionName := p.SessionName
	if sessionName == "" {
		sessionName = projectName
	}

	environment := p.Environment
	if environment == nil {
		environment = map[string]string{}
	}

	overrides := map[string]any{
		runctx.KeyConfigFileName: path,
		runctx.KeyProjectRoot:    ExpandPath(p.ProjectRoot),
		runctx.KeySessionName:    sessionName,
		runctx.KeyEnvironment:    environment,
		runctx.KeyWindows:        p.Windows,
	}

	if p.Virtualenv != nil && p.Virtualenv.PythonBinary != "" {
		flag := "--no-site-packages"
		if p.Virtualenv.SitePackages {
			flag = "--system-site-packages"
		}
		overrides[runctx.KeyVenvConfigured] = true
		overrides[runctx.KeyVenvPath] = filepath.Join(rc.String(runctx.KeyVirtualenvsPath), projectName)
		overrides[runctx.KeyVenvPythonBinary] = p.Virtualenv.PythonBinary
		overrides[runctx.KeyVenvSitePackages] = flag
	}

	return overrides
}

// ExpandPath expands a leading ~ and any $VAR references in a path taken
// from a project file.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}

// DefaultProject is the template seeded into a new project file by the edit
// operation. Placeholders are resolved against the run context before
// writing.
const DefaultProject = `# tenper project configuration.
session name: {project_name}
project root: $HOME

# Environment variables set on the tmux session.
environment: {}

# Uncomment to manage a virtualenv for this project.
#virtualenv:
#    python binary: /usr/bin/python3
#    site packages: false

windows:
  - name: shell
    command: ''
`
