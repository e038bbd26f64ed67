// Package config builds the base run context from the environment and loads
// per-project configuration files.
//
// Environment variables, read once at process start:
//
//	TENPER_CONFIGS       directory holding project files (default ~/.tenper)
//	TENPER_VIRTUALENVS   directory holding virtualenvs (default ~/.virtualenvs)
//	TENPER_TMUX_COMMAND  tmux executable name (default "tmux")
//	TENPER_EDITOR        editor command, falls back to EDITOR (default "vi")
//	TENPER_LOG_LEVEL     debug log level (default "info")
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tenper/tenper/internal/runctx"
)

// SetDefaults registers default values with viper.
func SetDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	viper.SetDefault("configs", filepath.Join(home, ".tenper"))
	viper.SetDefault("virtualenvs", filepath.Join(home, ".virtualenvs"))
	viper.SetDefault("tmux_command", "tmux")
	viper.SetDefault("editor", "vi")
	viper.SetDefault("log_level", "info")
}

// BindEnv wires the TENPER_* environment variables into viper. The editor
// key also honors the conventional EDITOR variable.
func BindEnv() {
	viper.SetEnvPrefix("TENPER")
	_ = viper.BindEnv("configs")
	_ = viper.BindEnv("virtualenvs")
	_ = viper.BindEnv("tmux_command")
	_ = viper.BindEnv("editor", "TENPER_EDITOR", "EDITOR")
	_ = viper.BindEnv("log_level")
}

// LogLevel returns the configured debug log level.
func LogLevel() string {
	return viper.GetString("log_level")
}

// BaseContext creates the run context every invocation starts from. The
// per-project keys are present but empty; loading a project file overlays
// them for the duration of one lifecycle operation.
func BaseContext() *runctx.Context {
	return runctx.New(map[string]any{
		runctx.KeyEditor:          viper.GetString("editor"),
		runctx.KeyConfigPath:      viper.GetString("configs"),
		runctx.KeyVirtualenvsPath: viper.GetString("virtualenvs"),
		runctx.KeyTmuxCommand:     viper.GetString("tmux_command"),

		runctx.KeyConfigFileName:   "",
		runctx.KeyProjectRoot:      "",
		runctx.KeySessionName:      "",
		runctx.KeyVenvConfigured:   false,
		runctx.KeyVenvPath:         "",
		runctx.KeyVenvPythonBinary: "",
		runctx.KeyVenvSitePackages: "--no-site-packages",
		runctx.KeyEnvironment:      map[string]string{},
		runctx.KeyWindows:          []Window{},
	})
}
