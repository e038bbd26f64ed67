package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tenper/tenper/internal/runctx"
)

func testContext() *runctx.Context {
	return runctx.New(map[string]any{
		runctx.KeyConfigPath:      "/home/u/.tenper",
		runctx.KeyVirtualenvsPath: "/home/u/.virtualenvs",
	})
}

func TestFileName(t *testing.T) {
	got, err := FileName(testContext(), "myproj")
	if err != nil {
		t.Fatalf("FileName returned error: %v", err)
	}
	if got != "/home/u/.tenper/myproj.yml" {
		t.Errorf("FileName = %q, want %q", got, "/home/u/.tenper/myproj.yml")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myproj.yml")
	content := `session name: my-session
project root: /work/myproj
environment:
    PYTHONPATH: .
virtualenv:
    python binary: /usr/bin/python3
    site packages: true
windows:
  - name: code
    command: vim
  - name: shell
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	overrides, err := Load(testContext(), path, "myproj")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got := overrides[runctx.KeyConfigFileName]; got != path {
		t.Errorf("config_file_name = %v, want %q", got, path)
	}
	if got := overrides[runctx.KeySessionName]; got != "my-session" {
		t.Errorf("session_name = %v, want %q", got, "my-session")
	}
	if got := overrides[runctx.KeyProjectRoot]; got != "/work/myproj" {
		t.Errorf("project_root = %v, want %q", got, "/work/myproj")
	}
	if got := overrides[runctx.KeyVenvConfigured]; got != true {
		t.Errorf("virtualenv_configured = %v, want true", got)
	}
	if got := overrides[runctx.KeyVenvPath]; got != "/home/u/.virtualenvs/myproj" {
		t.Errorf("virtualenv_path = %v, want %q", got, "/home/u/.virtualenvs/myproj")
	}
	if got := overrides[runctx.KeyVenvSitePackages]; got != "--system-site-packages" {
		t.Errorf("virtualenv_use_site_packages = %v, want %q", got, "--system-site-packages")
	}

	env, ok := overrides[runctx.KeyEnvironment].(map[string]string)
	if !ok || env["PYTHONPATH"] != "." {
		t.Errorf("environment = %v, want PYTHONPATH=.", overrides[runctx.KeyEnvironment])
	}

	windows, ok := overrides[runctx.KeyWindows].([]Window)
	if !ok || len(windows) != 2 {
		t.Fatalf("windows = %v, want 2 entries", overrides[runctx.KeyWindows])
	}
	if windows[0].Name != "code" || windows[0].Command != "vim" {
		t.Errorf("windows[0] = %+v, want name=code command=vim", windows[0])
	}
	if windows[1].Name != "shell" || windows[1].Command != "" {
		t.Errorf("windows[1] = %+v, want name=shell empty command", windows[1])
	}
}

func TestLoadDefaultsSessionNameToProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myproj.yml")
	if err := os.WriteFile(path, []byte("project root: /work\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	overrides, err := Load(testContext(), path, "myproj")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := overrides[runctx.KeySessionName]; got != "myproj" {
		t.Errorf("session_name = %v, want %q", got, "myproj")
	}
	if got := overrides[runctx.KeyVenvConfigured]; got != nil {
		t.Errorf("virtualenv_configured should not be overridden, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(testContext(), filepath.Join(t.TempDir(), "absent.yml"), "absent")
	if err == nil {
		t.Fatal("Load of a missing file should fail")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(path, []byte("windows: [unclosed\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(testContext(), path, "bad"); err == nil {
		t.Fatal("Load of a malformed file should fail")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	t.Setenv("TENPER_TEST_DIR", "/opt/work")

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/proj", filepath.Join(home, "proj")},
		{"$TENPER_TEST_DIR/proj", "/opt/work/proj"},
		{"/absolute", "/absolute"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
