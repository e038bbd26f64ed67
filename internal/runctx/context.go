// Package runctx holds the execution context that tenper substitutes into
// subprocess calls: paths, the session name, virtualenv settings, and the
// per-project configuration values.
//
// A Context is an immutable snapshot. Deriving an overlay with With copies
// the snapshot and merges overrides on top; the base is never mutated. The
// Stack owns the "current" context for one invocation and enforces the
// push/restore discipline around scoped blocks, so that the context in
// effect after a block always equals the context in effect before it,
// no matter how the block exits.
package runctx

import (
	"fmt"
	"regexp"
)

// Keys present in every base context. Overlays may introduce keys beyond
// these; template expansion treats the key set as open.
const (
	KeyEditor           = "editor"
	KeyConfigPath       = "config_path"
	KeyVirtualenvsPath  = "virtualenvs_path"
	KeyTmuxCommand      = "tmux_command"
	KeyConfigFileName   = "config_file_name"
	KeyProjectRoot      = "project_root"
	KeySessionName      = "session_name"
	KeyVenvConfigured   = "virtualenv_configured"
	KeyVenvPath         = "virtualenv_path"
	KeyVenvPythonBinary = "virtualenv_python_binary"
	KeyVenvSitePackages = "virtualenv_use_site_packages"
	KeyEnvironment      = "environment"
	KeyWindows          = "windows"
)

// Context is an immutable set of named values used for template expansion.
type Context struct {
	values map[string]any
}

// New creates a Context from the given values. The map is copied, so the
// caller may reuse it.
func New(values map[string]any) *Context {
	c := &Context{values: make(map[string]any, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// With returns a new Context equal to this one with overrides merged on top.
// Overrides win on key collision. The receiver is not modified.
func (c *Context) With(overrides map[string]any) *Context {
	merged := &Context{values: make(map[string]any, len(c.values)+len(overrides))}
	for k, v := range c.values {
		merged.values[k] = v
	}
	for k, v := range overrides {
		merged.values[k] = v
	}
	return merged
}

// Value returns the value bound to key and whether a binding exists.
func (c *Context) Value(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns the value bound to key as a string, or "" when the key is
// unbound or not a string.
func (c *Context) String(key string) string {
	if s, ok := c.values[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the value bound to key as a bool, or false when the key is
// unbound or not a bool.
func (c *Context) Bool(key string) bool {
	if b, ok := c.values[key].(bool); ok {
		return b
	}
	return false
}

// StringMap returns the value bound to key as a map[string]string, or nil.
func (c *Context) StringMap(key string) map[string]string {
	if m, ok := c.values[key].(map[string]string); ok {
		return m
	}
	return nil
}

// Len returns the number of bindings. Used by tests to check that template
// resolution does not grow the store.
func (c *Context) Len() int {
	return len(c.values)
}

// placeholderRe matches {name} placeholders. Names follow identifier rules;
// anything else is left verbatim.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Resolve expands every {name} placeholder in template against the union of
// this context and extra, with extra winning on collision. A placeholder
// with no binding yields a *MissingBindingError: a missing path or name is a
// caller configuration bug and must surface, never substitute as empty.
//
// Resolve is pure: it never modifies the context and the same inputs always
// produce the same output.
func (c *Context) Resolve(template string, extra map[string]any) (string, error) {
	var missing *MissingBindingError
	out := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		if v, ok := extra[name]; ok {
			return stringify(v)
		}
		if v, ok := c.values[name]; ok {
			return stringify(v)
		}
		if missing == nil {
			missing = &MissingBindingError{Name: name, Template: template}
		}
		return match
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// MissingBindingError reports a template placeholder with no binding in the
// combined context.
type MissingBindingError struct {
	// Name is the placeholder name without braces.
	Name string
	// Template is the template the placeholder appeared in.
	Template string
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("no binding for {%s} in %q", e.Name, e.Template)
}
