package runctx

import (
	"errors"
	"fmt"
	"testing"
)

func TestWithDoesNotMutateBase(t *testing.T) {
	base := New(map[string]any{"a": "1", "b": "2"})
	overlay := base.With(map[string]any{"b": "3", "c": "4"})

	if got := base.String("b"); got != "2" {
		t.Errorf("base b = %q, want %q", got, "2")
	}
	if _, ok := base.Value("c"); ok {
		t.Error("base should not have key c")
	}
	if got := overlay.String("b"); got != "3" {
		t.Errorf("overlay b = %q, want %q", got, "3")
	}
	if got := overlay.String("c"); got != "4" {
		t.Errorf("overlay c = %q, want %q", got, "4")
	}
}

func TestResolve(t *testing.T) {
	rc := New(map[string]any{
		"session_name": "myproj",
		"tmux_command": "tmux",
		"count":        3,
		"enabled":      true,
	})

	tests := []struct {
		name     string
		template string
		extra    map[string]any
		want     string
	}{
		{"no placeholders", "plain text", nil, "plain text"},
		{"single", "{tmux_command}", nil, "tmux"},
		{"two bindings", "{a}-{b}", map[string]any{"a": "x", "b": "y"}, "x-y"},
		{"extra wins over context", "{session_name}", map[string]any{"session_name": "other"}, "other"},
		{"non-string values", "{count} {enabled}", nil, "3 true"},
		{"repeated placeholder", "{session_name}:{session_name}", nil, "myproj:myproj"},
		{"braces without name", "{ }", nil, "{ }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rc.Resolve(tt.template, tt.extra)
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tt.template, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestResolveMissingBinding(t *testing.T) {
	rc := New(map[string]any{"a": "x"})

	_, err := rc.Resolve("{missing}", nil)
	if err == nil {
		t.Fatal("Resolve with unbound placeholder should fail")
	}

	var mbe *MissingBindingError
	if !errors.As(err, &mbe) {
		t.Fatalf("error type = %T, want *MissingBindingError", err)
	}
	if mbe.Name != "missing" {
		t.Errorf("Name = %q, want %q", mbe.Name, "missing")
	}
	if mbe.Template != "{missing}" {
		t.Errorf("Template = %q, want %q", mbe.Template, "{missing}")
	}
}

func TestResolveIsPure(t *testing.T) {
	rc := New(map[string]any{"a": "x"})
	before := rc.Len()

	for i := 0; i < 3; i++ {
		got, err := rc.Resolve("{a}-{b}", map[string]any{"b": "y"})
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if got != "x-y" {
			t.Errorf("Resolve = %q, want %q", got, "x-y")
		}
	}

	if rc.Len() != before {
		t.Errorf("Resolve changed store size: %d -> %d", before, rc.Len())
	}
	if _, ok := rc.Value("b"); ok {
		t.Error("extra binding leaked into the context")
	}
}

func TestScopedRestoresOnReturn(t *testing.T) {
	stack := NewStack(New(map[string]any{"a": "base"}))

	err := stack.Scoped(map[string]any{"a": "inner", "b": "new"}, func(rc *Context) error {
		if got := rc.String("a"); got != "inner" {
			t.Errorf("inside scope a = %q, want %q", got, "inner")
		}
		if got := stack.Current().String("b"); got != "new" {
			t.Errorf("inside scope current b = %q, want %q", got, "new")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Scoped returned error: %v", err)
	}

	if got := stack.Current().String("a"); got != "base" {
		t.Errorf("after scope a = %q, want %q", got, "base")
	}
	if _, ok := stack.Current().Value("b"); ok {
		t.Error("after scope b should not be bound")
	}
}

func TestScopedRestoresOnError(t *testing.T) {
	stack := NewStack(New(map[string]any{"a": "base"}))
	boom := errors.New("boom")

	err := stack.Scoped(map[string]any{"a": "inner"}, func(rc *Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Scoped error = %v, want %v", err, boom)
	}

	if got := stack.Current().String("a"); got != "base" {
		t.Errorf("after failing scope a = %q, want %q", got, "base")
	}
	if stack.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", stack.Depth())
	}
}

func TestScopedRestoresOnPanic(t *testing.T) {
	stack := NewStack(New(map[string]any{"a": "base"}))

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = stack.Scoped(map[string]any{"a": "inner"}, func(rc *Context) error {
			panic("unwinding")
		})
	}()

	if got := stack.Current().String("a"); got != "base" {
		t.Errorf("after panicking scope a = %q, want %q", got, "base")
	}
	if stack.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", stack.Depth())
	}
}

func TestScopedNesting(t *testing.T) {
	stack := NewStack(New(map[string]any{"a": "base"}))

	err := stack.Scoped(map[string]any{"o1": "1"}, func(outer *Context) error {
		innerErr := stack.Scoped(map[string]any{"o2": "2"}, func(inner *Context) error {
			if got := inner.String("o1"); got != "1" {
				t.Errorf("inner o1 = %q, want %q", got, "1")
			}
			if got := inner.String("o2"); got != "2" {
				t.Errorf("inner o2 = %q, want %q", got, "2")
			}
			return nil
		})
		if innerErr != nil {
			return innerErr
		}

		// Keys set only in the inner overlay are gone, outer overlay intact.
		if _, ok := stack.Current().Value("o2"); ok {
			t.Error("o2 visible after inner scope exit")
		}
		if got := stack.Current().String("o1"); got != "1" {
			t.Errorf("outer o1 = %q, want %q", got, "1")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Scoped returned error: %v", err)
	}

	if stack.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", stack.Depth())
	}
}

func TestMissingBindingErrorMessage(t *testing.T) {
	err := &MissingBindingError{Name: "project_root", Template: "cd {project_root}"}
	want := fmt.Sprintf("no binding for {project_root} in %q", "cd {project_root}")
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
