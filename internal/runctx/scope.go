package runctx

// Stack is the single owner of the current Context for one invocation.
// Overlays pushed with Scoped compose additively and unwind last-in
// first-out. The Stack is not safe for concurrent use; tenper runs one
// lifecycle operation at a time, strictly sequentially.
type Stack struct {
	frames []*Context
}

// NewStack creates a Stack whose bottom frame is base. The base frame is
// never popped; it lives until the process exits.
func NewStack(base *Context) *Stack {
	return &Stack{frames: []*Context{base}}
}

// Current returns the Context on top of the stack.
func (s *Stack) Current() *Context {
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of frames, including the base.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Scoped pushes an overlay of the current context merged with overrides,
// runs fn with it, and pops the overlay when fn ends. The pop is deferred,
// so the previous context is restored on every exit path: normal return,
// error return, and panics propagating through fn.
func (s *Stack) Scoped(overrides map[string]any, fn func(*Context) error) error {
	s.frames = append(s.frames, s.Current().With(overrides))
	defer func() {
		s.frames = s.frames[:len(s.frames)-1]
	}()
	return fn(s.Current())
}
