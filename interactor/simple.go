package interactor

// Zero is the zero value for an interactor and doesn't take any actions
var Zero Interactor

func noop(*Context) error { return nil }

func init() {
	// eagerly create this one
	Zero = Step("<nop>", noop, noop)
}

// StepName represents a step name
type StepName string

// Name method to make it easier to build named steps
func (s StepName) Name() string {
	return string(s)
}

// Step is a simple unit of work built from functions, a nil function does nothing
func Step(name StepName, call CallFunc, rollback RollbackFunc) Interactor {
	return &simpleStep{StepName: name, call: call, rollback: rollback}
}

type simpleStep struct {
	StepName
	call     CallFunc
	rollback RollbackFunc
}

func (s *simpleStep) Call(ctx *Context) error {
	if s.call == nil {
		return nil
	}
	return s.call(ctx)
}

func (s *simpleStep) Rollback(ctx *Context) error {
	if s.rollback == nil {
		return nil
	}
	return s.rollback(ctx)
}

// NameOf returns the name of a named interactor, or an empty string
func NameOf(i Interactor) string {
	if n, ok := i.(Named); ok {
		return n.Name()
	}
	return ""
}

func rollbackOf(i Interactor, ctx *Context) error {
	if r, ok := i.(Rollbacker); ok {
		return r.Rollback(ctx)
	}
	return nil
}
