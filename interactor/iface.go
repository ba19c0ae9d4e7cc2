package interactor

// An Interactor encapsulates a unit of work.
type Interactor interface {
	Call(*Context) error
}

// A Rollbacker knows how to undo the effects of a previous call
type Rollbacker interface {
	Rollback(*Context) error
}

// Named interactors provide the root for their event names
type Named interface {
	Name() string
}

// CallFunc handler for an interactor
type CallFunc func(*Context) error

// RollbackFunc handler for an interactor
type RollbackFunc func(*Context) error

// Predicate for branching execution left or right
type Predicate func(*Context) bool

// A Decider for determining to roll back or not, it receives either the
// error returned by a step or the *Failure of an explicitly failed context
type Decider func(error) bool
