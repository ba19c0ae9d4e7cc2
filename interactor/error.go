package interactor

import (
	"errors"
	"fmt"

	"github.com/hashicorp/errwrap"
)

// Failure is the explicit failure of a context presented as an error
type Failure struct {
	Reason interface{}
}

func (f *Failure) Error() string {
	if f.Reason == nil {
		return "interactor failed"
	}
	return fmt.Sprintf("interactor failed: %v", f.Reason)
}

// ExplicitFailure marks this error as a business rule rejection
func (f *Failure) ExplicitFailure() bool { return true }

// Unwrap the reason when it is an error
func (f *Failure) Unwrap() error {
	if err, ok := f.Reason.(error); ok {
		return err
	}
	return nil
}

// WrappedErrors implements errwrap.Wrapper from https://github.com/hashicorp/errwrap
func (f *Failure) WrappedErrors() []error {
	if err := f.Unwrap(); err != nil {
		return []error{err}
	}
	return nil
}

// PanicError carries the value a step panicked with
type PanicError struct {
	Value interface{}
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("interactor panicked: %v", p.Value)
}

// Unwrap the panic value when it is an error
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}

// RollbackError is returned when the compensating action of a step failed
type RollbackError struct {
	Step  string
	Err   error
	Cause error
}

func (r *RollbackError) Error() string {
	if r.Cause == nil {
		return fmt.Sprintf("rollback of %s failed: %v", r.Step, r.Err)
	}
	return fmt.Sprintf("rollback of %s failed: %v (rolling back because: %v)", r.Step, r.Err, r.Cause)
}

// Unwrap returns the rollback error
func (r *RollbackError) Unwrap() error { return r.Err }

// WrappedErrors implements errwrap.Wrapper from https://github.com/hashicorp/errwrap
func (r *RollbackError) WrappedErrors() []error {
	if r.Cause == nil {
		return []error{r.Err}
	}
	return []error{r.Err, r.Cause}
}

// IsFailure returns true when the error is or wraps an explicit failure
func IsFailure(err error) bool {
	if err == nil {
		return false
	}
	var f *Failure
	return errors.As(err, &f)
}

// IsRollbackError returns true when the error is or contains a failed rollback
func IsRollbackError(err error) bool {
	if err == nil {
		return false
	}
	var r *RollbackError
	return errors.As(err, &r) || errwrap.GetType(err, &RollbackError{}) != nil
}
