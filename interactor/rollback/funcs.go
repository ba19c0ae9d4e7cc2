// Package rollback contains the deciders an organizer uses to decide
// whether to roll back the steps it executed.
package rollback

import "errors"

type explicitFailure interface {
	ExplicitFailure() bool
}

// Always roll back, on explicit failures and on errors
func Always(error) bool {
	return true
}

// Never roll back
func Never(error) bool {
	return false
}

// OnFailure rolls back on explicit failures but not on errors
func OnFailure(err error) bool {
	return isFailure(err)
}

// OnError rolls back on errors but not on explicit failures
func OnError(err error) bool {
	return err != nil && !isFailure(err)
}

// Named looks up a decider by its configuration name
func Named(name string) (func(error) bool, bool) {
	switch name {
	case "always", "":
		return Always, true
	case "never":
		return Never, true
	case "on-failure":
		return OnFailure, true
	case "on-error":
		return OnError, true
	default:
		return nil, false
	}
}

func isFailure(err error) bool {
	var f explicitFailure
	return errors.As(err, &f) && f.ExplicitFailure()
}
