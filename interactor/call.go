package interactor

import "context"

// Call creates a context from the fields and runs the interactor with it.
// The error is only set when the call ended in an error, an explicit failure
// is reported on the returned context.
func Call(parent context.Context, i Interactor, fields Fields) (*Context, error) {
	ctx := NewContext(parent, fields)
	return ctx, Run(ctx, i)
}

// Run the interactor against an existing context.
// A context that failed already is left untouched and the interactor isn't called.
func Run(ctx *Context, i Interactor) error {
	if ctx.Failed() {
		return nil
	}
	if err := i.Call(ctx); err != nil {
		return err
	}
	ctx.succeed()
	return nil
}
