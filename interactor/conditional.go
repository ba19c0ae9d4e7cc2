package interactor

import "fmt"

// Not inverts the result of a predicate
func Not(pred Predicate) Predicate {
	return func(ctx *Context) bool {
		return !pred(ctx)
	}
}

// If condition for choosing
func If(pred Predicate) PredicateStep {
	return &BranchingStep{
		matches: pred,
	}
}

// PredicateStep is a partial step that exposes the Then branch in an if condition step
type PredicateStep interface {
	Then(Interactor) *BranchingStep
}

// BranchingStep for forking based on a condition.
// if the predicate evaluates to true then the right side will be executed
// if the predicate evaluates to false then the left side will be executed
type BranchingStep struct {
	matches Predicate
	right   Interactor
	left    Interactor
}

// Then step to be executed when the predicate evaluates to true
func (b *BranchingStep) Then(step Interactor) *BranchingStep {
	b.right = step
	return b
}

// Else step to be executed when the predicate evaluates to false
func (b *BranchingStep) Else(step Interactor) *BranchingStep {
	b.left = step
	return b
}

// Name for this step, the name of a branching step is elided
func (b *BranchingStep) Name() string {
	if b.right == nil {
		// people need to have purposely given a nil to the Then method
		// to even get here. The syntax is built up to ensure compilation fails
		// for an incomplete predicate step
		panic("a branching step needs at least a then branch defined")
	}
	if b.left == nil {
		return "~" + NameOf(b.right)
	}
	return fmt.Sprintf("%s|%s", NameOf(b.right), NameOf(b.left))
}

// Call the branch selected by the predicate
func (b *BranchingStep) Call(ctx *Context) error {
	selected := b.left
	if b.matches(ctx) {
		selected = b.right
	}
	if selected == nil {
		return nil
	}

	ctx.remember(b, []Interactor{selected})
	ctx.Logger().WithField("step", b.Name()).Debugf("selected branch %s", NameOf(selected))
	return Run(ctx, selected)
}

// Rollback the branch selected by the last call, if there was one
func (b *BranchingStep) Rollback(ctx *Context) error {
	for _, selected := range ctx.recall(b) {
		if err := rollbackOf(selected, ctx); err != nil {
			return err
		}
	}
	return nil
}
