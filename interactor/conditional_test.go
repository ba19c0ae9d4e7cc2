package interactor_test

import (
	"context"
	"testing"

	"github.com/casualjim/interactors/interactor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isGift(ctx *interactor.Context) bool {
	gift, _ := interactor.Lookup[bool](ctx, "gift")
	return gift
}

func TestBranching_Name(t *testing.T) {
	j := &journal{}
	assert.Equal(t, "~wrap", interactor.If(isGift).Then(j.step("wrap")).Name())
	assert.Equal(t, "wrap|box", interactor.If(isGift).Then(j.step("wrap")).Else(j.step("box")).Name())
	assert.Panics(t, func() { _ = interactor.If(isGift).Then(nil).Name() })
}

func TestBranching_Call(t *testing.T) {
	j := &journal{}
	branch := interactor.If(isGift).Then(j.step("wrap")).Else(j.step("box"))

	_, err := interactor.Call(context.Background(), branch, interactor.Fields{"gift": true})
	require.NoError(t, err)
	_, err = interactor.Call(context.Background(), branch, interactor.Fields{"gift": false})
	require.NoError(t, err)
	assert.Equal(t, []string{"wrap", "box"}, j.calls)

	j = &journal{}
	_, err = interactor.Call(context.Background(), interactor.If(interactor.Not(isGift)).Then(j.step("box")), nil)
	require.NoError(t, err)
	_, err = interactor.Call(context.Background(), interactor.If(isGift).Then(j.step("wrap")), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"box"}, j.calls)
}

func TestBranching_Rollback(t *testing.T) {
	j := &journal{}
	org := interactor.Organize("pack",
		j.step("pick"),
		interactor.If(isGift).Then(j.step("wrap")).Else(j.step("box")),
		j.failing("ship", "no_carrier"),
	)

	ctx, err := interactor.Call(context.Background(), org, interactor.Fields{"gift": true})
	require.NoError(t, err)
	assert.True(t, ctx.Failed())
	assert.Equal(t, []string{"pick", "wrap", "ship"}, j.calls)
	assert.Equal(t, []string{"ship", "wrap", "pick"}, j.rollbacks)
}

func TestBranching_RollbackWithoutCall(t *testing.T) {
	j := &journal{}
	branch := interactor.If(isGift).Then(j.step("wrap"))
	assert.NoError(t, branch.Rollback(interactor.NewContext(nil, nil)))
	assert.Empty(t, j.rollbacks)
}
