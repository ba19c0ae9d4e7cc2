package interactor_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/casualjim/interactors"
	"github.com/casualjim/interactors/interactor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Fields(t *testing.T) {
	fields := interactor.Fields{"order": "R123", "total": 10}
	ctx := interactor.NewContext(context.Background(), fields)

	ctx.Set("total", 20)
	assert.Equal(t, 10, fields["total"], "caller fields are copied")

	v, ok := ctx.Get("total")
	assert.True(t, ok)
	assert.Equal(t, 20, v)
	assert.Equal(t, "R123", ctx.Value("order"))
	assert.Nil(t, ctx.Value("missing"))

	total, ok := interactor.Lookup[int](ctx, "total")
	assert.True(t, ok)
	assert.Equal(t, 20, total)
	_, ok = interactor.Lookup[string](ctx, "total")
	assert.False(t, ok)

	copied := ctx.Fields()
	copied["order"] = "changed"
	assert.Equal(t, "R123", ctx.Value("order"))

	ctx.Delete("order")
	_, ok = ctx.Get("order")
	assert.False(t, ok)
}

func TestContext_Outcome(t *testing.T) {
	ctx := interactor.NewContext(nil, nil)
	assert.NotNil(t, ctx.Parent())
	assert.NotEmpty(t, ctx.ID())
	assert.Equal(t, interactor.OutcomePending, ctx.Outcome())
	assert.False(t, ctx.Success())
	assert.False(t, ctx.Failed())
	assert.NoError(t, ctx.Failure())

	ctx.Fail("out_of_stock")
	assert.True(t, ctx.Failed())
	assert.Equal(t, "out_of_stock", ctx.Reason())

	ctx.Fail("card_declined")
	assert.Equal(t, "out_of_stock", ctx.Reason(), "first reason is kept")

	require.NoError(t, interactor.Run(ctx, interactor.Zero))
	assert.Equal(t, interactor.OutcomeFailed, ctx.Outcome(), "a failed context stays failed")

	err := ctx.Failure()
	require.Error(t, err)
	assert.True(t, interactor.IsFailure(err))
	assert.EqualError(t, err, "interactor failed: out_of_stock")
}

func TestContext_Logger(t *testing.T) {
	lg := interactors.GoLog(nil, "", 0)
	ctx := interactor.NewContext(interactors.SetLogger(context.Background(), lg), nil)

	entry := ctx.Logger().WithField("k", "v")
	assert.Equal(t, ctx.ID(), entry.Data["invocation"])
}

func TestOutcomes(t *testing.T) {
	var all = []struct {
		Key  interactor.Outcome
		Name string
	}{
		{interactor.OutcomePending, "pending"},
		{interactor.OutcomeSucceeded, "succeeded"},
		{interactor.OutcomeFailed, "failed"},
	}

	for _, v := range all {
		o, err := interactor.OutcomeFromString(v.Name)
		if assert.NoError(t, err) {
			assert.Equal(t, v.Key, o)
		}
		assert.Equal(t, v.Name, v.Key.String())
		b, _ := json.Marshal(v.Key)
		assert.Equal(t, fmt.Sprintf("%q", v.Name), string(b))
		var k interactor.Outcome
		require.NoError(t, json.Unmarshal(b, &k))
		assert.Equal(t, v.Key, k)
	}

	o, err := interactor.OutcomeFromString("blah")
	if assert.Error(t, err) {
		assert.Equal(t, interactor.OutcomePending, o)
	}
	var k interactor.Outcome
	assert.Error(t, json.Unmarshal([]byte("\"blah\""), &k))
}
