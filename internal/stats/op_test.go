package stats

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())
}

func TestOpRegistry_Defaults(t *testing.T) {
	r := DefaultOps()

	assert.Equal(t, OpPercentAdd, r.PercentAddID())
	assert.Equal(t,
		[]string{OpAdd, OpPercentAdd, OpPercentMult, OpMult, OpOverride},
		r.IDs(),
		"ids are ordered by priority")

	op, ok := r.Lookup(OpMult)
	require.True(t, ok)
	assert.Equal(t, OpMult, op.ID)
	assert.Equal(t, 40, op.Priority)

	_, ok = r.Lookup("Missing")
	assert.False(t, ok)
}

func TestOpRegistry_Register(t *testing.T) {
	r := DefaultOps()
	double := func(base, _ float64) float64 { return base * 2 }

	assertCode(t, r.Register(OpAdd, 1, double), CodeDuplicateOp)
	assertCode(t, r.Register("", 1, double), CodeInvalidOp)
	assertCode(t, r.Register("Double", 1, nil), CodeInvalidOp)

	require.NoError(t, r.Register("Double", 35, double))
	assert.Equal(t, 42.0, r.Compute("Double", 21, 0))
	assert.Equal(t,
		[]string{OpAdd, OpPercentAdd, OpPercentMult, "Double", OpMult, OpOverride},
		r.IDs())
}

func TestOpRegistry_UnknownOp(t *testing.T) {
	r := DefaultOps()

	assert.Equal(t, 12.5, r.Compute("Missing", 12.5, 100))
	assert.Greater(t, r.Priority("Missing"), r.Priority(OpOverride), "unknown ops sort last")
}

func TestOpRegistry_SortModifiers(t *testing.T) {
	a := newTestArena(t)

	mods := []*Modifier{
		a.NewModifier("x", OpOverride, 1, nil, false),
		a.NewModifier("x", "Custom", 0, nil, false),
		a.NewModifier("x", OpAdd, 1, nil, false),
		a.NewModifier("x", OpMult, 1, nil, false),
		a.NewModifier("x", OpAdd, 2, nil, false),
		a.NewModifier("x", OpPercentAdd, 1, nil, false),
	}

	a.Ops().SortModifiers(mods)

	got := make([]string, len(mods))
	for i, m := range mods {
		got[i] = m.Op
	}
	assert.Equal(t, []string{OpAdd, OpAdd, OpPercentAdd, OpMult, OpOverride, "Custom"}, got)
	assert.Equal(t, 1.0, mods[0].Value, "equal operators keep insertion order")
	assert.Equal(t, 2.0, mods[1].Value)
}
