package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectCatalog(t *testing.T) {
	cat := NewEffectCatalog()

	require.NoError(t, cat.Add(&EffectDef{ID: "shield"}))
	require.NoError(t, cat.Add(&EffectDef{ID: "haste"}))

	assertCode(t, cat.Add(&EffectDef{ID: "haste"}), CodeDuplicateEffect)
	assertCode(t, cat.Add(&EffectDef{}), CodeInvalidEffect)
	assertCode(t, cat.Add(nil), CodeInvalidEffect)

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"haste", "shield"}, cat.IDs())

	def, ok := cat.Get("shield")
	require.True(t, ok)
	assert.Equal(t, "shield", def.ID)

	def, ok = cat.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, def)
}

func TestModChange_String(t *testing.T) {
	assert.Equal(t, "add", ModChangeAdd.String())
	assert.Equal(t, "remove", ModChangeRemove.String())
	assert.Equal(t, "update", ModChangeUpdate.String())
	assert.Equal(t, "unknown", ModChange(42).String())
}
