package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllReturnsCopy(t *testing.T) {
	deck := All()
	require.Len(t, deck, DeckSize)

	deck[0].Name = "modifié"

	fresh := All()
	assert.Equal(t, "Râ", fresh[0].Name, "目录不应被调用方修改")
}

func TestFind(t *testing.T) {
	c, ok := Find(21)
	require.True(t, ok)
	assert.Equal(t, "Le Scarabée d'Or", c.Name)

	_, ok = Find(-1)
	assert.False(t, ok)
	_, ok = Find(DeckSize)
	assert.False(t, ok)
}
