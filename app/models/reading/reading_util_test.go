package reading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReading() *Reading {
	return &Reading{
		Question: "Quel est mon avenir ?",
		CardsDrawn: CardsDrawn{
			{Name: "Râ", Position: "Position 1", Reversed: false},
		},
		Interpretation: "Les dieux sourient.",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validReading().Validate())

	r := validReading()
	r.Question = ""
	assert.Error(t, r.Validate())

	r = validReading()
	r.CardsDrawn = nil
	assert.Error(t, r.Validate())

	r = validReading()
	r.CardsDrawn = make(CardsDrawn, 8)
	assert.Error(t, r.Validate())

	r = validReading()
	r.Interpretation = ""
	assert.Error(t, r.Validate())
}

func TestJSONColumnDefaults(t *testing.T) {
	// 空集合入库存 "[]" 而不是 NULL
	v, err := CardsDrawn{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = Conversation{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var c CardsDrawn
	require.NoError(t, c.Scan(nil))
	assert.Empty(t, c)

	var conv Conversation
	require.NoError(t, conv.Scan([]byte(`[{"role":"user","content":"Question"}]`)))
	require.Len(t, conv, 1)
	assert.Equal(t, "user", conv[0].Role)
}
