package consultation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oracle/app/models/card"
)

func drawnForTest(t *testing.T) []DrawnCard {
	t.Helper()
	ra, ok := card.Find(0)
	require.True(t, ok)
	isis, ok := card.Find(1)
	require.True(t, ok)

	return []DrawnCard{
		{Card: ra, Reversed: false, Position: 1},
		{Card: isis, Reversed: true, Position: 2},
	}
}

func TestBuildInitialPrompt(t *testing.T) {
	prompt := BuildInitialPrompt("Quel est mon avenir ?", drawnForTest(t))

	assert.Contains(t, prompt, `Question du consultant: "Quel est mon avenir ?"`)
	assert.Contains(t, prompt, "Position 1: Râ (Dieu Soleil) - Droite - Signification: Puissance, vie, création")
	assert.Contains(t, prompt, "Position 2: Isis (Déesse de la Magie) - Inversée - Signification: Magie, protection, sagesse")
}

func TestBuildFollowUpPrompt(t *testing.T) {
	messages := []Message{
		{Role: RoleOracle, Content: "Bienvenue, voyageur."},
		{Role: RoleUser, Content: "Et l'amour ?"},
	}

	prompt := BuildFollowUpPrompt("Quel est mon avenir ?", drawnForTest(t), messages)

	assert.Contains(t, prompt, `Question initiale: "Quel est mon avenir ?"`)
	assert.Contains(t, prompt, "Cartes tirées: Râ (Droite), Isis (Inversée)")

	// 对话必须按时间顺序呈现，新追问在最后
	oracleAt := strings.Index(prompt, "Oracle: Bienvenue, voyageur.")
	userAt := strings.Index(prompt, "Consultant: Et l'amour ?")
	require.NotEqual(t, -1, oracleAt)
	require.NotEqual(t, -1, userAt)
	assert.Less(t, oracleAt, userAt)
}

func TestTranscript(t *testing.T) {
	messages := []Message{
		{Role: RoleOracle, Content: "A"},
		{Role: RoleUser, Content: "B"},
	}

	transcript := Transcript(messages)
	assert.Equal(t, "Oracle: A\n\nConsultant: B", transcript)
	assert.True(t, strings.HasSuffix(transcript, "Consultant: B"))
}
