package consultation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oracle/app/models/card"
)

func TestShuffleKeepsCatalogSet(t *testing.T) {
	deck := card.All()
	Shuffle(deck, NewRand(3))

	require.Len(t, deck, card.DeckSize)

	seen := make(map[int]bool, card.DeckSize)
	for _, c := range deck {
		seen[c.ID] = true
	}
	assert.Len(t, seen, card.DeckSize, "洗牌不应增删卡牌")
}

func TestShuffleVariesFirstCard(t *testing.T) {
	rng := NewRand(5)
	deck := card.All()

	first := make(map[int]bool)
	for i := 0; i < 500; i++ {
		Shuffle(deck, rng)
		first[deck[0].ID] = true
	}

	// 均匀洗牌下 500 次后首位卡牌应覆盖绝大多数卡组
	assert.GreaterOrEqual(t, len(first), 20)
}

func TestDrawRules(t *testing.T) {
	s := &Session{NumberOfCards: 2, Deck: card.All()}
	rng := NewRand(1)

	assert.False(t, s.drawLocked(-1, rng), "负数下标应忽略")
	assert.False(t, s.drawLocked(card.DeckSize, rng), "越界下标应忽略")

	require.True(t, s.drawLocked(0, rng))
	assert.False(t, s.drawLocked(0, rng), "重复抽取应忽略")

	require.True(t, s.drawLocked(1, rng))
	assert.False(t, s.drawLocked(2, rng), "超出张数上限应忽略")

	require.Len(t, s.DrawnCards, 2)
	assert.Equal(t, 1, s.DrawnCards[0].Position)
	assert.Equal(t, 2, s.DrawnCards[1].Position)
	assert.Equal(t, "Râ", s.DrawnCards[0].Name)
	assert.Equal(t, "Isis", s.DrawnCards[1].Name)
}

func TestDrawReversalRate(t *testing.T) {
	rng := NewRand(7)
	s := &Session{NumberOfCards: 1, Deck: card.All()}

	reversed := 0
	const draws = 2000
	for i := 0; i < draws; i++ {
		s.DrawnCards = nil
		require.True(t, s.drawLocked(0, rng))
		if s.DrawnCards[0].Reversed {
			reversed++
		}
	}

	// 逆位概率 0.30，允许正常的统计波动
	assert.Greater(t, reversed, 520)
	assert.Less(t, reversed, 680)
}
