package consultation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastTiming 把线上节奏压缩到毫秒级，避免拖慢测试
func fastTiming() Timing {
	return Timing{
		RevealTicks:      2,
		TickInterval:     2 * time.Millisecond,
		FlipDelay:        2 * time.Millisecond,
		SettleDelay:      2 * time.Millisecond,
		CompleteDelay:    2 * time.Millisecond,
		StaggerDelay:     2 * time.Millisecond,
		FinalRevealDelay: 2 * time.Millisecond,
	}
}

func TestQuestionAdvancesDirectlyToSelecting(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeDispatcher{}, Options{Rand: &identityRNG{}})

	id := m.Create().ID
	require.NoError(t, m.SubmitQuestion(id, "Question", 3))

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	// 观牌和洗牌都关闭时直接进入选牌
	assert.Equal(t, PhaseSelecting, snap.Phase)
}

func TestRevealCountdownAdvancesToSelecting(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeDispatcher{}, Options{
		RevealEnabled: true,
		Timing:        fastTiming(),
		Rand:          &identityRNG{},
	})

	id := m.Create().ID
	require.NoError(t, m.SubmitQuestion(id, "Question", 3))

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseReveal, snap.Phase)
	assert.Equal(t, 2, snap.RevealRemaining)

	waitPhase(t, m, id, PhaseSelecting)
}

func TestRevealAdvancesToShuffleWhenEnabled(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeDispatcher{}, Options{
		RevealEnabled:  true,
		ShuffleEnabled: true,
		Timing:         fastTiming(),
		Rand:           &identityRNG{},
	})

	id := m.Create().ID
	require.NoError(t, m.SubmitQuestion(id, "Question", 3))

	snap := waitPhase(t, m, id, PhaseShuffle)
	assert.Zero(t, snap.ShuffleProgress)
}

func TestShuffleGestureProgress(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeDispatcher{}, Options{
		ShuffleEnabled: true,
		Timing:         fastTiming(),
		Rand:           &identityRNG{},
	})

	id := m.Create().ID
	require.NoError(t, m.SubmitQuestion(id, "Question", 3))
	waitPhase(t, m, id, PhaseShuffle)

	// 位移低于阈值的抖动不计入进度
	require.NoError(t, m.PointerMove(id, 3, 4))
	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Zero(t, snap.ShuffleProgress)

	// 每次有效手势 +2，50 次满 100
	for i := 0; i < 49; i++ {
		require.NoError(t, m.PointerMove(id, 20, 20))
	}
	snap, err = m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 98, snap.ShuffleProgress)

	require.NoError(t, m.PointerMove(id, 20, 20))
	snap, err = m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, ShuffleTarget, snap.ShuffleProgress)

	// 进度满后多余的手势忽略
	require.NoError(t, m.PointerMove(id, 20, 20))

	waitPhase(t, m, id, PhaseSelecting)
}

func TestPointerMoveOutsideShuffleIsNoOp(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeDispatcher{}, Options{Rand: &identityRNG{}})

	id := m.Create().ID
	require.NoError(t, m.PointerMove(id, 50, 50))

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseQuestion, snap.Phase)
	assert.Zero(t, snap.ShuffleProgress)
}

func TestResetCancelsPendingCountdown(t *testing.T) {
	timing := fastTiming()
	timing.RevealTicks = 3
	timing.TickInterval = 30 * time.Millisecond

	m := NewManager(newFakeStore(), &fakeDispatcher{}, Options{
		RevealEnabled: true,
		Timing:        timing,
		Rand:          &identityRNG{},
	})

	id := m.Create().ID
	require.NoError(t, m.SubmitQuestion(id, "Question", 3))
	require.NoError(t, m.Reset(id))

	// 等待足够久，被取消的倒计时若仍存活必然已推进阶段
	time.Sleep(200 * time.Millisecond)

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseQuestion, snap.Phase)
	assert.Empty(t, snap.Question)
	assert.Zero(t, snap.RevealRemaining)
}

func TestResetFromEveryPhase(t *testing.T) {
	d := &fakeDispatcher{}
	m := NewManager(newFakeStore(), d, Options{Rand: &identityRNG{}})

	id, _ := startInterpreting(t, m, d)
	require.NoError(t, m.Reset(id))

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseQuestion, snap.Phase)
	assert.Len(t, snap.Deck, DeckSize)

	// 重置后可以立刻开始新的咨询
	require.NoError(t, m.SubmitQuestion(id, "Nouvelle question", 1))
	waitPhase(t, m, id, PhaseSelecting)
}
