package consultation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityRNG 让洗牌成为恒等排列，逆位由预置序列决定，
// 测试可以精确断言抽到的卡牌和方位
type identityRNG struct {
	mu     sync.Mutex
	floats []float64
}

func (r *identityRNG) Intn(n int) int { return n - 1 }

func (r *identityRNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0.9
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type fakeDispatcher struct {
	mu    sync.Mutex
	tasks []*InterpretTask
	err   error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, task *InterpretTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *fakeDispatcher) last() *InterpretTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[len(f.tasks)-1]
}

type fakeStore struct {
	mu      sync.Mutex
	nextID  uint64
	created []ReadingRecord
	updates map[uint64][]Message
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{updates: make(map[uint64][]Message)}
}

func (f *fakeStore) CreateReading(ctx context.Context, rec ReadingRecord) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.created = append(f.created, rec)
	return f.nextID, nil
}

func (f *fakeStore) UpdateConversation(ctx context.Context, id uint64, conversation []Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updates[id] = conversation
	return nil
}

func (f *fakeStore) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

// waitPhase 轮询会话直到进入目标阶段
func waitPhase(t *testing.T, m *Manager, id string, phase Phase) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		var err error
		snap, err = m.Snapshot(id)
		return err == nil && snap.Phase == phase
	}, 2*time.Second, 5*time.Millisecond, "会话未进入 %s 阶段", phase)
	return snap
}

// waitDispatch 等待第 n 个解读任务被派发
func waitDispatch(t *testing.T, d *fakeDispatcher, n int) *InterpretTask {
	t.Helper()
	require.Eventually(t, func() bool {
		return d.count() >= n
	}, 2*time.Second, 5*time.Millisecond)
	return d.last()
}

// startInterpreting 走完提问和选牌，停在解读派发后的在途状态
func startInterpreting(t *testing.T, m *Manager, d *fakeDispatcher) (string, *InterpretTask) {
	t.Helper()
	id := m.Create().ID

	require.NoError(t, m.SubmitQuestion(id, "Quel est mon avenir ?", 3))
	waitPhase(t, m, id, PhaseSelecting)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.PickCard(id, i))
	}
	waitPhase(t, m, id, PhaseInterpreting)

	return id, waitDispatch(t, d, 1)
}

func TestCreateStartsAtQuestionPhase(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeDispatcher{}, Options{Rand: &identityRNG{}})

	snap := m.Create()
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, PhaseQuestion, snap.Phase)
	assert.Len(t, snap.Deck, DeckSize)
	assert.Empty(t, snap.DrawnCards)
	assert.Empty(t, snap.Messages)
}

func TestSubmitQuestionValidation(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeDispatcher{}, Options{Rand: &identityRNG{}})
	id := m.Create().ID

	assert.ErrorIs(t, m.SubmitQuestion(id, "   ", 3), ErrEmptyQuestion)
	assert.ErrorIs(t, m.SubmitQuestion(id, "Question", 4), ErrInvalidCardCount)
	assert.ErrorIs(t, m.SubmitQuestion("absent", "Question", 3), ErrSessionNotFound)

	require.NoError(t, m.SubmitQuestion(id, "Question", 3))
	assert.ErrorIs(t, m.SubmitQuestion(id, "Encore", 3), ErrWrongPhase)
}

func TestSelectionDispatchesInitialInterpretation(t *testing.T) {
	d := &fakeDispatcher{}
	rng := &identityRNG{floats: []float64{0.5, 0.1, 0.5}}
	m := NewManager(newFakeStore(), d, Options{Rand: rng})

	id := m.Create().ID
	require.NoError(t, m.SubmitQuestion(id, "Quel est mon avenir ?", 3))
	waitPhase(t, m, id, PhaseSelecting)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.PickCard(id, i))
	}

	snap := waitPhase(t, m, id, PhaseInterpreting)
	require.Len(t, snap.DrawnCards, 3)
	assert.True(t, snap.Interpreting)
	assert.True(t, snap.AllRevealed)

	// 恒等洗牌下卡组保持目录顺序
	assert.Equal(t, "Râ", snap.DrawnCards[0].Name)
	assert.Equal(t, "Isis", snap.DrawnCards[1].Name)
	assert.Equal(t, "Osiris", snap.DrawnCards[2].Name)
	assert.Equal(t, []bool{false, true, false}, []bool{
		snap.DrawnCards[0].Reversed,
		snap.DrawnCards[1].Reversed,
		snap.DrawnCards[2].Reversed,
	})
	for i, c := range snap.DrawnCards {
		assert.Equal(t, i+1, c.Position)
	}

	task := waitDispatch(t, d, 1)
	assert.Equal(t, KindInitial, task.Kind)
	assert.Equal(t, id, task.SessionID)
	assert.Contains(t, task.Prompt, "Position 2: Isis (Déesse de la Magie) - Inversée")
}

func TestPickCardIgnoresDuplicatesAndOverflow(t *testing.T) {
	d := &fakeDispatcher{}
	m := NewManager(newFakeStore(), d, Options{Rand: &identityRNG{}})

	id := m.Create().ID
	require.NoError(t, m.SubmitQuestion(id, "Question", 1))
	waitPhase(t, m, id, PhaseSelecting)

	require.NoError(t, m.PickCard(id, 0))
	// 选满后的点击是无副作用的空操作
	require.NoError(t, m.PickCard(id, 0))
	require.NoError(t, m.PickCard(id, 5))

	snap := waitPhase(t, m, id, PhaseInterpreting)
	assert.Len(t, snap.DrawnCards, 1)
	assert.Equal(t, 1, d.count())
}

func TestApplyInterpretationPersistsReading(t *testing.T) {
	d := &fakeDispatcher{}
	store := newFakeStore()
	m := NewManager(store, d, Options{Rand: &identityRNG{}})

	id, task := startInterpreting(t, m, d)

	m.ApplyInterpretation(context.Background(), id, task.Generation, task.Kind, "Les dieux sourient.", nil)

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.False(t, snap.Interpreting)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, RoleOracle, snap.Messages[0].Role)
	assert.Equal(t, "Les dieux sourient.", snap.Messages[0].Content)
	assert.Equal(t, uint64(1), snap.ReadingID)

	require.Equal(t, 1, store.createdCount())
	rec := store.created[0]
	assert.Equal(t, "Quel est mon avenir ?", rec.Question)
	assert.Len(t, rec.Cards, 3)
	assert.Equal(t, "Les dieux sourient.", rec.Interpretation)
	// 持久化的对话以最初的问题开头
	require.Len(t, rec.Conversation, 2)
	assert.Equal(t, RoleUser, rec.Conversation[0].Role)
	assert.Equal(t, "Quel est mon avenir ?", rec.Conversation[0].Content)
}

func TestDispatchFailureAppendsFallback(t *testing.T) {
	d := &fakeDispatcher{err: assert.AnError}
	store := newFakeStore()
	m := NewManager(store, d, Options{Rand: &identityRNG{}})

	id := m.Create().ID
	require.NoError(t, m.SubmitQuestion(id, "Question", 1))
	waitPhase(t, m, id, PhaseSelecting)
	require.NoError(t, m.PickCard(id, 0))
	waitPhase(t, m, id, PhaseInterpreting)

	require.Eventually(t, func() bool {
		snap, err := m.Snapshot(id)
		return err == nil && len(snap.Messages) == 1 && !snap.Interpreting
	}, 2*time.Second, 5*time.Millisecond)

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, FallbackInterpretation, snap.Messages[0].Content)
	// 兜底消息不落库
	assert.Zero(t, store.createdCount())
	assert.Zero(t, snap.ReadingID)
}

func TestStoreFailureKeepsInterpretation(t *testing.T) {
	d := &fakeDispatcher{}
	store := newFakeStore()
	store.err = assert.AnError
	m := NewManager(store, d, Options{Rand: &identityRNG{}})

	id, task := startInterpreting(t, m, d)
	m.ApplyInterpretation(context.Background(), id, task.Generation, task.Kind, "Réponse", nil)

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	// 存储失败只丢失历史，解读照常展示
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "Réponse", snap.Messages[0].Content)
	assert.Zero(t, snap.ReadingID)
}

func TestFollowUpFlow(t *testing.T) {
	d := &fakeDispatcher{}
	store := newFakeStore()
	m := NewManager(store, d, Options{Rand: &identityRNG{}})

	id, task := startInterpreting(t, m, d)
	m.ApplyInterpretation(context.Background(), id, task.Generation, task.Kind, "Bienvenue.", nil)

	require.NoError(t, m.FollowUp(id, "Et l'amour ?"))

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.True(t, snap.Interpreting)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, RoleUser, snap.Messages[1].Role)

	followUp := waitDispatch(t, d, 2)
	assert.Equal(t, KindFollowUp, followUp.Kind)
	assert.Contains(t, followUp.Prompt, "Consultant: Et l'amour ?")

	m.ApplyInterpretation(context.Background(), id, followUp.Generation, followUp.Kind, "L'amour viendra.", nil)

	snap, err = m.Snapshot(id)
	require.NoError(t, err)
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, "L'amour viendra.", snap.Messages[2].Content)

	store.mu.Lock()
	conversation := store.updates[1]
	store.mu.Unlock()
	// 问题 + 首次解读 + 追问 + 追问解读
	require.Len(t, conversation, 4)
	assert.Equal(t, "Et l'amour ?", conversation[2].Content)
}

func TestFollowUpGuards(t *testing.T) {
	d := &fakeDispatcher{}
	m := NewManager(newFakeStore(), d, Options{Rand: &identityRNG{}})

	id := m.Create().ID
	assert.ErrorIs(t, m.FollowUp(id, "   "), ErrEmptyMessage)
	assert.ErrorIs(t, m.FollowUp(id, "Question"), ErrWrongPhase)

	id, _ = startInterpreting(t, m, d)
	// 首次解读仍在途，追问被拒绝
	assert.ErrorIs(t, m.FollowUp(id, "Trop tôt"), ErrBusy)
}

func TestResetDiscardsLateInterpretation(t *testing.T) {
	d := &fakeDispatcher{}
	store := newFakeStore()
	m := NewManager(store, d, Options{Rand: &identityRNG{}})

	id, task := startInterpreting(t, m, d)

	require.NoError(t, m.Reset(id))

	// 重置前派发的结果已经过期，静默丢弃
	m.ApplyInterpretation(context.Background(), id, task.Generation, task.Kind, "Trop tard.", nil)

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseQuestion, snap.Phase)
	assert.Empty(t, snap.Question)
	assert.Empty(t, snap.Messages)
	assert.Empty(t, snap.DrawnCards)
	assert.False(t, snap.Interpreting)
	assert.Zero(t, store.createdCount())
}
