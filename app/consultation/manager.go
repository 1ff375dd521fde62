package consultation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"oracle/app/models/card"
)

// InterpretKind 解读请求类型
type InterpretKind string

const (
	KindInitial  InterpretKind = "initial"   // 首次解读
	KindFollowUp InterpretKind = "follow_up" // 追问
)

// InterpretTask 一次解读请求
// Generation 记录派发时的会话代数，结果回写时校验，
// 会话被重置后迟到的结果直接丢弃
type InterpretTask struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id"`
	Generation uint64        `json:"generation"`
	Kind       InterpretKind `json:"kind"`
	Prompt     string        `json:"prompt"`
}

// Dispatcher 解读请求的派发出口，由队列服务实现
type Dispatcher interface {
	Dispatch(ctx context.Context, task *InterpretTask) error
}

// ReadingRecord 待持久化的解读记录
type ReadingRecord struct {
	Question       string
	Cards          []DrawnCard
	Interpretation string
	Conversation   []Message
}

// ReadingStore 解读记录的持久化出口
// 存储失败由实现方记录日志，核心流程不回滚已展示的解读
type ReadingStore interface {
	CreateReading(ctx context.Context, rec ReadingRecord) (uint64, error)
	UpdateConversation(ctx context.Context, id uint64, conversation []Message) error
}

// Manager 会话注册表，驱动所有阶段转换和抽牌动作
type Manager struct {
	opts       Options
	rng        RNG
	store      ReadingStore
	dispatcher Dispatcher
	sessions   sync.Map // id -> *Session
}

// NewManager 创建会话管理器
func NewManager(store ReadingStore, dispatcher Dispatcher, opts Options) *Manager {
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(time.Now().UnixNano())
	}
	return &Manager{
		opts:       opts,
		rng:        rng,
		store:      store,
		dispatcher: dispatcher,
	}
}

// Create 创建一个处于提问阶段的空会话
func (m *Manager) Create() Snapshot {
	s := &Session{ID: uuid.New().String()}
	s.resetLocked()
	snap := s.snapshotLocked()
	m.sessions.Store(s.ID, s)
	return snap
}

// load 按 ID 取会话
func (m *Manager) load(id string) (*Session, error) {
	v, ok := m.sessions.Load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*Session), nil
}

// Snapshot 获取会话状态快照
func (m *Manager) Snapshot(id string) (Snapshot, error) {
	s, err := m.load(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// SubmitQuestion 提交问题和抽牌张数，开始一次咨询
// 空问题和非法张数在本地拒绝，不改变状态、不触发外部调用
func (m *Manager) SubmitQuestion(id, question string, numberOfCards int) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}
	if !validCardCount(numberOfCards) {
		return ErrInvalidCardCount
	}

	s, err := m.load(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase != PhaseQuestion {
		return ErrWrongPhase
	}

	s.Question = question
	s.NumberOfCards = numberOfCards
	m.enterNextAfterQuestionLocked(s)
	return nil
}

// PointerMove 洗牌阶段的指针移动事件
// 位移低于阈值不计，进度满 100 后多余的手势忽略；
// 非洗牌阶段的移动事件静默丢弃
func (m *Manager) PointerMove(id string, dx, dy float64) error {
	s, err := m.load(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase != PhaseShuffle || s.ShuffleProgress >= ShuffleTarget {
		return nil
	}
	if dx*dx+dy*dy <= MoveThreshold*MoveThreshold {
		return nil
	}

	s.ShuffleProgress += ShuffleStep
	if s.ShuffleProgress > ShuffleTarget {
		s.ShuffleProgress = ShuffleTarget
	}

	// 每次有效手势重排一次展示顺序
	Shuffle(s.Deck, m.rng)

	if s.ShuffleProgress >= ShuffleTarget {
		m.completeShuffleLocked(s)
	}
	return nil
}

// PickCard 选牌阶段抽取卡组中 index 位置的卡牌
// 重复选取和超量选取均为无副作用的空操作
func (m *Manager) PickCard(id string, index int) error {
	s, err := m.load(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase != PhaseSelecting {
		return nil
	}
	if !s.drawLocked(index, m.rng) {
		return nil
	}
	if len(s.DrawnCards) == s.NumberOfCards {
		m.completeSelectionLocked(s)
	}
	return nil
}

// FollowUp 解读阶段提交追问
// 消费者消息先行追加（乐观更新），随后派发解读请求；
// 同一会话同时只允许一个在途请求
func (m *Manager) FollowUp(id, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	s, err := m.load(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase != PhaseInterpreting {
		return ErrWrongPhase
	}
	if s.busy {
		return ErrBusy
	}

	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: content})
	s.busy = true

	prompt := BuildFollowUpPrompt(s.Question, s.DrawnCards, s.Messages)
	m.dispatchLocked(s, KindFollowUp, prompt)
	return nil
}

// Reset 任意阶段回到初始空会话
// 在途的解读请求由 generation 校验作废，不会写入新会话
func (m *Manager) Reset(id string) error {
	s, err := m.load(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return nil
}

// dispatchLocked 异步派发解读请求，调用方需持有 s.mu
// 派发失败等同解读失败，按兜底消息处理
func (m *Manager) dispatchLocked(s *Session, kind InterpretKind, prompt string) {
	task := &InterpretTask{
		ID:         uuid.New().String(),
		SessionID:  s.ID,
		Generation: s.generation,
		Kind:       kind,
		Prompt:     prompt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.dispatcher.Dispatch(ctx, task); err != nil {
			m.ApplyInterpretation(ctx, task.SessionID, task.Generation, task.Kind, "", err)
		}
	}()
}

// ApplyInterpretation 回写一次解读结果
// generation 不匹配说明会话已被重置或推进，结果静默丢弃。
// 解读失败时只追加一条兜底神谕，不创建、不更新持久化记录。
func (m *Manager) ApplyInterpretation(ctx context.Context, sessionID string, generation uint64, kind InterpretKind, result string, callErr error) {
	s, err := m.load(sessionID)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return
	}
	s.busy = false

	if callErr != nil {
		fallback := FallbackInterpretation
		if kind == KindFollowUp {
			fallback = FallbackFollowUp
		}
		s.Messages = append(s.Messages, Message{Role: RoleOracle, Content: fallback})
		return
	}

	s.Messages = append(s.Messages, Message{Role: RoleOracle, Content: result})

	switch kind {
	case KindInitial:
		m.persistReadingLocked(ctx, s)
	case KindFollowUp:
		m.persistConversationLocked(ctx, s)
	}
}

// persistReadingLocked 首次解读成功后创建持久化记录
// 存储失败只丢失历史，不影响内存会话
func (m *Manager) persistReadingLocked(ctx context.Context, s *Session) {
	if m.store == nil {
		return
	}

	rec := ReadingRecord{
		Question:       s.Question,
		Cards:          append([]DrawnCard(nil), s.DrawnCards...),
		Interpretation: s.Messages[len(s.Messages)-1].Content,
		Conversation:   s.conversationLocked(),
	}
	gen := s.generation

	s.mu.Unlock()
	readingID, err := m.store.CreateReading(ctx, rec)
	s.mu.Lock()

	if err != nil {
		return
	}
	if s.generation == gen {
		s.ReadingID = readingID
	}
}

// persistConversationLocked 追问成功后更新持久化的对话记录
func (m *Manager) persistConversationLocked(ctx context.Context, s *Session) {
	if m.store == nil || s.ReadingID == 0 {
		return
	}

	readingID := s.ReadingID
	conversation := s.conversationLocked()

	s.mu.Unlock()
	_ = m.store.UpdateConversation(ctx, readingID, conversation)
	s.mu.Lock()
}

// conversationLocked 持久化用的完整对话：最初的问题 + 全部消息
func (s *Session) conversationLocked() []Message {
	conversation := make([]Message, 0, len(s.Messages)+1)
	conversation = append(conversation, Message{Role: RoleUser, Content: s.Question})
	conversation = append(conversation, s.Messages...)
	return conversation
}

// DeckSize 透传目录张数，方便展示层与校验使用
const DeckSize = card.DeckSize
