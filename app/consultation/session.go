// Package consultation 咨询会话状态机与抽牌引擎
//
// 一次咨询从提问开始，经过可选的观牌、洗牌阶段，进入选牌，
// 最终由外部解读服务生成神谕并支持追问。所有状态保存在内存中，
// 只有完成的解读才会落库。
package consultation

import (
	"errors"
	"sync"
	"time"

	"oracle/app/models/card"
)

// Phase 咨询所处阶段
type Phase string

const (
	PhaseQuestion     Phase = "question"     // 等待提问
	PhaseReveal       Phase = "reveal"       // 观牌倒计时
	PhaseShuffle      Phase = "shuffle"      // 手势洗牌
	PhaseSelecting    Phase = "selecting"    // 选牌
	PhaseInterpreting Phase = "interpreting" // 解读与追问
)

// Role 对话角色，封闭枚举
type Role string

const (
	RoleUser   Role = "user"
	RoleOracle Role = "oracle"
)

// Message 会话中的一条对话消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DrawnCard 已抽取的卡牌
// Reversed 在抽牌时一次性确定，之后不再变化
type DrawnCard struct {
	card.Card
	Reversed bool `json:"reversed"`
	Position int  `json:"position"`
}

// Session 单次咨询的全部运行期状态
// 字段只能在持有 mu 的情况下读写；generation 用于判定
// 迟到的定时器回调和解读结果是否已经过期
type Session struct {
	ID            string
	Question      string
	NumberOfCards int
	Phase         Phase
	Deck          []card.Card
	DrawnCards    []DrawnCard
	Messages      []Message
	ReadingID     uint64 // 已持久化的解读记录 ID，0 表示未保存

	ShuffleProgress int
	RevealRemaining int
	AllRevealed     bool // 选牌完成后的翻牌节奏标记

	generation uint64
	busy       bool // 有解读请求在途
	timer      *time.Timer
	mu         sync.Mutex
}

// Snapshot 会话状态快照，提供给展示层渲染
type Snapshot struct {
	ID              string      `json:"id"`
	Phase           Phase       `json:"phase"`
	Question        string      `json:"question"`
	NumberOfCards   int         `json:"number_of_cards"`
	Deck            []card.Card `json:"deck"`
	DrawnCards      []DrawnCard `json:"drawn_cards"`
	Messages        []Message   `json:"messages"`
	ShuffleProgress int         `json:"shuffle_progress"`
	RevealRemaining int         `json:"reveal_remaining"`
	AllRevealed     bool        `json:"all_revealed"`
	Interpreting    bool        `json:"interpreting"`
	ReadingID       uint64      `json:"reading_id,omitempty"`
}

var (
	ErrSessionNotFound  = errors.New("consultation: session not found")
	ErrEmptyQuestion    = errors.New("consultation: question must not be empty")
	ErrInvalidCardCount = errors.New("consultation: number of cards must be 1, 3, 5 or 7")
	ErrWrongPhase       = errors.New("consultation: operation not allowed in current phase")
	ErrBusy             = errors.New("consultation: an interpretation request is already in flight")
	ErrEmptyMessage     = errors.New("consultation: message must not be empty")
)

// validCardCount 抽牌张数只允许 1/3/5/7
func validCardCount(n int) bool {
	switch n {
	case 1, 3, 5, 7:
		return true
	}
	return false
}

// hasDrawn 判断某张卡是否已被抽取
func (s *Session) hasDrawn(id int) bool {
	for _, d := range s.DrawnCards {
		if d.ID == id {
			return true
		}
	}
	return false
}

// stopTimerLocked 取消当前阶段挂起的定时器，调用方需持有 mu
func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// resetLocked 将会话恢复为初始空会话，调用方需持有 mu
// generation 递增保证在途的定时器和解读结果全部作废
func (s *Session) resetLocked() {
	s.stopTimerLocked()
	s.generation++
	s.Question = ""
	s.NumberOfCards = 0
	s.Phase = PhaseQuestion
	s.Deck = card.All()
	s.DrawnCards = []DrawnCard{}
	s.Messages = []Message{}
	s.ReadingID = 0
	s.ShuffleProgress = 0
	s.RevealRemaining = 0
	s.AllRevealed = false
	s.busy = false
}

// snapshotLocked 复制会话状态，调用方需持有 mu
func (s *Session) snapshotLocked() Snapshot {
	deck := make([]card.Card, len(s.Deck))
	copy(deck, s.Deck)
	drawn := make([]DrawnCard, len(s.DrawnCards))
	copy(drawn, s.DrawnCards)
	messages := make([]Message, len(s.Messages))
	copy(messages, s.Messages)

	return Snapshot{
		ID:              s.ID,
		Phase:           s.Phase,
		Question:        s.Question,
		NumberOfCards:   s.NumberOfCards,
		Deck:            deck,
		DrawnCards:      drawn,
		Messages:        messages,
		ShuffleProgress: s.ShuffleProgress,
		RevealRemaining: s.RevealRemaining,
		AllRevealed:     s.AllRevealed,
		Interpreting:    s.busy,
		ReadingID:       s.ReadingID,
	}
}
