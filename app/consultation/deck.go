package consultation

import (
	"math/rand"
	"sync"

	"oracle/app/models/card"
)

// 抽牌规则常量
const (
	// ReversalProbability 每次抽牌独立判定逆位的概率
	ReversalProbability = 0.30
	// ShuffleStep 每次有效洗牌手势增加的进度
	ShuffleStep = 2
	// ShuffleTarget 洗牌完成所需进度
	ShuffleTarget = 100
	// MoveThreshold 触发一次洗牌的最小指针位移
	MoveThreshold = 10.0
)

// RNG 随机源抽象，测试时注入确定性实现
type RNG interface {
	// Intn 返回 [0, n) 区间的随机整数
	Intn(n int) int
	// Float64 返回 [0.0, 1.0) 区间的随机浮点数
	Float64() float64
}

// lockedRand math/rand 的并发安全封装
// 定时器回调和 HTTP 请求可能并发使用同一个随机源
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand 创建一个并发安全的随机源
func NewRand(seed int64) RNG {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Shuffle 对卡组做 Fisher-Yates 均匀洗牌，原地重排
// 只改变展示顺序，不增删卡牌
func Shuffle(deck []card.Card, rng RNG) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// drawLocked 抽取卡组中 index 位置的卡牌，调用方需持有 s.mu
// 重复抽取、超出抽牌上限、非法下标均静默忽略，返回 false
func (s *Session) drawLocked(index int, rng RNG) bool {
	if index < 0 || index >= len(s.Deck) {
		return false
	}
	if len(s.DrawnCards) >= s.NumberOfCards {
		return false
	}

	c := s.Deck[index]
	if s.hasDrawn(c.ID) {
		return false
	}

	s.DrawnCards = append(s.DrawnCards, DrawnCard{
		Card:     c,
		Reversed: rng.Float64() < ReversalProbability,
		Position: len(s.DrawnCards) + 1,
	})
	return true
}
