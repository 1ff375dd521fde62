package consultation

import "time"

// Timing 各阶段的节奏参数，测试时可以整体缩短
type Timing struct {
	RevealTicks      int           // 观牌倒计时的刻度数
	TickInterval     time.Duration // 每个刻度的时长
	FlipDelay        time.Duration // 倒计时结束后的翻牌过渡
	SettleDelay      time.Duration // 洗牌完成后的归位延迟
	CompleteDelay    time.Duration // 归位后进入选牌前的停顿
	StaggerDelay     time.Duration // 选满后逐张翻开前的停顿
	FinalRevealDelay time.Duration // 翻开后进入解读前的停顿
}

// DefaultTiming 线上节奏
func DefaultTiming() Timing {
	return Timing{
		RevealTicks:      30,
		TickInterval:     time.Second,
		FlipDelay:        1500 * time.Millisecond,
		SettleDelay:      500 * time.Millisecond,
		CompleteDelay:    800 * time.Millisecond,
		StaggerDelay:     500 * time.Millisecond,
		FinalRevealDelay: 1500 * time.Millisecond,
	}
}

// Options 会话行为配置
// 观牌和洗牌为可选子阶段，都关闭时提问后直接进入选牌
type Options struct {
	RevealEnabled  bool
	ShuffleEnabled bool
	Timing         Timing
	Rand           RNG
}

// schedule 注册一个属于当前阶段的一次性定时器
// 回调执行时持有 s.mu；generation 不匹配说明会话已经推进或重置，
// 迟到的回调直接作废，不会改动后续阶段的状态
func (m *Manager) schedule(s *Session, gen uint64, d time.Duration, fn func(s *Session)) {
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			return
		}
		fn(s)
	})
}

// enterNextAfterQuestionLocked 提问完成后进入第一个启用的子阶段
func (m *Manager) enterNextAfterQuestionLocked(s *Session) {
	switch {
	case m.opts.RevealEnabled:
		m.enterRevealLocked(s)
	case m.opts.ShuffleEnabled:
		m.enterShuffleLocked(s)
	default:
		m.enterSelectingLocked(s)
	}
}

// enterRevealLocked 进入观牌阶段并启动倒计时
func (m *Manager) enterRevealLocked(s *Session) {
	s.generation++
	s.Phase = PhaseReveal
	s.RevealRemaining = m.opts.Timing.RevealTicks
	m.scheduleRevealTickLocked(s)
}

func (m *Manager) scheduleRevealTickLocked(s *Session) {
	gen := s.generation
	m.schedule(s, gen, m.opts.Timing.TickInterval, func(s *Session) {
		s.RevealRemaining--
		if s.RevealRemaining > 0 {
			m.scheduleRevealTickLocked(s)
			return
		}
		// 倒计时结束，等待翻牌过渡后推进
		m.schedule(s, gen, m.opts.Timing.FlipDelay, func(s *Session) {
			if m.opts.ShuffleEnabled {
				m.enterShuffleLocked(s)
			} else {
				m.enterSelectingLocked(s)
			}
		})
	})
}

// enterShuffleLocked 进入洗牌阶段，等待手势输入
func (m *Manager) enterShuffleLocked(s *Session) {
	s.generation++
	s.Phase = PhaseShuffle
	s.ShuffleProgress = 0
}

// completeShuffleLocked 进度满后经过归位和停顿推进到选牌
func (m *Manager) completeShuffleLocked(s *Session) {
	gen := s.generation
	m.schedule(s, gen, m.opts.Timing.SettleDelay, func(s *Session) {
		m.schedule(s, gen, m.opts.Timing.CompleteDelay, func(s *Session) {
			m.enterSelectingLocked(s)
		})
	})
}

// enterSelectingLocked 进入选牌阶段，卡组重新洗牌
func (m *Manager) enterSelectingLocked(s *Session) {
	s.generation++
	s.Phase = PhaseSelecting
	s.AllRevealed = false
	Shuffle(s.Deck, m.rng)
}

// completeSelectionLocked 选满目标张数后按节奏翻牌并进入解读
func (m *Manager) completeSelectionLocked(s *Session) {
	gen := s.generation
	m.schedule(s, gen, m.opts.Timing.StaggerDelay, func(s *Session) {
		s.AllRevealed = true
		m.schedule(s, gen, m.opts.Timing.FinalRevealDelay, func(s *Session) {
			m.enterInterpretingLocked(s)
		})
	})
}

// enterInterpretingLocked 进入解读阶段并派发首次解读请求
// 解读阶段不再自动推进，只能通过重置回到提问
func (m *Manager) enterInterpretingLocked(s *Session) {
	s.generation++
	s.Phase = PhaseInterpreting
	s.busy = true

	prompt := BuildInitialPrompt(s.Question, s.DrawnCards)
	m.dispatchLocked(s, KindInitial, prompt)
}
