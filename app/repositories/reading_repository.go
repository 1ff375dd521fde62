package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"oracle/app/consultation"
	"oracle/app/models/reading"
	"oracle/pkg/database"
	"oracle/pkg/logger"
)

// ReadingRepository 解读记录仓库
// 同时实现 consultation.ReadingStore，存储失败记录日志后向上返回，
// 由核心流程决定降级（解读照常展示，历史不保存）
type ReadingRepository struct {
	db *gorm.DB
}

// NewReadingRepository 创建仓库实例
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{
		db: database.DB,
	}
}

// CreateReading 首次解读完成后落库，返回记录 ID
func (r *ReadingRepository) CreateReading(ctx context.Context, rec consultation.ReadingRecord) (uint64, error) {
	model := &reading.Reading{
		Question:       rec.Question,
		CardsDrawn:     toCardRecords(rec.Cards),
		Interpretation: rec.Interpretation,
		Conversation:   toConversation(rec.Conversation),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		logger.ErrorString("Reading", "Create", err.Error())
		return 0, err
	}
	return model.ID, nil
}

// UpdateConversation 追问成功后更新对话字段
func (r *ReadingRepository) UpdateConversation(ctx context.Context, id uint64, conversation []consultation.Message) error {
	err := r.db.WithContext(ctx).
		Model(&reading.Reading{}).
		Where("id = ?", id).
		Update("conversation", toConversation(conversation)).Error

	if err != nil {
		logger.ErrorString("Reading", "UpdateConversation", err.Error())
	}
	return err
}

// List 获取历史记录，按创建时间倒序
func (r *ReadingRepository) List(ctx context.Context, limit int) ([]reading.Reading, error) {
	var readings []reading.Reading

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&readings).Error

	return readings, err
}

// toCardRecords 卡牌摘要转为持久化结构，位置存展示标签
func toCardRecords(cards []consultation.DrawnCard) reading.CardsDrawn {
	records := make(reading.CardsDrawn, len(cards))
	for i, c := range cards {
		records[i] = reading.DrawnCardRecord{
			Name:     c.Name,
			Position: fmt.Sprintf("Position %d", c.Position),
			Reversed: c.Reversed,
		}
	}
	return records
}

// toConversation 对话消息转为持久化结构
func toConversation(messages []consultation.Message) reading.Conversation {
	conversation := make(reading.Conversation, len(messages))
	for i, m := range messages {
		conversation[i] = reading.ConversationMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return conversation
}
