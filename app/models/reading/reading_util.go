package reading

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// DrawnCardRecord 持久化的单张卡牌摘要
// Position 存展示用标签，如 "Position 1"
type DrawnCardRecord struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Reversed bool   `json:"reversed"`
}

// ConversationMessage 持久化的一条对话消息
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CardsDrawn 卡牌摘要数组的 JSON 列类型
type CardsDrawn []DrawnCardRecord

// Value 实现 driver.Valuer 接口
func (c CardsDrawn) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	return json.Marshal(c)
}

// Scan 实现 sql.Scanner 接口
func (c *CardsDrawn) Scan(value interface{}) error {
	if value == nil {
		*c = CardsDrawn{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("invalid type for cards_drawn")
	}

	return json.Unmarshal(bytes, c)
}

// Conversation 对话数组的 JSON 列类型
type Conversation []ConversationMessage

// Value 实现 driver.Valuer 接口
func (c Conversation) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	return json.Marshal(c)
}

// Scan 实现 sql.Scanner 接口
func (c *Conversation) Scan(value interface{}) error {
	if value == nil {
		*c = Conversation{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("invalid type for conversation")
	}

	return json.Unmarshal(bytes, c)
}

// Validate 验证记录
func (r *Reading) Validate() error {
	if r.Question == "" {
		return errors.New("question is required")
	}
	if len(r.CardsDrawn) == 0 {
		return errors.New("cards_drawn cannot be empty")
	}
	if len(r.CardsDrawn) > 7 {
		return errors.New("maximum 7 cards allowed")
	}
	if r.Interpretation == "" {
		return errors.New("interpretation is required")
	}
	return nil
}
