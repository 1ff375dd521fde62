// Package reading 神谕解读记录
package reading

import (
	"gorm.io/gorm"

	"oracle/app/models"
)

// Reading 一次完整的咨询：问题、抽取的卡牌、解读和后续对话
type Reading struct {
	models.BaseModel

	Question       string       `gorm:"type:text" json:"question"`       // 消费者的问题
	CardsDrawn     CardsDrawn   `gorm:"type:json" json:"cards_drawn"`    // 抽取的卡牌摘要
	Interpretation string       `gorm:"type:text" json:"interpretation"` // 首次解读全文
	Conversation   Conversation `gorm:"type:json" json:"conversation"`   // 完整对话，追问后更新

	models.CommonTimestampsField // 包含 created_at 和 updated_at
}

// TableName 指定表名
func (Reading) TableName() string {
	return "oracle_readings"
}

// BeforeSave GORM 钩子，入库前校验记录完整性
func (r *Reading) BeforeSave(tx *gorm.DB) error {
	return r.Validate()
}
