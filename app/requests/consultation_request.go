package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"

	"oracle/app/models/card"
)

// QuestionRequest 提交问题的请求体
type QuestionRequest struct {
	Question      string `json:"question" valid:"required"`
	NumberOfCards int    `json:"number_of_cards" valid:"required"`
}

// ShuffleMoveRequest 洗牌阶段的指针移动增量
type ShuffleMoveRequest struct {
	DeltaX float64 `json:"dx"`
	DeltaY float64 `json:"dy"`
}

// PickCardRequest 选牌请求体
type PickCardRequest struct {
	CardIndex int `json:"card_index"`
}

// FollowUpRequest 追问请求体
type FollowUpRequest struct {
	Message string `json:"message" valid:"required"`
}

// ValidateQuestion 验证提交问题的请求
func ValidateQuestion(c *gin.Context) (*QuestionRequest, error) {
	var req QuestionRequest

	// 1. 首先绑定 JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	// 2. 验证规则
	rules := govalidator.MapData{
		"question":        []string{"required", "min:1"},
		"number_of_cards": []string{"required"},
	}

	// 3. 验证消息
	messages := govalidator.MapData{
		"question": []string{
			"required:问题不能为空",
			"min:问题长度不能小于 1 个字符",
		},
		"number_of_cards": []string{
			"required:抽牌数量不能为空",
		},
	}

	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	// 4. 抽牌数量只允许 1、3、5、7
	switch req.NumberOfCards {
	case 1, 3, 5, 7:
	default:
		return nil, fmt.Errorf("无效的抽牌数量: %d，只允许 1、3、5、7", req.NumberOfCards)
	}

	return &req, nil
}

// ValidateShuffleMove 验证洗牌移动请求
// 移动增量没有取值限制，只需要请求体是合法的 JSON
func ValidateShuffleMove(c *gin.Context) (*ShuffleMoveRequest, error) {
	var req ShuffleMoveRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	return &req, nil
}

// ValidatePickCard 验证选牌请求
func ValidatePickCard(c *gin.Context) (*PickCardRequest, error) {
	var req PickCardRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	// 卡牌下标对应洗好的 22 张牌
	if req.CardIndex < 0 || req.CardIndex >= card.DeckSize {
		return nil, fmt.Errorf("无效的卡牌下标: %d", req.CardIndex)
	}

	return &req, nil
}

// ValidateFollowUp 验证追问请求
func ValidateFollowUp(c *gin.Context) (*FollowUpRequest, error) {
	var req FollowUpRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	rules := govalidator.MapData{
		"message": []string{"required", "min:1"},
	}

	messages := govalidator.MapData{
		"message": []string{
			"required:追问内容不能为空",
			"min:追问内容长度不能小于 1 个字符",
		},
	}

	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	return &req, nil
}
