// Package oracle 咨询会话相关的 API 控制器
package oracle

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"oracle/app/consultation"
	"oracle/app/repositories"
	"oracle/app/requests"
	"oracle/pkg/dify"
	"oracle/pkg/queue"
	"oracle/pkg/response"
)

// ConsultationController 咨询会话控制器
type ConsultationController struct {
	manager      *consultation.Manager
	repo         *repositories.ReadingRepository
	queueService *queue.QueueService
	difyService  *dify.DifyService
}

// NewConsultationController 创建控制器，依赖由启动流程注入
func NewConsultationController(
	manager *consultation.Manager,
	repo *repositories.ReadingRepository,
	queueService *queue.QueueService,
	difyService *dify.DifyService,
) *ConsultationController {
	return &ConsultationController{
		manager:      manager,
		repo:         repo,
		queueService: queueService,
		difyService:  difyService,
	}
}

// Store 创建一个新的咨询会话
func (cc *ConsultationController) Store(c *gin.Context) {
	snapshot := cc.manager.Create()
	response.Created(c, snapshot, "会话已创建")
}

// Show 获取会话状态快照
func (cc *ConsultationController) Show(c *gin.Context) {
	snapshot, err := cc.manager.Snapshot(c.Param("id"))
	if err != nil {
		response.Abort404(c, "会话不存在")
		return
	}
	response.Data(c, snapshot)
}

// SubmitQuestion 提交问题和抽牌张数
func (cc *ConsultationController) SubmitQuestion(c *gin.Context) {
	request, err := requests.ValidateQuestion(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	err = cc.manager.SubmitQuestion(c.Param("id"), request.Question, request.NumberOfCards)
	if err != nil {
		cc.abortWithConsultationError(c, err)
		return
	}

	cc.respondWithSnapshot(c)
}

// Shuffle 洗牌阶段的指针移动事件
func (cc *ConsultationController) Shuffle(c *gin.Context) {
	request, err := requests.ValidateShuffleMove(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	if err := cc.manager.PointerMove(c.Param("id"), request.DeltaX, request.DeltaY); err != nil {
		cc.abortWithConsultationError(c, err)
		return
	}

	cc.respondWithSnapshot(c)
}

// PickCard 选牌阶段抽取一张卡牌
func (cc *ConsultationController) PickCard(c *gin.Context) {
	request, err := requests.ValidatePickCard(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	if err := cc.manager.PickCard(c.Param("id"), request.CardIndex); err != nil {
		cc.abortWithConsultationError(c, err)
		return
	}

	cc.respondWithSnapshot(c)
}

// FollowUp 解读阶段提交追问
func (cc *ConsultationController) FollowUp(c *gin.Context) {
	request, err := requests.ValidateFollowUp(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	if err := cc.manager.FollowUp(c.Param("id"), request.Message); err != nil {
		cc.abortWithConsultationError(c, err)
		return
	}

	cc.respondWithSnapshot(c)
}

// Reset 将会话恢复到初始提问阶段
func (cc *ConsultationController) Reset(c *gin.Context) {
	if err := cc.manager.Reset(c.Param("id")); err != nil {
		cc.abortWithConsultationError(c, err)
		return
	}

	cc.respondWithSnapshot(c)
}

// History 获取已完成的解读历史，按创建时间倒序
func (cc *ConsultationController) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	readings, err := cc.repo.List(c.Request.Context(), limit)
	if err != nil {
		response.Abort500(c, "获取历史记录失败")
		return
	}

	response.Data(c, gin.H{
		"data": readings,
	})
}

// HealthCheck 健康检查端点
func (cc *ConsultationController) HealthCheck(c *gin.Context) {
	// 检查队列所在的 Redis 连接
	if err := cc.queueService.Ping(c.Request.Context()); err != nil {
		response.Abort500(c, "Queue service unavailable")
		return
	}

	// 检查解读服务
	if err := cc.difyService.HealthCheck(c.Request.Context()); err != nil {
		response.Abort500(c, "Interpretation service unavailable")
		return
	}

	response.Data(c, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// respondWithSnapshot 操作成功后统一返回最新会话快照
func (cc *ConsultationController) respondWithSnapshot(c *gin.Context) {
	snapshot, err := cc.manager.Snapshot(c.Param("id"))
	if err != nil {
		response.Abort404(c, "会话不存在")
		return
	}
	response.Data(c, snapshot)
}

// abortWithConsultationError 将核心层错误映射为 HTTP 响应
func (cc *ConsultationController) abortWithConsultationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, consultation.ErrSessionNotFound):
		response.Abort404(c, "会话不存在")
	case errors.Is(err, consultation.ErrBusy):
		response.Abort409(c, "解读正在进行中，请稍后再试")
	case errors.Is(err, consultation.ErrWrongPhase):
		response.Abort400(c, "当前阶段不允许该操作")
	case errors.Is(err, consultation.ErrEmptyQuestion),
		errors.Is(err, consultation.ErrInvalidCardCount),
		errors.Is(err, consultation.ErrEmptyMessage):
		response.BadRequest(c, err, "请求参数验证失败")
	default:
		response.ServerError(c, err)
	}
}
