package routes

import (
	"github.com/gin-gonic/gin"

	"oracle/app/consultation"
	"oracle/app/http/controllers/api/v1/oracle"
	"oracle/app/http/middlewares"
	"oracle/app/repositories"
	"oracle/pkg/dify"
	"oracle/pkg/queue"
)

// 路由限流配置
const (
	// 🌍 全局限流：每小时每IP 30000 请求
	GlobalRateLimit = "30000-H"
	// 🃏 创建会话限流：每小时每IP 100 请求
	CreateConsultationLimit = "100-H"
	// 🤲 洗牌 / 选牌等交互事件限流：每分钟每IP 600 请求
	InteractionLimit = "600-M"
	// 🔍 查询限流：每分钟每IP 300 请求
	QueryLimit = "300-M"
)

// Services 路由层依赖的服务集合，由启动流程装配
type Services struct {
	Manager    *consultation.Manager
	Repository *repositories.ReadingRepository
	Queue      *queue.QueueService
	Dify       *dify.DifyService
}

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine, services Services) {
	v1 := r.Group("/v1")

	v1.Use(
		middlewares.Recovery(),
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	// 🔮 神谕咨询相关路由
	oracleRoutes := v1.Group("/oracle")
	{
		cc := oracle.NewConsultationController(
			services.Manager,
			services.Repository,
			services.Queue,
			services.Dify,
		)

		// 📝 创建咨询会话
		// POST /v1/oracle/consultations
		oracleRoutes.POST("/consultations",
			middlewares.LimitIP(CreateConsultationLimit),
			cc.Store,
		)

		// 📊 获取会话状态快照
		// GET /v1/oracle/consultations/:id
		oracleRoutes.GET("/consultations/:id",
			middlewares.LimitIP(QueryLimit),
			cc.Show,
		)

		// ❓ 提交问题和抽牌张数
		// POST /v1/oracle/consultations/:id/question
		oracleRoutes.POST("/consultations/:id/question",
			middlewares.LimitIP(QueryLimit),
			cc.SubmitQuestion,
		)

		// 🤲 洗牌阶段的指针移动事件，频率较高单独限流
		// POST /v1/oracle/consultations/:id/shuffle
		oracleRoutes.POST("/consultations/:id/shuffle",
			middlewares.LimitIP(InteractionLimit),
			cc.Shuffle,
		)

		// 🃏 选牌
		// POST /v1/oracle/consultations/:id/cards
		oracleRoutes.POST("/consultations/:id/cards",
			middlewares.LimitIP(InteractionLimit),
			cc.PickCard,
		)

		// 💬 解读阶段追问
		// POST /v1/oracle/consultations/:id/messages
		oracleRoutes.POST("/consultations/:id/messages",
			middlewares.LimitIP(QueryLimit),
			cc.FollowUp,
		)

		// 🔄 重置会话
		// POST /v1/oracle/consultations/:id/reset
		oracleRoutes.POST("/consultations/:id/reset",
			middlewares.LimitIP(QueryLimit),
			cc.Reset,
		)

		// 📜 历史解读记录
		// GET /v1/oracle/readings
		oracleRoutes.GET("/readings",
			middlewares.LimitIP(QueryLimit),
			cc.History,
		)

		// 💚 健康检查
		// GET /v1/oracle/health
		oracleRoutes.GET("/health", cc.HealthCheck)
	}
}
