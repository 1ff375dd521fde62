package bootstrap

import (
	"oracle/app/consultation"
	"oracle/app/repositories"
	"oracle/pkg/config"
	"oracle/pkg/dify"
	"oracle/pkg/queue"
	"oracle/routes"
)

// SetupOracle 装配咨询核心：会话管理器、仓库、队列出入口
// 返回路由层需要的服务集合，工作器由 SetupQueue 单独启动
func SetupOracle(difyService *dify.DifyService) routes.Services {
	repository := repositories.NewReadingRepository()
	queueService := queue.NewQueueService()

	manager := consultation.NewManager(repository, queueService, consultation.Options{
		RevealEnabled:  config.GetBool("oracle.reveal_enabled"),
		ShuffleEnabled: config.GetBool("oracle.shuffle_enabled"),
		Timing:         consultation.DefaultTiming(),
	})

	return routes.Services{
		Manager:    manager,
		Repository: repository,
		Queue:      queueService,
		Dify:       difyService,
	}
}
