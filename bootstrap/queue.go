package bootstrap

import (
	"time"

	"oracle/app/consultation"
	"oracle/pkg/config"
	"oracle/pkg/dify"
	"oracle/pkg/logger"
	"oracle/pkg/queue"
	"oracle/pkg/redis"
)

// SetupQueue 启动队列工作器组
// 解读结果通过会话管理器回写到对应会话
func SetupQueue(queueService *queue.QueueService, difyService *dify.DifyService, manager *consultation.Manager) *queue.Worker {
	if redis.Manager == nil {
		logger.ErrorString("Queue", "Setup", "Redis manager not initialized")
		return nil
	}
	if difyService == nil {
		logger.ErrorString("Queue", "Setup", "Dify service not initialized")
		return nil
	}

	worker := queue.NewWorker(queueService, difyService, manager, queue.WorkerConfig{
		WorkerCount:     config.GetInt("queue.worker_count", 10),
		PopTimeout:      time.Duration(config.GetInt("queue.pop_timeout", 5)) * time.Second,
		TaskTimeout:     time.Duration(config.GetInt("queue.task_timeout", 120)) * time.Second,
		ShutdownTimeout: 30 * time.Second,
	})

	worker.Start()

	logger.InfoString("Queue", "Setup", "队列服务启动成功")
	return worker
}
