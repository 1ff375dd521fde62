// Package queue 解读请求的 Redis 任务队列
//
// 核心状态机派发的解读任务先进入 Redis 列表，由工作器取出后调用
// 解读服务，结果按会话代数回写。队列只负责传递任务，会话状态
// 始终保存在内存中。
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"oracle/app/consultation"
	"oracle/pkg/config"
	"oracle/pkg/redis"
)

// QueueService Redis 队列服务
// 实现 consultation.Dispatcher，支持限流和监控指标收集
type QueueService struct {
	client      *redis.RedisClient
	prefix      string
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueueService 创建新的队列服务实例
func NewQueueService() *QueueService {
	rateLimit := config.GetInt("queue.rate_limit", 1000)
	burst := config.GetInt("queue.rate_burst", rateLimit)

	return &QueueService{
		client:      redis.GetRedis(redis.QueueDB),
		prefix:      config.GetString("redis.queue_prefix", "oracle"),
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		metrics:     NewQueueMetrics(),
	}
}

// Dispatch 实现 consultation.Dispatcher
func (q *QueueService) Dispatch(ctx context.Context, task *consultation.InterpretTask) error {
	return q.PushTask(ctx, task)
}

// PushTask 将解读任务推送到队列
func (q *QueueService) PushTask(ctx context.Context, task *consultation.InterpretTask) error {
	// 应用限流
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordPushLatency(time.Since(start))
	}()

	taskJSON, err := json.Marshal(task)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	key := fmt.Sprintf("%s:tasks", q.prefix)
	if err := q.client.Client.LPush(ctx, key, taskJSON).Err(); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push task: %w", err)
	}

	q.metrics.StartWaitTime(TaskID(task.ID))
	q.metrics.RecordSuccess(OpPush)
	return nil
}

// PopTask 从队列中阻塞获取任务
// 队列为空时最多阻塞 blockTimeout，返回 (nil, nil)
func (q *QueueService) PopTask(ctx context.Context, blockTimeout time.Duration) (*consultation.InterpretTask, error) {
	key := fmt.Sprintf("%s:tasks", q.prefix)

	result, err := q.client.Client.BRPop(ctx, blockTimeout, key).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop task from queue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("invalid result from queue")
	}

	var task consultation.InterpretTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	q.metrics.RecordSuccess(OpPop)
	return &task, nil
}

// Length 当前队列长度
func (q *QueueService) Length(ctx context.Context) (int64, error) {
	key := fmt.Sprintf("%s:tasks", q.prefix)
	return q.client.Client.LLen(ctx, key).Result()
}

// Ping 检查队列服务健康状态
func (q *QueueService) Ping(ctx context.Context) error {
	return q.client.Ping()
}
