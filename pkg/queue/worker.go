package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"oracle/app/consultation"
	"oracle/pkg/dify"
	"oracle/pkg/logger"
)

// ResultApplier 解读结果的回写出口，由会话管理器实现
// 失败同样回写（callErr 非空），由核心决定兜底策略
type ResultApplier interface {
	ApplyInterpretation(ctx context.Context, sessionID string, generation uint64, kind consultation.InterpretKind, result string, callErr error)
}

// Worker 队列工作器组
type Worker struct {
	queueService *QueueService
	difyService  *dify.DifyService
	applier      ResultApplier
	stopChan     chan struct{}
	workerCount  int
	metrics      *QueueMetrics
	wg           sync.WaitGroup
	config       WorkerConfig
}

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount     int           // 并发工作器数量
	PopTimeout      time.Duration // 队列为空时的阻塞时长
	TaskTimeout     time.Duration // 单个任务的处理超时
	ShutdownTimeout time.Duration // 关闭超时时间
}

// NewWorker 创建新的工作器组
func NewWorker(qs *QueueService, ds *dify.DifyService, applier ResultApplier, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 10
	}
	if config.PopTimeout <= 0 {
		config.PopTimeout = 5 * time.Second
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = 120 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		queueService: qs,
		difyService:  ds,
		applier:      applier,
		stopChan:     make(chan struct{}),
		workerCount:  config.WorkerCount,
		metrics:      NewQueueMetrics(),
		config:       config,
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// startWorker 启动单个工作器
func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("Worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Worker", "Stop", fmt.Sprintf("Worker %d stopping", id))
			return
		default:
			if err := w.processNextTask(); err != nil {
				logger.ErrorString("Worker", "Error", fmt.Sprintf("Worker %d error: %v", id, err))
				time.Sleep(time.Second) // 错误恢复延迟
			}
		}
	}
}

// processNextTask 取出并处理下一个任务
func (w *Worker) processNextTask() error {
	ctx := context.Background()

	task, err := w.queueService.PopTask(ctx, w.config.PopTimeout)
	if err != nil {
		return fmt.Errorf("pop task error: %w", err)
	}
	if task == nil {
		// 队列为空
		return nil
	}

	return w.handleTask(ctx, task)
}

// handleTask 处理单个解读任务
// 解读服务的调用结果（无论成败）都交回会话管理器，
// 由状态机决定追加神谕还是兜底消息
func (w *Worker) handleTask(ctx context.Context, task *consultation.InterpretTask) error {
	w.metrics.EndWaitTime(TaskID(task.ID))

	start := time.Now()
	defer func() {
		w.metrics.RecordProcessLatency(time.Since(start))
	}()

	taskCtx, cancel := context.WithTimeout(ctx, w.config.TaskTimeout)
	defer cancel()

	result, err := w.difyService.Interpret(taskCtx, task.Prompt)
	if err != nil {
		w.metrics.RecordError(OpProcess)
		logger.ErrorString("Worker", "Interpret", fmt.Sprintf(
			"任务 %s 解读失败: %v", task.ID, err))
	} else {
		w.metrics.RecordSuccess(OpProcess)
	}

	w.applier.ApplyInterpretation(ctx, task.SessionID, task.Generation, task.Kind, result, err)
	return nil
}

// Stop 优雅关闭工作器组
func (w *Worker) Stop() {
	close(w.stopChan)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "All workers stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("Worker", "Stop", "Worker shutdown timed out")
	}
}
