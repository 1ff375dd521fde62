package dify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"oracle/pkg/logger"
)

// DifyService 实现了与 Dify API 的交互
// 神谕解读对核心来说是一次不透明的远程调用：一段提示词进，一段
// markdown 文本出。服务支持多实例负载均衡、故障转移和自动恢复。
type DifyService struct {
	instances  []*Instance   // Dify API 实例列表
	numRetries int           // 重试次数
	timeout    time.Duration // 请求超时时间
	mu         sync.RWMutex  // 保护实例状态的互斥锁
}

// Instance Dify 实例
type Instance struct {
	URL          string
	APIKey       string
	Health       bool
	Client       *resty.Client
	LastErr      error
	LastUsed     time.Time       // 最后一次成功使用时间
	ErrorCount   int             // 连续错误计数
	RequestCount *RequestCounter // 请求计数器
}

// RequestCounter 请求计数器，用于负载均衡决策
type RequestCounter struct {
	requests []time.Time
	mu       sync.Mutex
}

// NewRequestCounter 创建新的请求计数器
func NewRequestCounter() *RequestCounter {
	return &RequestCounter{
		requests: make([]time.Time, 0, 1000),
	}
}

// AddRequest 记录新请求
func (rc *RequestCounter) AddRequest() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := time.Now()
	// 清理超过1小时的旧记录
	for i, t := range rc.requests {
		if now.Sub(t) <= time.Hour {
			rc.requests = rc.requests[i:]
			break
		}
	}
	rc.requests = append(rc.requests, now)
}

// GetRecentCount 获取最近时间段内的请求数
func (rc *RequestCounter) GetRecentCount(duration time.Duration) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := time.Now()
	count := 0
	for i := len(rc.requests) - 1; i >= 0; i-- {
		if now.Sub(rc.requests[i]) <= duration {
			count++
		} else {
			break
		}
	}
	return count
}

// NewInstance 创建新的 Dify 实例
func NewInstance(url string, apiKey string, timeout time.Duration) *Instance {
	if url == "" || apiKey == "" {
		return nil
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Instance{
		URL:          url,
		APIKey:       apiKey,
		Health:       true,
		Client:       client,
		LastUsed:     time.Now(),
		RequestCount: NewRequestCounter(),
	}
}

// NewDifyService 创建新的 Dify 服务实例
func NewDifyService(config *Config) *DifyService {
	if config == nil {
		return nil
	}

	if len(config.URLs) == 0 || len(config.APIKeys) == 0 {
		return nil
	}

	service := &DifyService{
		instances:  make([]*Instance, 0, len(config.URLs)),
		numRetries: config.MaxRetries,
		timeout:    config.Timeout,
	}
	if service.numRetries <= 0 {
		service.numRetries = 1
	}

	// 初始化所有实例
	for i := 0; i < len(config.URLs) && i < len(config.APIKeys); i++ {
		instance := NewInstance(config.URLs[i], config.APIKeys[i], config.Timeout)
		if instance != nil {
			service.instances = append(service.instances, instance)
		}
	}

	if len(service.instances) == 0 {
		return nil
	}

	return service
}

// Interpret 将构建好的提示词交给 Dify，返回神谕全文
// 跨实例重试，所有实例都失败时返回最后一个错误
func (s *DifyService) Interpret(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	var lastErr error

	for i := 0; i < s.numRetries; i++ {
		instance, err := s.getAvailableInstance()
		if err != nil {
			return "", fmt.Errorf("no available dify instance: %w", err)
		}

		result, err := s.callDifyAPI(ctx, instance, prompt)
		if err != nil {
			s.handleAPIError(instance, err)
			lastErr = err
			logger.ErrorString("Dify", "Error", fmt.Sprintf(
				"请求失败 实例:%s 错误:%v", shortenURL(instance.URL), err))
			continue
		}

		instance.RequestCount.AddRequest()
		logger.InfoString("Dify", "Success", fmt.Sprintf(
			"请求成功 实例:%s 耗时:%v 结果长度:%d",
			shortenURL(instance.URL), time.Since(start), len(result)))

		s.handleAPISuccess(instance)
		return result, nil
	}

	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// callDifyAPI 调用 Dify API
func (s *DifyService) callDifyAPI(ctx context.Context, instance *Instance, prompt string) (string, error) {
	// 解读生成较慢，设置较长的超时时间
	ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	reqBody := DifyRequest{
		Inputs: map[string]string{
			"prompt": prompt,
		},
		ResponseMode: "blocking",
		User:         "oracle-user",
	}

	resp, err := instance.Client.R().
		SetContext(ctx).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", instance.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(fmt.Sprintf("%s/v1/workflows/run", instance.URL))

	if err != nil {
		return "", fmt.Errorf("failed to call dify api: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("dify api returned non-200 status: %d, body: %s",
			resp.StatusCode(), resp.String())
	}

	var difyResp DifyResponse
	if err := json.Unmarshal(resp.Body(), &difyResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal dify response: %w", err)
	}

	if difyResp.Data.Answer == "" {
		return "", errors.New("dify response contains no answer")
	}

	return difyResp.Data.Answer, nil
}

// HealthCheck 检查 Dify 服务健康状态
func (s *DifyService) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lastErr error
	for _, instance := range s.instances {
		if instance.Health {
			return nil
		}
		if instance.LastErr != nil {
			lastErr = instance.LastErr
		}
	}

	if lastErr != nil {
		return fmt.Errorf("no healthy dify instance available: %w", lastErr)
	}
	return errors.New("no healthy dify instance available")
}

// handleAPISuccess 处理 API 调用成功
func (s *DifyService) handleAPISuccess(instance *Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance.Health = true
	instance.ErrorCount = 0
	instance.LastUsed = time.Now()
	instance.LastErr = nil
}

// handleAPIError 处理 API 调用错误
func (s *DifyService) handleAPIError(instance *Instance, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance.ErrorCount++
	instance.LastErr = err

	// 连续错误超过阈值才标记为不健康
	if instance.ErrorCount >= 3 {
		instance.Health = false
		logger.WarnString("Dify", "Instance", fmt.Sprintf(
			"实例 %s 被标记为不健康: 连续 %d 次错误, 最后错误: %v",
			instance.URL, instance.ErrorCount, err))
	}
}

// getAvailableInstance 按最近负载选择可用实例
func (s *DifyService) getAvailableInstance() (*Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		selected *Instance
		minLoad  int
	)

	for _, instance := range s.instances {
		if !instance.Health {
			continue
		}
		load := instance.RequestCount.GetRecentCount(5 * time.Minute)
		if selected == nil || load < minLoad {
			selected = instance
			minLoad = load
		}
	}

	if selected != nil {
		return selected, nil
	}

	// 没有健康实例时重置所有实例状态，给一次恢复机会
	if len(s.instances) > 0 {
		s.resetAllInstances()
		return s.instances[0], nil
	}

	return nil, errors.New("no dify instances available")
}

// resetAllInstances 重置所有实例状态
func (s *DifyService) resetAllInstances() {
	for _, instance := range s.instances {
		instance.Health = true
		instance.ErrorCount = 0
	}
	logger.InfoString("Dify", "Reset", "已重置所有实例状态")
}

// shortenURL 缩短 URL 用于日志显示
func shortenURL(url string) string {
	if len(url) > 30 {
		return url[:15] + "..." + url[len(url)-12:]
	}
	return url
}
