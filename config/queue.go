package config

import "oracle/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			"rate_limit":   config.Env("QUEUE_RATE_LIMIT", 12),
			"rate_burst":   config.Env("QUEUE_RATE_BURST", 50),
			"worker_count": config.Env("QUEUE_WORKER_COUNT", 10),
			"metrics_size": config.Env("QUEUE_METRICS_SIZE", 1000),
			"pop_timeout":  config.Env("QUEUE_POP_TIMEOUT", 5),
			"task_timeout": config.Env("QUEUE_TASK_TIMEOUT", 120),
		}
	})
}
