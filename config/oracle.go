package config

import "oracle/pkg/config"

func init() {
	config.Add("oracle", func() map[string]interface{} {
		return map[string]interface{}{

			// 提问后是否进入观牌倒计时阶段
			"reveal_enabled": config.Env("ORACLE_REVEAL_ENABLED", true),

			// 观牌后是否进入手势洗牌阶段
			"shuffle_enabled": config.Env("ORACLE_SHUFFLE_ENABLED", true),
		}
	})
}
