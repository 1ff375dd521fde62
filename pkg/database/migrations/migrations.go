package migrations

import (
	"oracle/app/models/reading"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&reading.Reading{},
	}
}
