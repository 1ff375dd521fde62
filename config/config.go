package config

// Initialize 触发本包所有配置文件的 init() 加载
// main 包通过匿名导入本包即可完成配置注册
func Initialize() {
}
