package config

// Initialize 触发本目录下所有配置文件的 init 加载
// main.go 里 import 本包并调用此方法
func Initialize() {
}
