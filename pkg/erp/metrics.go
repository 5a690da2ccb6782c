package erp

import (
	"sync/atomic"
)

// Metrics 对账 worker 的性能指标
type Metrics struct {
	cycles   atomic.Int64
	synced   atomic.Int64
	failed   atomic.Int64
	orphaned atomic.Int64
}

// NewMetrics 创建指标收集器
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordCycle 记录一次轮询
func (m *Metrics) RecordCycle() {
	m.cycles.Add(1)
}

// RecordSynced 记录一次同步成功
func (m *Metrics) RecordSynced() {
	m.synced.Add(1)
}

// RecordFailed 记录一次同步失败
func (m *Metrics) RecordFailed() {
	m.failed.Add(1)
}

// RecordOrphaned 记录一次孤儿条目清理
func (m *Metrics) RecordOrphaned() {
	m.orphaned.Add(1)
}

// Snapshot 指标快照
type Snapshot struct {
	Cycles   int64 `json:"cycles"`
	Synced   int64 `json:"synced"`
	Failed   int64 `json:"failed"`
	Orphaned int64 `json:"orphaned"`
}

// Snapshot 读取当前指标
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Cycles:   m.cycles.Load(),
		Synced:   m.synced.Load(),
		Failed:   m.failed.Load(),
		Orphaned: m.orphaned.Load(),
	}
}
