package server

import (
	"sync/atomic"
)

// Metrics 记录中继运行期的关键指标（用于监控与调试）
type Metrics struct {
	Registrations       int64 // 成功注册数
	FramesAccepted      int64 // 被接受的入站帧
	FramesDropped       int64 // 静默丢弃的入站帧（解析失败、未知类型、未知玩家等）
	RateLimited         int64 // 因节流被丢弃的帧
	Refused             int64 // 私发拒绝提示的帧（聊天过长）
	Violations          int64 // 导致断开的协议违规
	Broadcasts          int64 // 广播次数
	QueueFullDiscarded  int64 // 因发送队列满被丢弃的消息数
	HeartbeatTerminated int64 // 心跳超时断开的连接数
}

func (m *Metrics) IncRegistration()        { atomic.AddInt64(&m.Registrations, 1) }
func (m *Metrics) IncAccepted()            { atomic.AddInt64(&m.FramesAccepted, 1) }
func (m *Metrics) IncDropped()             { atomic.AddInt64(&m.FramesDropped, 1) }
func (m *Metrics) IncRateLimited()         { atomic.AddInt64(&m.RateLimited, 1) }
func (m *Metrics) IncRefused()             { atomic.AddInt64(&m.Refused, 1) }
func (m *Metrics) IncViolation()           { atomic.AddInt64(&m.Violations, 1) }
func (m *Metrics) IncBroadcast()           { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *Metrics) IncQueueFullDiscarded()  { atomic.AddInt64(&m.QueueFullDiscarded, 1) }
func (m *Metrics) IncHeartbeatTerminated() { atomic.AddInt64(&m.HeartbeatTerminated, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"registrations":        atomic.LoadInt64(&m.Registrations),
		"frames_accepted":      atomic.LoadInt64(&m.FramesAccepted),
		"frames_dropped":       atomic.LoadInt64(&m.FramesDropped),
		"rate_limited":         atomic.LoadInt64(&m.RateLimited),
		"refused":              atomic.LoadInt64(&m.Refused),
		"violations":           atomic.LoadInt64(&m.Violations),
		"broadcasts":           atomic.LoadInt64(&m.Broadcasts),
		"queue_full_discarded": atomic.LoadInt64(&m.QueueFullDiscarded),
		"heartbeat_terminated": atomic.LoadInt64(&m.HeartbeatTerminated),
	}
}
