package server

import "encoding/json"

// Broadcast 序列化一次，把同一份字节推给除 exclude 外所有打开的会话
//
// 投递是 fire-and-forget：单个会话队列满只影响它自己，不向调用方报错。
// 返回成功入队的会话数。
func (h *Hub) Broadcast(event any, exclude *Session) int {
	b, err := json.Marshal(event)
	if err != nil {
		h.log.Errorf("marshal broadcast event: %v", err)
		return 0
	}
	h.metrics.IncBroadcast()

	delivered := 0
	for _, s := range h.snapshot() {
		if s == exclude || !s.IsOpen() {
			continue
		}
		if s.Enqueue(b) {
			delivered++
			continue
		}
		h.metrics.IncQueueFullDiscarded()
		h.log.Debugf("send queue full, message discarded session=%s", s.ID())
	}
	return delivered
}

// sendTo 私发一条事件
func (h *Hub) sendTo(s *Session, event any) bool {
	b, err := json.Marshal(event)
	if err != nil {
		h.log.Errorf("marshal event: %v", err)
		return false
	}
	if !s.Enqueue(b) {
		h.metrics.IncQueueFullDiscarded()
		return false
	}
	return true
}
