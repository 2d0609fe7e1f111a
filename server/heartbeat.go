package server

import (
	"context"
	"time"
)

// RunHeartbeat 按固定周期探测所有连接，直到 ctx 取消
func (h *Hub) RunHeartbeat(ctx context.Context) {
	interval := h.opts.HeartbeatInterval
	if interval <= 0 {
		interval = DefaultOptions().HeartbeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

// sweep 一轮心跳：上一轮未回应的连接直接断开，其余清零标志后发送 ping
func (h *Hub) sweep() {
	for _, s := range h.snapshot() {
		if !s.IsOpen() {
			continue
		}
		if !s.alive.CompareAndSwap(true, false) {
			h.metrics.IncHeartbeatTerminated()
			h.log.Infof("heartbeat timeout, terminating session=%s", s.ID())
			h.Disconnect(s)
			continue
		}
		if err := s.ping(); err != nil {
			h.log.Debugf("ping failed session=%s: %v", s.ID(), err)
		}
	}
}
