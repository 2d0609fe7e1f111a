package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Options 会话与分发器的运行参数
type Options struct {
	HeartbeatInterval time.Duration
	ChatInterval      time.Duration
	MissileInterval   time.Duration
	MaxChatLength     int
	WorldBound        float64
	JoinBodyLimit     int64
	SendQueueSize     int
	// StrictSender 已绑定会话的 chat/missilec 必须使用绑定的 playerId
	StrictSender bool
}

// DefaultOptions 与线上客户端约定的默认参数
func DefaultOptions() Options {
	return Options{
		HeartbeatInterval: 30 * time.Second,
		ChatInterval:      250 * time.Millisecond,
		MissileInterval:   120 * time.Millisecond,
		MaxChatLength:     64,
		WorldBound:        100000,
		JoinBodyLimit:     2048,
		SendQueueSize:     64,
		StrictSender:      true,
	}
}

// Hub 持有玩家注册表与在线会话集合，所有连接处理器共享同一个 Hub
type Hub struct {
	opts    Options
	log     *zap.SugaredLogger
	players *Registry
	metrics *Metrics
	level   string
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[*Session]struct{}

	maintenance atomic.Bool
}

// NewHub level 为关卡原文，原样下发给客户端
func NewHub(level string, opts Options, log *zap.SugaredLogger) *Hub {
	return &Hub{
		opts:     opts,
		log:      log,
		players:  NewRegistry(nil),
		metrics:  &Metrics{},
		level:    level,
		now:      time.Now,
		sessions: make(map[*Session]struct{}),
	}
}

// Players 注册表
func (h *Hub) Players() *Registry { return h.players }

// Metrics 运行指标
func (h *Hub) Metrics() *Metrics { return h.metrics }

// SetMaintenance 切换维护模式
func (h *Hub) SetMaintenance(on bool) {
	if h.maintenance.Swap(on) != on {
		h.log.Infof("maintenance mode set to %v", on)
	}
}

// Maintenance 是否处于维护模式
func (h *Hub) Maintenance() bool { return h.maintenance.Load() }

// Open 接管一条新连接：先入队关卡，再加入在线集合，最后启动写协程
func (h *Hub) Open(conn Transport) *Session {
	s := newSession(conn, h.opts)
	h.sendLevel(s)
	h.track(s)
	if conn != nil {
		go s.writePump()
	}
	h.log.Debugf("session open id=%s", s.ID())
	return s
}

// sendLevel 私发 loadlevel
func (h *Hub) sendLevel(s *Session) {
	h.sendTo(s, newLoadLevel(h.level))
}

func (h *Hub) track(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

// untrack 返回该会话此前是否在集合中
func (h *Hub) untrack(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return false
	}
	delete(h.sessions, s)
	return true
}

// snapshot 在线会话的快照，遍历时不持锁
func (h *Hub) snapshot() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		out = append(out, s)
	}
	return out
}

// SessionCount 在线会话数
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Disconnect 关闭清理路径（主动关闭、读错误、心跳超时共用），可重复调用
//
// 已绑定且仍在注册表中的玩家：广播 player_left 与离开播报，并删除条目；
// 从未绑定的会话静默关闭。
func (h *Hub) Disconnect(s *Session) {
	if !h.untrack(s) {
		return
	}
	s.Terminate()
	h.log.Debugf("session closed id=%s", s.ID())

	id, ok := s.Bound()
	if !ok {
		return
	}
	p, ok := h.players.Remove(id)
	if !ok {
		return
	}
	h.Broadcast(PlayerLeftEvent{Type: TypePlayerLeft, PlayerID: id}, nil)
	h.Broadcast(systemChat(p.Name+" Left"), nil)
	h.log.Infof("LEAVE name=%s id=%s", p.Name, id)
}

// Shutdown 关闭全部会话
func (h *Hub) Shutdown() {
	for _, s := range h.snapshot() {
		s.Close(websocket.CloseGoingAway, "server shutting down")
		h.Disconnect(s)
	}
}
