package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// writeWait 单条消息写出的超时
	writeWait = 5 * time.Second
	// closeWait 关闭帧写出的超时
	closeWait = time.Second
)

// Transport 会话底层的双工通道，生产环境为 *websocket.Conn
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session 一条持久连接的会话状态
//
// 身份绑定是一个两态状态机：Unbound → Bound(playerId)，
// 只在第一次被接受的位置更新时迁移一次，之后不允许改绑。
type Session struct {
	id   string
	conn Transport

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// alive 心跳标志：探测前清零，收到 pong 置位
	alive atomic.Bool

	mu    sync.Mutex
	bound PlayerID

	chat    *rate.Limiter
	missile *rate.Limiter
}

// newSession 创建会话（不启动写协程）
func newSession(conn Transport, opts Options) *Session {
	s := &Session{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan []byte, opts.SendQueueSize),
		done:    make(chan struct{}),
		chat:    rate.NewLimiter(rate.Every(opts.ChatInterval), 1),
		missile: rate.NewLimiter(rate.Every(opts.MissileInterval), 1),
	}
	s.alive.Store(true)
	return s
}

// ID 会话标识，仅用于日志关联
func (s *Session) ID() string { return s.id }

// Bound 返回已绑定的玩家 ID
func (s *Session) Bound() (PlayerID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound, s.bound != ""
}

// bindResult 绑定尝试的结果
type bindResult int

const (
	bindOK bindResult = iota
	// bindClosed 会话已关闭，关闭清理可能已经读过绑定状态
	bindClosed
	// bindConflict 已绑定到其他 ID
	bindConflict
)

// bindThen 在会话锁内完成 Unbound → Bound 迁移并执行 apply。
// 关闭清理先关闭 done 再读取绑定，因此 apply 要么发生在清理读取之前，要么根本不执行。
func (s *Session) bindThen(id PlayerID, apply func()) bindResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.IsOpen() {
		return bindClosed
	}
	if s.bound != "" && s.bound != id {
		return bindConflict
	}
	s.bound = id
	apply()
	return bindOK
}

// allowChat 聊天节流，通过即记为一次被接受的聊天
func (s *Session) allowChat(now time.Time) bool {
	return s.chat.AllowN(now, 1)
}

// allowMissile 导弹事件节流
func (s *Session) allowMissile(now time.Time) bool {
	return s.missile.AllowN(now, 1)
}

// IsOpen 通道是否仍处于打开状态
func (s *Session) IsOpen() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Enqueue 将消息压入发送队列（非阻塞，满或已关闭则丢弃）
func (s *Session) Enqueue(b []byte) bool {
	if !s.IsOpen() {
		return false
	}
	select {
	case s.send <- b:
		return true
	default:
		return false
	}
}

// markAlive 收到 pong
func (s *Session) markAlive() {
	s.alive.Store(true)
}

// ping 发送存活探测
func (s *Session) ping() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close 发送关闭帧后关闭底层连接
func (s *Session) Close(code int, reason string) {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn == nil {
			return
		}
		msg := websocket.FormatCloseMessage(code, reason)
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
		_ = s.conn.Close()
	})
}

// Terminate 不发关闭帧，直接断开
func (s *Session) Terminate() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}

// writePump 独立协程，负责从 send 队列写出到连接
func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.Terminate()
				return
			}
		}
	}
}
