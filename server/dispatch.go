package server

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"unicode/utf8"
)

// OutcomeKind 单个入站帧的处理结果
type OutcomeKind int

const (
	// Accepted 状态已更新或事件已广播
	Accepted OutcomeKind = iota
	// Dropped 静默丢弃，连接保持
	Dropped
	// Refused 不广播，已向发送者私发系统提示
	Refused
	// Violation 协议违规，调用方必须关闭连接
	Violation
)

func (k OutcomeKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Dropped:
		return "dropped"
	case Refused:
		return "refused"
	case Violation:
		return "violation"
	default:
		return "unknown"
	}
}

// 丢弃/拒绝原因
const (
	ReasonMalformed     = "malformed frame"
	ReasonUnknownType   = "unknown frame type"
	ReasonUnknownPlayer = "unknown player id"
	ReasonOutOfBounds   = "coordinates out of bounds"
	ReasonRebind        = "session bound to another player"
	ReasonSpoofedSender = "player id does not match session"
	ReasonRateLimited   = "rate limited"
	ReasonTooLong       = "message too long"
	ReasonClosed        = "session closed"
)

// Outcome 分发结果
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

func accepted() Outcome               { return Outcome{Kind: Accepted} }
func dropped(reason string) Outcome   { return Outcome{Kind: Dropped, Reason: reason} }
func refused(reason string) Outcome   { return Outcome{Kind: Refused, Reason: reason} }
func violation(reason string) Outcome { return Outcome{Kind: Violation, Reason: reason} }

// Dispatch 解释一个入站帧。同一会话的帧由读协程按到达顺序逐个调用。
func (h *Hub) Dispatch(s *Session, frame []byte) Outcome {
	out := h.dispatch(s, frame)
	switch out.Kind {
	case Accepted:
		h.metrics.IncAccepted()
	case Refused:
		h.metrics.IncRefused()
	case Violation:
		h.metrics.IncViolation()
	case Dropped:
		if out.Reason == ReasonRateLimited {
			h.metrics.IncRateLimited()
		} else {
			h.metrics.IncDropped()
		}
	}
	return out
}

func (h *Hub) dispatch(s *Session, frame []byte) Outcome {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return dropped(ReasonMalformed)
	}
	switch env.Type {
	case TypeUpdatePosition:
		return h.handlePosition(s, frame)
	case TypeChat:
		return h.handleChat(s, frame)
	case TypeMissileClient:
		return h.handleMissile(s, frame)
	default:
		return dropped(ReasonUnknownType)
	}
}

// handlePosition 位置更新：身份与边界不合法都视为不可信连接
func (h *Hub) handlePosition(s *Session, frame []byte) Outcome {
	var f positionFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		if coordinateOverflow(err) {
			h.log.Warnf("coordinates out of bounds session=%s: %v", s.ID(), err)
			return violation(ReasonOutOfBounds)
		}
		return dropped(ReasonMalformed)
	}
	if _, ok := h.players.Get(f.PlayerID); !ok {
		h.log.Warnf("Invalid playerId %q session=%s", f.PlayerID, s.ID())
		return violation(ReasonUnknownPlayer)
	}
	if h.outOfBounds(f.X) || h.outOfBounds(f.Y) {
		h.log.Warnf("coordinates out of bounds playerId=%s session=%s", f.PlayerID, s.ID())
		return violation(ReasonOutOfBounds)
	}
	var (
		p  Player
		ok bool
	)
	switch s.bindThen(f.PlayerID, func() {
		if p, ok = h.players.Update(f.PlayerID, f.patch()); ok {
			h.Broadcast(newPlayerUpdate(f.PlayerID, p), s)
		}
	}) {
	case bindClosed:
		return dropped(ReasonClosed)
	case bindConflict:
		bound, _ := s.Bound()
		h.log.Warnf("rebind refused bound=%s requested=%s session=%s", bound, f.PlayerID, s.ID())
		return violation(ReasonRebind)
	}
	if !ok {
		return violation(ReasonUnknownPlayer)
	}

	if f.X != nil && f.Y != nil && *f.X == 0 && *f.Y == 0 {
		h.log.Infof("Possibly died: %s (%s)", p.Name, f.PlayerID)
	}
	return accepted()
}

// coordinateOverflow x/y 超出 float64 范围（如 1e400），按越界处理
func coordinateOverflow(err error) bool {
	var te *json.UnmarshalTypeError
	if !errors.As(err, &te) || !strings.HasPrefix(te.Value, "number") {
		return false
	}
	return te.Field == "x" || te.Field == "y"
}

func (h *Hub) outOfBounds(v *float64) bool {
	return v != nil && math.Abs(*v) > h.opts.WorldBound
}

// handleChat 聊天：广播给所有人（包括发送者）
func (h *Hub) handleChat(s *Session, frame []byte) Outcome {
	var f chatFrame
	if err := json.Unmarshal(frame, &f); err != nil || f.Message == nil {
		return dropped(ReasonMalformed)
	}
	p, ok := h.players.Get(f.PlayerID)
	if !ok {
		return dropped(ReasonUnknownPlayer)
	}
	if !h.senderMatches(s, f.PlayerID) {
		return dropped(ReasonSpoofedSender)
	}
	if !s.allowChat(h.now()) {
		return dropped(ReasonRateLimited)
	}

	msg := *f.Message
	if utf8.RuneCountInString(msg) > h.opts.MaxChatLength {
		h.sendTo(s, systemChat(ReasonTooLong))
		return refused(ReasonTooLong)
	}

	h.log.Infof("%s (%s): %s", p.Name, f.PlayerID, msg)
	h.Broadcast(newPlayerChat(f.PlayerID, p.Name, msg), nil)

	if msg == ReturnCommand {
		h.sendLevel(s)
	}
	return accepted()
}

// handleMissile 导弹：只做节流，转发给除发送者外的所有人
func (h *Hub) handleMissile(s *Session, frame []byte) Outcome {
	var f missileFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return dropped(ReasonMalformed)
	}
	if !h.senderMatches(s, f.PlayerID) {
		return dropped(ReasonSpoofedSender)
	}
	if !s.allowMissile(h.now()) {
		return dropped(ReasonRateLimited)
	}
	h.Broadcast(MissileEvent{
		Type:     TypeMissile,
		PlayerID: f.PlayerID,
		X:        f.X,
		Y:        f.Y,
		Angle:    f.Angle,
	}, s)
	return accepted()
}

// senderMatches 严格模式下，已绑定会话只能以自己的身份发言
func (h *Hub) senderMatches(s *Session, id PlayerID) bool {
	if !h.opts.StrictSender {
		return true
	}
	bound, ok := s.Bound()
	return !ok || bound == id
}
