package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
)

const (
	// idBytes 随机源字节数，编码后为 8 位十六进制
	idBytes = 4
	// maxIDAttempts 连续撞上已发出 ID 的容忍次数
	maxIDAttempts = 16
)

// ErrIDExhausted ID 源连续返回重复值
var ErrIDExhausted = errors.New("player id source exhausted")

// IDSource 生成候选玩家 ID
type IDSource func() (PlayerID, error)

// RandomID 从 crypto/rand 读取 4 字节并编码为十六进制
func RandomID() (PlayerID, error) {
	var b [idBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random id: %w", err)
	}
	return PlayerID(hex.EncodeToString(b[:])), nil
}

// Registry 玩家注册表：进程内唯一的共享表，所有读写在同一把锁下串行
type Registry struct {
	mu      sync.RWMutex
	players map[PlayerID]*Player
	// issued 记录进程生命周期内发出过的全部 ID，保证永不复用
	issued map[PlayerID]struct{}
	newID  IDSource
}

// NewRegistry 创建注册表；src 为 nil 时使用 RandomID
func NewRegistry(src IDSource) *Registry {
	if src == nil {
		src = RandomID
	}
	return &Registry{
		players: make(map[PlayerID]*Player),
		issued:  make(map[PlayerID]struct{}),
		newID:   src,
	}
}

// Create 分配新 ID 并以默认位置插入玩家
func (r *Registry) Create(name string) (PlayerID, Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id PlayerID
	for i := 0; i < maxIDAttempts && id == ""; i++ {
		cand, err := r.newID()
		if err != nil {
			return "", Player{}, err
		}
		if _, dup := r.issued[cand]; !dup {
			id = cand
		}
	}
	if id == "" {
		return "", Player{}, ErrIDExhausted
	}
	r.issued[id] = struct{}{}
	p := &Player{Name: name, Gamemode: DefaultGamemode}
	r.players[id] = p
	return id, *p, nil
}

// Get 返回玩家副本
func (r *Registry) Get(id PlayerID) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Update 合并补丁并返回合并后的状态
func (r *Registry) Update(id PlayerID, patch PositionPatch) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	patch.apply(p)
	return *p, true
}

// Remove 删除玩家，返回被删除的条目
func (r *Registry) Remove(id PlayerID) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	delete(r.players, id)
	return *p, true
}

// Roster 只含名字的名单快照
func (r *Registry) Roster() map[PlayerID]RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[PlayerID]RosterEntry, len(r.players))
	for id, p := range r.players {
		out[id] = RosterEntry{Name: p.Name}
	}
	return out
}

// Len 当前玩家数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
