package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
)

var (
	ErrNameRequired = errors.New("name required")
	ErrInvalidName  = errors.New("invalid name")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// JoinRequest POST /join 的请求体
type JoinRequest struct {
	Name string `json:"name"`
}

// JoinResponse 新 ID 与只含名字的在线名单
type JoinResponse struct {
	PlayerID PlayerID                 `json:"playerId"`
	Players  map[PlayerID]RosterEntry `json:"players"`
}

// Register 校验名字并创建注册表条目，不做广播
func (h *Hub) Register(name string) (JoinResponse, Player, error) {
	if name == "" {
		return JoinResponse{}, Player{}, ErrNameRequired
	}
	if !nameRe.MatchString(name) {
		return JoinResponse{}, Player{}, ErrInvalidName
	}
	id, p, err := h.players.Create(name)
	if err != nil {
		return JoinResponse{}, Player{}, err
	}
	h.metrics.IncRegistration()
	h.log.Infof("JOIN name=%s id=%s", name, id)
	return JoinResponse{PlayerID: id, Players: h.players.Roster()}, p, nil
}

// AnnounceJoin 广播 player_joined 与加入播报
func (h *Hub) AnnounceJoin(id PlayerID, p Player) {
	h.Broadcast(PlayerJoinedEvent{Type: TypePlayerJoined, PlayerID: id, PlayerData: p}, nil)
	h.Broadcast(systemChat(p.Name+" Joined"), nil)
}

// HandleJoin POST /join，请求体超过上限的部分被截断
func (h *Hub) HandleJoin(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.opts.JoinBodyLimit))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Name required")
		return
	}
	var req JoinRequest
	if err := json.Unmarshal(body, &req); err != nil {
		req.Name = ""
	}

	resp, p, err := h.Register(req.Name)
	switch {
	case errors.Is(err, ErrNameRequired):
		writeError(w, http.StatusBadRequest, "Name required")
		return
	case errors.Is(err, ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Invalid name")
		return
	case err != nil:
		h.log.Errorf("register %q: %v", req.Name, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	h.AnnounceJoin(resp.PlayerID, p)
}
