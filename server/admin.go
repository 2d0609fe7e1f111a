package server

import (
	"encoding/json"
	"net/http"
)

// HandleAdminMaintenance 维护开关的读取与热更新
// GET /admin/maintenance  返回当前状态
// POST /admin/maintenance 以 JSON 载荷 {"enabled": true} 切换
func (h *Hub) HandleAdminMaintenance(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		Enabled *bool `json:"enabled,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		on := h.Maintenance()
		writeJSON(w, http.StatusOK, cfg{Enabled: &on})
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		h.SetMaintenance(*body.Enabled)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "enabled": *body.Enabled})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// HandleMetrics 输出运行指标
// GET /admin/metrics
func (h *Hub) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"sessions":    h.SessionCount(),
		"players":     h.players.Len(),
		"maintenance": h.Maintenance(),
		"metrics":     h.metrics.Snapshot(),
	}
	writeJSON(w, http.StatusOK, payload)
}
