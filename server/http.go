package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	livenessPath = "/isonline"
	adminPrefix  = "/admin/"
)

// Routes 组装完整的 HTTP 入口：CORS 头 → 维护开关 → 预检 → 持久连接升级 → 路由表
func (h *Hub) Routes(admin bool) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+livenessPath, handleIsOnline)
	mux.HandleFunc("POST /join", h.HandleJoin)
	if admin {
		mux.HandleFunc(adminPrefix+"maintenance", h.HandleAdminMaintenance)
		mux.HandleFunc("GET "+adminPrefix+"metrics", h.HandleMetrics)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	return withCORS(h.withMaintenance(withPreflight(h.withWebsocket(mux))))
}

// handleIsOnline 存活探测，不受维护开关影响
func handleIsOnline(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("true"))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

// withPreflight 放在维护开关之后，维护期间预检同样返回 503
func withPreflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withMaintenance 维护期间除存活探测与管理接口外一律 503
func (h *Hub) withMaintenance(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Maintenance() && r.URL.Path != livenessPath && !strings.HasPrefix(r.URL.Path, adminPrefix) {
			writeError(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Hub) withWebsocket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			h.ServeWS(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
