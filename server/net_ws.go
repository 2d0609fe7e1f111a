package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// maxFrameSize 单个入站帧上限
const maxFrameSize = 64 << 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 开放访问：允许所有来源
		return true
	},
}

// ServeWS 升级为持久连接，任意路径均可
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("upgrade error: %v", err)
		return
	}
	s := h.Open(ws)
	go h.readPump(s, ws)
}

// readPump 按到达顺序逐帧分发；退出时走统一的关闭清理路径
func (h *Hub) readPump(s *Session, ws *websocket.Conn) {
	defer h.Disconnect(s)
	ws.SetReadLimit(maxFrameSize)
	ws.SetPongHandler(func(string) error {
		s.markAlive()
		return nil
	})

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.log.Debugf("read error session=%s: %v", s.ID(), err)
			}
			return
		}
		out := h.Dispatch(s, payload)
		if out.Kind == Violation {
			s.Close(websocket.ClosePolicyViolation, out.Reason)
			return
		}
	}
}
