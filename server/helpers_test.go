package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testLevel = `{"blocks":[[0,0,1]]}`

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestHub(t *testing.T, mutate ...func(*Options)) (*Hub, *fakeClock) {
	t.Helper()
	opts := DefaultOptions()
	for _, m := range mutate {
		m(&opts)
	}
	h := NewHub(testLevel, opts, zaptest.NewLogger(t).Sugar())
	clk := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	h.now = clk.Now
	return h, clk
}

// openSession 无底层连接的会话，测试直接读取发送队列
func openSession(t *testing.T, h *Hub) *Session {
	t.Helper()
	s := h.Open(nil)
	msgs := drain(t, s)
	require.Len(t, msgs, 1)
	require.Equal(t, TypeLoadLevel, msgs[0]["type"])
	return s
}

func drain(t *testing.T, s *Session) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		select {
		case b := <-s.send:
			var m map[string]any
			require.NoError(t, json.Unmarshal(b, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func mustRegister(t *testing.T, h *Hub, name string) PlayerID {
	t.Helper()
	resp, _, err := h.Register(name)
	require.NoError(t, err)
	return resp.PlayerID
}

func frame(t *testing.T, v map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func positionAt(id PlayerID, x, y float64) map[string]any {
	return map[string]any{
		"type":     TypeUpdatePosition,
		"playerId": id,
		"x":        x,
		"y":        y,
		"angle":    0,
		"gamemode": "default",
	}
}

func chatFrom(id PlayerID, msg string) map[string]any {
	return map[string]any{"type": TypeChat, "playerId": id, "message": msg}
}

// sequenceIDs 依次返回给定 ID，用完后报错
func sequenceIDs(ids ...PlayerID) IDSource {
	var mu sync.Mutex
	i := 0
	return func() (PlayerID, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(ids) {
			return "", fmt.Errorf("sequence exhausted after %d ids", len(ids))
		}
		id := ids[i]
		i++
		return id, nil
	}
}

// fakeTransport 记录写出的消息与控制帧
type fakeTransport struct {
	mu         sync.Mutex
	messages   [][]byte
	pings      int
	closeCodes []int
	closed     bool
}

func (f *fakeTransport) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return websocket.ErrCloseSent
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeTransport) WriteControl(messageType int, data []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return websocket.ErrCloseSent
	}
	switch messageType {
	case websocket.PingMessage:
		f.pings++
	case websocket.CloseMessage:
		code := websocket.CloseNoStatusReceived
		if len(data) >= 2 {
			code = int(data[0])<<8 | int(data[1])
		}
		f.closeCodes = append(f.closeCodes, code)
	}
	return nil
}

func (f *fakeTransport) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
