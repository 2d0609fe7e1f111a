package server

import "encoding/json"

// 入站帧类型（客户端 → 服务端）
const (
	TypeUpdatePosition = "update_position"
	TypeChat           = "chat"
	TypeMissileClient  = "missilec"
)

// 出站事件类型（服务端 → 客户端）
const (
	TypeLoadLevel    = "loadlevel"
	TypePlayerJoined = "player_joined"
	TypePlayerUpdate = "player_update"
	TypePlayerLeft   = "player_left"
	TypeMissile      = "missile"
)

const (
	// SystemName 系统消息的发送者名字
	SystemName = "SYSTEM"
	// systemSenderID 系统消息的 playerId，客户端按数字 0 识别
	systemSenderID = 0
	// ReturnCommand 聊天中的回城指令，发送者会重新收到关卡
	ReturnCommand = "!return"
)

// envelope 只解析 type 字段，用于分发
type envelope struct {
	Type string `json:"type"`
}

// positionFrame {"type":"update_position","playerId":"a1","x":10,"y":5,"angle":0,"gamemode":"default"}
type positionFrame struct {
	PlayerID PlayerID `json:"playerId"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Angle    *float64 `json:"angle"`
	Gamemode *string  `json:"gamemode"`
}

func (f positionFrame) patch() PositionPatch {
	return PositionPatch{X: f.X, Y: f.Y, Angle: f.Angle, Gamemode: f.Gamemode}
}

// chatFrame {"type":"chat","playerId":"a1","message":"hi"}
type chatFrame struct {
	PlayerID PlayerID `json:"playerId"`
	Message  *string  `json:"message"`
}

// missileFrame 坐标原样透传，不做校验
type missileFrame struct {
	PlayerID PlayerID        `json:"playerId"`
	X        json.RawMessage `json:"x"`
	Y        json.RawMessage `json:"y"`
	Angle    json.RawMessage `json:"angle"`
}

// LoadLevelEvent 连接建立后的第一条消息，也用于 !return
type LoadLevelEvent struct {
	Type  string `json:"type"`
	LData string `json:"ldata"`
}

type PlayerJoinedEvent struct {
	Type       string   `json:"type"`
	PlayerID   PlayerID `json:"playerId"`
	PlayerData Player   `json:"playerData"`
}

type PlayerUpdateEvent struct {
	Type     string   `json:"type"`
	PlayerID PlayerID `json:"playerId"`
	Name     string   `json:"name"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Angle    float64  `json:"angle"`
	Gamemode string   `json:"gamemode"`
}

// ChatEvent PlayerID 为玩家 ID 字符串，系统消息时为数字 0
type ChatEvent struct {
	Type     string `json:"type"`
	PlayerID any    `json:"playerId"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

type PlayerLeftEvent struct {
	Type     string   `json:"type"`
	PlayerID PlayerID `json:"playerId"`
}

type MissileEvent struct {
	Type     string          `json:"type"`
	PlayerID PlayerID        `json:"playerId"`
	X        json.RawMessage `json:"x,omitempty"`
	Y        json.RawMessage `json:"y,omitempty"`
	Angle    json.RawMessage `json:"angle,omitempty"`
}

func newLoadLevel(level string) LoadLevelEvent {
	return LoadLevelEvent{Type: TypeLoadLevel, LData: level}
}

func newPlayerUpdate(id PlayerID, p Player) PlayerUpdateEvent {
	return PlayerUpdateEvent{
		Type:     TypePlayerUpdate,
		PlayerID: id,
		Name:     p.Name,
		X:        p.X,
		Y:        p.Y,
		Angle:    p.Angle,
		Gamemode: p.Gamemode,
	}
}

func newPlayerChat(id PlayerID, name, message string) ChatEvent {
	return ChatEvent{Type: TypeChat, PlayerID: id, Name: name, Message: message}
}

// systemChat 系统播报（加入/离开/拒绝提示）
func systemChat(message string) ChatEvent {
	return ChatEvent{Type: TypeChat, PlayerID: systemSenderID, Name: SystemName, Message: message}
}
