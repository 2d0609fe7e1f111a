package server

// PlayerID 玩家唯一标识（8 位十六进制，注册时分配）
type PlayerID string

// Player 注册表中的玩家实体，序列化结果即 player_joined 的 playerData
type Player struct {
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Gamemode string  `json:"gamemode"`
}

// DefaultGamemode 新玩家的初始模式
const DefaultGamemode = "default"

// PositionPatch 位置更新的部分字段，nil 表示保持原值
type PositionPatch struct {
	X        *float64
	Y        *float64
	Angle    *float64
	Gamemode *string
}

// apply 将补丁合并到玩家状态
func (p PositionPatch) apply(pl *Player) {
	if p.X != nil {
		pl.X = *p.X
	}
	if p.Y != nil {
		pl.Y = *p.Y
	}
	if p.Angle != nil {
		pl.Angle = *p.Angle
	}
	if p.Gamemode != nil {
		pl.Gamemode = *p.Gamemode
	}
}

// RosterEntry 注册响应中的名单条目（只含名字，不泄露坐标）
type RosterEntry struct {
	Name string `json:"name"`
}
