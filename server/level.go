package server

import (
	"errors"
	"fmt"
	"os"
)

// ErrLevelMissing 关卡文件缺失或不可读，进程无法启动
var ErrLevelMissing = errors.New("level content unavailable")

// LoadLevel 读取关卡原文；内容不解析，原样下发
func LoadLevel(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLevelMissing, err)
	}
	return string(b), nil
}
