package server

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 进程配置：先读环境变量，再由命令行参数覆盖
type Config struct {
	Addr         string `env:"GJ_ADDR" envDefault:":8080"`
	LevelFile    string `env:"GJ_LEVEL_FILE" envDefault:"Level.GJL"`
	LogFile      string `env:"GJ_LOG_FILE" envDefault:"app.log"`
	LogLevel     string `env:"GJ_LOG_LEVEL" envDefault:"info"`
	Maintenance  bool   `env:"GJ_MAINTENANCE" envDefault:"false"`
	AdminEnabled bool   `env:"GJ_ADMIN" envDefault:"false"`

	HeartbeatInterval time.Duration `env:"GJ_HEARTBEAT_INTERVAL" envDefault:"30s"`
	ChatInterval      time.Duration `env:"GJ_CHAT_INTERVAL" envDefault:"250ms"`
	MissileInterval   time.Duration `env:"GJ_MISSILE_INTERVAL" envDefault:"120ms"`
	MaxChatLength     int           `env:"GJ_MAX_CHAT_LENGTH" envDefault:"64"`
	WorldBound        float64       `env:"GJ_WORLD_BOUND" envDefault:"100000"`
	JoinBodyLimit     int64         `env:"GJ_JOIN_BODY_LIMIT" envDefault:"2048"`
	SendQueueSize     int           `env:"GJ_SEND_QUEUE" envDefault:"64"`
	StrictSender      bool          `env:"GJ_STRICT_SENDER" envDefault:"true"`
}

// ParseConfig 解析环境变量与命令行参数
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	fs.StringVar(&cfg.LevelFile, "level", cfg.LevelFile, "level file sent to clients on connect")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rolling log file path (empty: stderr only)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Maintenance, "maintenance", cfg.Maintenance, "start in maintenance mode")
	fs.BoolVar(&cfg.AdminEnabled, "admin", cfg.AdminEnabled, "expose /admin/maintenance and /admin/metrics")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 拒绝非正的周期、上限与队列长度
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if c.LevelFile == "" {
		errs = append(errs, errors.New("level file is empty"))
	}
	if c.HeartbeatInterval <= 0 {
		errs = append(errs, fmt.Errorf("heartbeat interval must be positive, got %s", c.HeartbeatInterval))
	}
	if c.ChatInterval <= 0 {
		errs = append(errs, fmt.Errorf("chat interval must be positive, got %s", c.ChatInterval))
	}
	if c.MissileInterval <= 0 {
		errs = append(errs, fmt.Errorf("missile interval must be positive, got %s", c.MissileInterval))
	}
	if c.MaxChatLength <= 0 {
		errs = append(errs, fmt.Errorf("max chat length must be positive, got %d", c.MaxChatLength))
	}
	if c.WorldBound <= 0 {
		errs = append(errs, fmt.Errorf("world bound must be positive, got %v", c.WorldBound))
	}
	if c.JoinBodyLimit <= 0 {
		errs = append(errs, fmt.Errorf("join body limit must be positive, got %d", c.JoinBodyLimit))
	}
	if c.SendQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("send queue size must be positive, got %d", c.SendQueueSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Options 转换为 Hub 运行参数
func (c Config) Options() Options {
	return Options{
		HeartbeatInterval: c.HeartbeatInterval,
		ChatInterval:      c.ChatInterval,
		MissileInterval:   c.MissileInterval,
		MaxChatLength:     c.MaxChatLength,
		WorldBound:        c.WorldBound,
		JoinBodyLimit:     c.JoinBodyLimit,
		SendQueueSize:     c.SendQueueSize,
		StrictSender:      c.StrictSender,
	}
}
