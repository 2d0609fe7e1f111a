package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gkugfk3/GJdium-Server/server"
)

// 入口：加载关卡，启动 HTTP + WebSocket 服务与心跳
func main() {
	cfg, err := server.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := server.NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// 关卡缺失时不接受任何连接
	level, err := server.LoadLevel(cfg.LevelFile)
	if err != nil {
		log.Fatalf("Failed to load level: %v", err)
	}
	log.Infof("Loaded level %s", cfg.LevelFile)

	hub := server.NewHub(level, cfg.Options(), log)
	hub.SetMaintenance(cfg.Maintenance)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.RunHeartbeat(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: hub.Routes(cfg.AdminEnabled)}
	go func() {
		log.Infof("Game server running on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	hub.Shutdown()
}
