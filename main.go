package main

import (
	"engdis_bot/internal/app"
	"engdis_bot/internal/config"
	"engdis_bot/pkg/logger"
	"flag"
	"log"
	"os"
)

func main() {
	// 命令行参数
	runAll := flag.Bool("all", false, "跳过交互菜单，直接处理所有 unit 后退出")
	configPath := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.RunAll = *runAll

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
