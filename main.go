// @title 课程编辑后端 API
// @version 1.0
// @description 双语（阿拉伯语/英语）课程、单元、课时与测验的编辑服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"curriculum_backend/internal/app"
	"curriculum_backend/internal/config"
	"curriculum_backend/pkg/logger"
	"flag"
	"log"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", app.ConfigDir, "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "release 模式下也执行数据库迁移")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		// logger 依赖配置，此时只能用标准库输出
		log.Fatalf("load config from %s: %v", *configDir, err)
	}
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly
	cfg.Dir = *configDir

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if cfg.MigrateOnly {
		logger.Log.Info("数据库迁移完成，退出", zap.String("driver", cfg.Database.Driver))
		return
	}
	application.Run()
}
