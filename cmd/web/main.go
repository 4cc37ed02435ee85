package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/ratul43/book-courier-server/internal/config"
	"github.com/ratul43/book-courier-server/internal/logger"
	"github.com/ratul43/book-courier-server/internal/server"
)

func main() {
	logger.Init()
	zap.L().Info("log init success")

	// 加载配置（默认值 + 环境变量）
	cfg := config.Load()

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		zap.L().Fatal("failed to run web server", zap.Error(err))
	}
}
