package logger

import (
	"go.uber.org/zap"
)

// Init 初始化全局 zap logger，之后通过 zap.L() 使用
func Init() {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
}
