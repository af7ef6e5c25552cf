package service

import (
	"os"
	"testing"

	"cloud-deploy/internal/pkg/config"
	"cloud-deploy/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	// 包级日志与全局配置在服务代码中直接引用, 测试前初始化
	_ = logger.Init(&config.LogConfig{Level: "error", Format: "console", Output: "stdout"})
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:            "test-secret",
				AccessTokenExpire: 3600,
			},
		},
	}

	os.Exit(m.Run())
}
