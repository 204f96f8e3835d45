// 包 logger：进程级 slog 日志器；级别与格式由 LOG_LEVEL / LOG_FORMAT 控制
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// ParseLevel 未识别的取值回退到 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New 按级别与格式构建日志器，format 为 json 时输出 JSON，否则文本
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup 初始化默认日志器，固定输出到标准错误
func Setup() *slog.Logger {
	defaultLogger = New(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")), os.Getenv("LOG_FORMAT"))
	return defaultLogger
}

// L 获取默认日志器；未初始化时回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
