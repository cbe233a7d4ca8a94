package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shouni/gemini-video-compare/internal/config"
)

// Setup は設定に従って slog のデフォルトロガーを初期化します。
// 進捗と応答は標準出力に出るため、ログは w（通常は標準エラー）に書き出します。
func Setup(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}
