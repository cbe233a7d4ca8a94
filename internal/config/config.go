package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はプロセス起動時に一度だけ環境変数から読み込まれる設定です。
type Config struct {
	APIKey string `env:"GEMINI_API_KEY,required,notEmpty"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-exp"`

	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
	// 0 の場合は処理完了まで無期限に待機します。
	PollTimeout time.Duration `env:"POLL_TIMEOUT" envDefault:"0s"`

	SendMaxRetries   uint64        `env:"SEND_MAX_RETRIES" envDefault:"0"`
	SendInitialDelay time.Duration `env:"SEND_INITIAL_DELAY" envDefault:"30s"`
	SendMaxDelay     time.Duration `env:"SEND_MAX_DELAY" envDefault:"120s"`

	Log LogConfig
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load は .env（存在する場合）と環境変数から設定を読み込みます。
// 既に設定済みの環境変数は .env の値で上書きされません。
func Load(dotenvPaths ...string) (*Config, error) {
	if len(dotenvPaths) == 0 {
		dotenvPaths = []string{".env"}
	}
	for _, p := range dotenvPaths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
