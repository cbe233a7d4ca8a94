package gemini

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shouni/netarmor/retry"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.0-flash-exp"

	DefaultMaxRetries   uint64        = 0
	DefaultInitialDelay time.Duration = 30 * time.Second
	DefaultMaxDelay     time.Duration = 120 * time.Second

	DefaultTemperature      float32 = 1.0
	DefaultTopP             float32 = 0.95
	DefaultTopK             float32 = 40
	DefaultMaxOutputTokens  int32   = 8192
	DefaultResponseMIMEType         = "text/plain"

	// File API
	DefaultPollingInterval = 10 * time.Second
	// DefaultPollingTimeout が 0 の場合、処理完了まで無期限に待機します。
	DefaultPollingTimeout time.Duration = 0
	// CleanupTimeout はアップロード済みファイル1件の削除に許す時間です。
	CleanupTimeout = 15 * time.Second
)

// Client は Gemini SDK をラップしたメイン構造体です。
type Client struct {
	files        FileStore
	models       ContentGenerator
	model        string
	generation   GenerationConfig
	retryConfig  retry.Config
	pollInterval time.Duration
	pollTimeout  time.Duration
	clock        Clock
	out          io.Writer
}

// GenerationConfig はセッション全体に一律で適用される生成パラメータです。
type GenerationConfig struct {
	Temperature      float32
	TopP             float32
	TopK             float32
	MaxOutputTokens  int32
	ResponseMIMEType string
}

// FileHandle は File API 上にアップロードされた1つのファイルを表します。
// State はサーバー側でのみ更新され、クライアントは再取得によって読み直します。
type FileHandle struct {
	Name        string
	DisplayName string
	URI         string
	MIMEType    string
	State       genai.FileState
}

// Readiness は File API の処理状態をポーリング用に集約したものです。
type Readiness int

const (
	ReadinessPending Readiness = iota
	ReadinessReady
	ReadinessFailed
)

func (r Readiness) String() string {
	switch r {
	case ReadinessPending:
		return "pending"
	case ReadinessReady:
		return "ready"
	default:
		return "failed"
	}
}

// 堅牢なエラーハンドリングのためのパッケージレベルのセンチネルエラー。
var (
	// 初期化時のエラー
	ErrAPIKeyRequired = errors.New("APIKey は必須です")

	// 設定・バリデーションのエラー
	ErrInvalidTemperature      = errors.New("温度設定（Temperature）は 0.0 から 2.0 の間である必要があります")
	ErrInvalidTopP             = errors.New("TopP は 0.0 から 1.0 の間である必要があります")
	ErrInvalidGenerationConfig = errors.New("TopK と MaxOutputTokens に負の値は指定できません")
	ErrEmptyPrompt             = errors.New("プロンプトを空にすることはできません")
	ErrEmptyPath               = errors.New("ファイルパスを空にすることはできません")
)

// FileProcessingError は、ファイルが ACTIVE 以外の終端状態に到達したことを示します。
type FileProcessingError struct {
	Name  string
	State genai.FileState
}

func (e *FileProcessingError) Error() string {
	return fmt.Sprintf("file %s failed to process (state: %s)", e.Name, e.State)
}

func newFileHandle(f *genai.File) *FileHandle {
	return &FileHandle{
		Name:        f.Name,
		DisplayName: f.DisplayName,
		URI:         f.URI,
		MIMEType:    f.MIMEType,
		State:       f.State,
	}
}
