package gemini

import (
	"context"
	"io"
	"time"

	"google.golang.org/genai"
)

// FileStore は File API の操作のうち、本クライアントが利用するものです。
// *genai.Files がこれを満たします。
type FileStore interface {
	Upload(ctx context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

// ContentGenerator はコンテンツ生成 API です。
// *genai.Models がこれを満たします。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Clock はポーリングの待機と経過時間の計測を抽象化します。
// テストでは実時間を使わない実装に差し替えます。
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
