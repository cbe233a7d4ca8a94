package gemini

import (
	"fmt"
	"io"
	"time"

	"google.golang.org/genai"
)

// Config は初期化用の設定です。
// ゼロ値のフィールドには Default* の値が適用されます。
type Config struct {
	APIKey string
	Model  string

	Temperature      *float32
	TopP             *float32
	TopK             *float32
	MaxOutputTokens  int32
	ResponseMIMEType string

	PollInterval time.Duration
	PollTimeout  time.Duration

	// チャット送信のリトライ設定。MaxRetries が 0 の場合は1回だけ試行します。
	MaxRetries   uint64
	InitialDelay time.Duration
	MaxDelay     time.Duration

	Clock  Clock     // nil の場合は実時間
	Output io.Writer // 進捗と応答の出力先。nil の場合は出力しません
}

// validate は設定内容が正しいか、必須項目や値の範囲をチェックします。
func (c Config) validate() error {
	if c.APIKey == "" {
		return ErrAPIKeyRequired
	}
	if err := c.validateTemperature(); err != nil {
		return err
	}
	if c.TopP != nil && (*c.TopP < 0.0 || *c.TopP > 1.0) {
		return fmt.Errorf("%w (入力値: %f)", ErrInvalidTopP, *c.TopP)
	}
	if (c.TopK != nil && *c.TopK < 0) || c.MaxOutputTokens < 0 {
		return ErrInvalidGenerationConfig
	}
	return nil
}

// validateTemperature は Temperature の値が許容範囲内にあるかのみを検証します。
func (c Config) validateTemperature() error {
	if c.Temperature == nil {
		return nil
	}
	val := *c.Temperature
	if val < 0.0 || val > 2.0 {
		return fmt.Errorf("%w (入力値: %f)", ErrInvalidTemperature, val)
	}
	return nil
}

// getTemperature は検証済みの Temperature またはデフォルト値を返します。
func (c Config) getTemperature() float32 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

func (c Config) getModel() string {
	if c.Model == "" {
		return DefaultModel
	}
	return c.Model
}

func (c Config) generationConfig() GenerationConfig {
	g := GenerationConfig{
		Temperature:      c.getTemperature(),
		TopP:             DefaultTopP,
		TopK:             DefaultTopK,
		MaxOutputTokens:  DefaultMaxOutputTokens,
		ResponseMIMEType: DefaultResponseMIMEType,
	}
	if c.TopP != nil {
		g.TopP = *c.TopP
	}
	if c.TopK != nil {
		g.TopK = *c.TopK
	}
	if c.MaxOutputTokens > 0 {
		g.MaxOutputTokens = c.MaxOutputTokens
	}
	if c.ResponseMIMEType != "" {
		g.ResponseMIMEType = c.ResponseMIMEType
	}
	return g
}

// toClientConfig Config を genai.ClientConfig に変換します。
// File API は Gemini API バックエンドでのみ利用できます。
func (c Config) toClientConfig() *genai.ClientConfig {
	return &genai.ClientConfig{
		APIKey:  c.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
}

// toContentConfig は GenerationConfig を SDK のリクエスト設定に変換します。
// 毎回新しい値を返すため、呼び出し側で変更しても元の設定には影響しません。
func (g GenerationConfig) toContentConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.Temperature),
		TopP:             genai.Ptr(g.TopP),
		TopK:             genai.Ptr(g.TopK),
		MaxOutputTokens:  g.MaxOutputTokens,
		ResponseMIMEType: g.ResponseMIMEType,
	}
}
