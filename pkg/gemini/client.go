package gemini

import (
	"context"
	"fmt"
	"io"

	"github.com/shouni/netarmor/retry"
	"google.golang.org/genai"
)

// NewClient は提供された設定に基づいて、新しい Gemini クライアントを作成します。
// 設定の検証はネットワーク呼び出しより前に行われます。
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, cfg.toClientConfig())
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの作成に失敗しました: %w", err)
	}

	return NewClientWithServices(cfg, client.Files, client.Models)
}

// NewClientWithServices は任意の FileStore と ContentGenerator を使ってクライアントを作成します。
func NewClientWithServices(cfg Config, files FileStore, models ContentGenerator) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		files:        files,
		models:       models,
		model:        cfg.getModel(),
		generation:   cfg.generationConfig(),
		retryConfig:  buildRetryConfig(cfg),
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		clock:        cfg.Clock,
		out:          cfg.Output,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollingInterval
	}
	if c.pollTimeout < 0 {
		c.pollTimeout = DefaultPollingTimeout
	}
	if c.clock == nil {
		c.clock = realClock{}
	}
	if c.out == nil {
		c.out = io.Discard
	}
	return c, nil
}

// Output は進捗と応答の出力先を返します。
func (c *Client) Output() io.Writer {
	return c.out
}

// Model は使用するモデル名を返します。
func (c *Client) Model() string {
	return c.model
}

// buildRetryConfig は Config からリトライ設定を組み立てます。
func buildRetryConfig(cfg Config) retry.Config {
	rc := retry.Config{
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: DefaultInitialDelay,
		MaxInterval:     DefaultMaxDelay,
	}
	if cfg.MaxRetries > 0 {
		rc.MaxRetries = cfg.MaxRetries
	}
	if cfg.InitialDelay > 0 {
		rc.InitialInterval = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		rc.MaxInterval = cfg.MaxDelay
	}
	return rc
}

// generate は共通の API 呼び出しとリトライロジックをカプセル化します。
func (c *Client) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*Response, error) {
	var finalResp *Response

	op := func() error {
		resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return err
		}
		text, extractErr := extractTextFromResponse(resp)
		if extractErr != nil {
			return extractErr
		}
		finalResp = &Response{Text: text, RawResponse: resp}
		return nil
	}

	// リトライ無効時は netarmor を経由せず単一試行とします。
	if c.retryConfig.MaxRetries == 0 {
		if err := op(); err != nil {
			return nil, err
		}
		return finalResp, nil
	}

	err := retry.Do(ctx, c.retryConfig, fmt.Sprintf("Gemini API 呼び出し（モデル: %s）", c.model), op, shouldRetry)
	if err != nil {
		return nil, err
	}

	return finalResp, nil
}
