package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// --- buildRetryConfig のテスト ---
func TestBuildRetryConfig(t *testing.T) {
	t.Run("デフォルト値が適用されること", func(t *testing.T) {
		cfg := Config{} // 全てゼロ値の状態
		got := buildRetryConfig(cfg)
		if got.MaxRetries != DefaultMaxRetries {
			t.Errorf("MaxRetries = %v, want %v", got.MaxRetries, DefaultMaxRetries)
		}
		if got.InitialInterval != DefaultInitialDelay {
			t.Errorf("InitialInterval = %v, want %v", got.InitialInterval, DefaultInitialDelay)
		}
		if got.MaxInterval != DefaultMaxDelay {
			t.Errorf("MaxInterval = %v, want %v", got.MaxInterval, DefaultMaxDelay)
		}
	})

	t.Run("設定値で上書きされること", func(t *testing.T) {
		cfg := Config{
			MaxRetries:   5,
			InitialDelay: 10 * time.Second,
			MaxDelay:     60 * time.Second,
		}
		got := buildRetryConfig(cfg)
		if got.MaxRetries != 5 || got.InitialInterval != 10*time.Second || got.MaxInterval != 60*time.Second {
			t.Errorf("設定が正しく適用されていません: %+v", got)
		}
	})
}

// --- shouldRetry のテスト ---
func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nilはリトライしない", nil, false},
		{"APIResponseErrorはリトライしない", &APIResponseError{msg: "blocked"}, false},
		{"コンテキストキャンセルはリトライしない", context.Canceled, false},
		{"gRPC Unavailableはリトライする", status.Error(codes.Unavailable, "service down"), true},
		{"gRPC Internalはリトライする", status.Error(codes.Internal, "internal error"), true},
		{"gRPC InvalidArgumentはリトライしない", status.Error(codes.InvalidArgument, "bad request"), false},
		{"EOFはリトライする", io.EOF, true},
		{"HTTP 503はリトライする", genai.APIError{Code: 503, Message: "unavailable"}, true},
		{"HTTP 429はリトライする", fmt.Errorf("wrapped: %w", genai.APIError{Code: 429}), true},
		{"HTTP 400はリトライしない", genai.APIError{Code: 400, Message: "bad request"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.err); got != tt.want {
				t.Errorf("shouldRetry(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// --- extractTextFromResponse のテスト ---
func TestExtractTextFromResponse(t *testing.T) {
	t.Run("空のレスポンスはエラー", func(t *testing.T) {
		if _, err := extractTextFromResponse(&genai.GenerateContentResponse{}); err == nil {
			t.Error("エラーが返されるべきです")
		}
	})

	t.Run("ブロックされた場合はエラー", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}}
		if _, err := extractTextFromResponse(resp); err == nil {
			t.Error("エラーが返されるべきです")
		}
	})

	t.Run("STOP でもテキストが無い場合はエラー", func(t *testing.T) {
		for _, content := range []*genai.Content{nil, {Role: string(genai.RoleModel)}, genai.NewContentFromText("", genai.RoleModel)} {
			resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonStop,
				Content:      content,
			}}}
			_, err := extractTextFromResponse(resp)
			var apiErr *APIResponseError
			if !errors.As(err, &apiErr) {
				t.Errorf("APIResponseError を期待しましたが %v が返りました", err)
			}
		}
	})

	t.Run("最初のテキストパーツを返す", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content:      genai.NewContentFromText("damage list", genai.RoleModel),
		}}}
		got, err := extractTextFromResponse(resp)
		if err != nil || got != "damage list" {
			t.Errorf("extractTextFromResponse() = %q, %v", got, err)
		}
	})
}
