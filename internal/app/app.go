package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-video-compare/pkg/gemini"
)

// Request は1回の比較実行に必要な入力です。
type Request struct {
	BeforePath string
	AfterPath  string
	MIMEType   string
	Message    string
	// Cleanup が true の場合、終了時にアップロードしたファイルを削除します。
	Cleanup bool
}

func (r Request) validate() error {
	if r.BeforePath == "" || r.AfterPath == "" {
		return errors.New("before and after video paths are required")
	}
	return nil
}

// cleanupTimeout はテストで短縮できるよう変数にしています。
var cleanupTimeout = gemini.CleanupTimeout

// deleteUploaded は呼び出し元がキャンセルされていても削除を試みますが、
// cleanupTimeout を超えて待つことはありません。
func deleteUploaded(ctx context.Context, client *gemini.Client, name string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := client.DeleteFile(dctx, name); err != nil {
		slog.WarnContext(ctx, "Failed to cleanup uploaded file", "name", name, "error", err)
	}
}

// Run はアップロード、処理完了の待機、会話の送信を順に実行し、応答を出力します。
// いずれかの段階で失敗した時点で処理を打ち切り、そのエラーを返します。
func Run(ctx context.Context, client *gemini.Client, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	message := req.Message
	if message == "" {
		message = gemini.DefaultComparisonPrompt
	}

	var uploaded []*gemini.FileHandle
	if req.Cleanup {
		defer func() {
			for _, h := range uploaded {
				deleteUploaded(ctx, client, h.Name)
			}
		}()
	}

	for _, path := range []string{req.BeforePath, req.AfterPath} {
		h, err := client.UploadFile(ctx, path, req.MIMEType)
		if err != nil {
			return err
		}
		uploaded = append(uploaded, h)
	}

	if err := client.WaitForFilesActive(ctx, uploaded); err != nil {
		return err
	}

	session := client.StartChat(gemini.SeedHistory(uploaded[0], uploaded[1]))
	resp, err := session.SendMessage(ctx, message)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	fmt.Fprintln(client.Output(), resp.Text)
	return nil
}
