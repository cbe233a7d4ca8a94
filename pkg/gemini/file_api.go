package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"google.golang.org/genai"
)

// UploadFile はローカルファイルを File API にアップロードし、ハンドルを返します。
// mimeType は解釈せずにそのまま API へ渡します。失敗時のリトライは行いません。
func (c *Client) UploadFile(ctx context.Context, path, mimeType string) (*FileHandle, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	uploadCfg := &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: filepath.Base(path),
	}

	file, err := c.files.Upload(ctx, f, uploadCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to Gemini File API: %w", err)
	}

	h := newFileHandle(file)
	fmt.Fprintf(c.out, "Uploaded file '%s' as: %s\n", h.DisplayName, h.URI)
	slog.DebugContext(ctx, "File API object uploaded", "name", h.Name, "state", h.State)
	return h, nil
}

// CheckState はサーバーが返した状態をポーリング判定用の Readiness に変換します。
// PROCESSING 以外で ACTIVE でないものはすべて失敗の終端状態として扱います。
func CheckState(state genai.FileState) Readiness {
	switch state {
	case genai.FileStateProcessing:
		return ReadinessPending
	case genai.FileStateActive:
		return ReadinessReady
	default:
		return ReadinessFailed
	}
}

// WaitForFilesActive は全てのハンドルが ACTIVE になるまで、入力順に1件ずつ待機します。
// いずれかが失敗状態になった時点で *FileProcessingError を返し、残りのハンドルは照会しません。
func (c *Client) WaitForFilesActive(ctx context.Context, handles []*FileHandle) error {
	fmt.Fprintln(c.out, "Waiting for file processing...")
	for _, h := range handles {
		if err := c.waitForFileActive(ctx, h.Name); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.out, "...all files ready")
	fmt.Fprintln(c.out)
	return nil
}

// waitForFileActive は指定されたファイルが終端状態になるまで固定間隔でポーリングします。
func (c *Client) waitForFileActive(ctx context.Context, fileName string) error {
	start := c.clock.Now()

	f, err := c.getFile(ctx, fileName)
	if err != nil {
		return err
	}
	for CheckState(f.State) == ReadinessPending {
		if c.pollTimeout > 0 && c.clock.Now().Sub(start) >= c.pollTimeout {
			return fmt.Errorf("processing for %q timed out after %v", fileName, c.pollTimeout)
		}
		fmt.Fprint(c.out, ".")
		slog.DebugContext(ctx, "Gemini File API processing...", "name", fileName)
		if err := c.clock.Sleep(ctx, c.pollInterval); err != nil {
			return err
		}
		if f, err = c.getFile(ctx, fileName); err != nil {
			return err
		}
	}

	if CheckState(f.State) != ReadinessReady {
		slog.WarnContext(ctx, "File reached a non-active terminal state", "name", fileName, "state", f.State)
		return &FileProcessingError{Name: fileName, State: f.State}
	}
	return nil
}

func (c *Client) getFile(ctx context.Context, fileName string) (*genai.File, error) {
	f, err := c.files.Get(ctx, fileName, &genai.GetFileConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to check file status: %w", err)
	}
	return f, nil
}

// DeleteFile は指定された名前のファイルを File API から削除します。
func (c *Client) DeleteFile(ctx context.Context, fileName string) error {
	if fileName == "" {
		return nil
	}
	_, err := c.files.Delete(ctx, fileName, nil)
	if err != nil {
		return fmt.Errorf("failed to delete file %q: %w", fileName, err)
	}
	slog.InfoContext(ctx, "File API object deleted", "name", fileName)
	return nil
}
