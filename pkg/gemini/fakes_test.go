package gemini

import (
	"context"
	"errors"
	"io"
	"time"

	"google.golang.org/genai"
)

// fakeFiles は状態遷移の列をあらかじめ与えられる FileStore です。
type fakeFiles struct {
	states    map[string][]genai.FileState
	getCalls  map[string]int
	getErr    error
	uploadErr error
	uploaded  []*genai.UploadFileConfig
	deleted   []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		states:   map[string][]genai.FileState{},
		getCalls: map[string]int{},
	}
}

func (f *fakeFiles) Upload(_ context.Context, r io.Reader, cfg *genai.UploadFileConfig) (*genai.File, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, cfg)
	name := "files/" + cfg.DisplayName
	return &genai.File{
		Name:        name,
		DisplayName: cfg.DisplayName,
		MIMEType:    cfg.MIMEType,
		URI:         "https://generativelanguage.googleapis.com/v1beta/" + name,
		State:       genai.FileStateProcessing,
	}, nil
}

func (f *fakeFiles) Get(_ context.Context, name string, _ *genai.GetFileConfig) (*genai.File, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	seq := f.states[name]
	i := f.getCalls[name]
	f.getCalls[name]++
	if len(seq) == 0 {
		return nil, errors.New("unknown file " + name)
	}
	if i >= len(seq) {
		i = len(seq) - 1
	}
	return &genai.File{Name: name, State: seq[i]}, nil
}

func (f *fakeFiles) Delete(_ context.Context, name string, _ *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error) {
	f.deleted = append(f.deleted, name)
	return &genai.DeleteFileResponse{}, nil
}

// fakeModels は呼び出し内容を記録し、固定の応答を返す ContentGenerator です。
type fakeModels struct {
	reply    string
	errs     []error
	calls    int
	contents [][]*genai.Content
	configs  []*genai.GenerateContentConfig
}

func (m *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.contents = append(m.contents, contents)
	m.configs = append(m.configs, cfg)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content:      genai.NewContentFromText(m.reply, genai.RoleModel),
		}},
	}, nil
}

// fakeClock は実時間を使わずに Sleep の回数と時間を記録します。
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}
