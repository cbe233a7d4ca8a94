package gemini

import (
	"context"

	"google.golang.org/genai"
)

// SeedModelReply は会話の初期履歴に含める、モデル側の定型応答です。
const SeedModelReply = "Okay, I can help with that. Here’s a comparison of the two paper bags based on the video you provided:\n\n" +
	"**Before:**\n\n" +
	"*   The bag appears to be mostly in good condition, with no visible major damage or rips to its structure\n" +
	"*  There is an order tag attached to the bag, which has “Order #” and “Bag” on the tag.\n" +
	"*   The bag is brown paper with white printing. One side has the logo of “Wolt market” on the center of the bag.\n" +
	"*   The other side has a large reindeer drawing on it, as well as an order tag with “Order #” and “Bag” written on the tag.\n\n" +
	"**After:**\n\n" +
	"*   The bag has a tear on the left-hand side where the handles attach to the bag, and is now open. This is major damage.\n" +
	"* There is a red mark drawn on the Wolt market side of the bag. This is minor damage.\n" +
	"* The bag is now open and is no longer laying flat on the table.\n" +
	"* The bag has a tear on the bottom fold of the bag. This is minor damage.\n\n" +
	"Overall, the first bag shows little to no damage while the second video shows several small rips to the bag and a tear on the side, which appears to be more of a major tear."

// DefaultComparisonPrompt は送信メッセージが指定されなかった場合に使う質問文です。
const DefaultComparisonPrompt = "Please compare these two paper bags. One video shows the before and the other video shows the after. " +
	"Please list out in bullet points any damage you see and on what part of the bag. " +
	"Also say if it is minor damage (like a scratch or discoloring) or if major damage (like ripping or broken parts). "

// Response は生成結果のラッパーです。
type Response struct {
	Text        string
	RawResponse *genai.GenerateContentResponse
}

// ChatSession はターン履歴と生成設定を保持する会話です。
// 履歴はプロセスの生存期間中のみ保持されます。
type ChatSession struct {
	client  *Client
	history []*genai.Content
}

// SeedHistory は before/after の2ファイルを添付したユーザーターンと、
// 定型のモデル応答からなる2ターンの初期履歴を返します。
// 静的なデータのため、同じハンドルに対しては常に同一の履歴になります。
func SeedHistory(before, after *FileHandle) []*genai.Content {
	return []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(before.URI, before.MIMEType),
			genai.NewPartFromURI(after.URI, after.MIMEType),
		}, genai.RoleUser),
		genai.NewContentFromText(SeedModelReply, genai.RoleModel),
	}
}

// StartChat は指定した履歴を持つ新しいセッションを作成します。
// 渡したスライスはコピーされるため、呼び出し側の変更はセッションに影響しません。
func (c *Client) StartChat(history []*genai.Content) *ChatSession {
	h := make([]*genai.Content, len(history))
	copy(h, history)
	return &ChatSession{client: c, history: h}
}

// History は現在のターン履歴のコピーを返します。
func (s *ChatSession) History() []*genai.Content {
	h := make([]*genai.Content, len(s.history))
	copy(h, s.history)
	return h
}

// SendMessage はユーザーメッセージを送信し、応答テキストを返します。
// 成功した場合のみ、ユーザーターンとモデルの応答が履歴に追加されます。
func (s *ChatSession) SendMessage(ctx context.Context, text string) (*Response, error) {
	if text == "" {
		return nil, ErrEmptyPrompt
	}

	userTurn := genai.NewContentFromText(text, genai.RoleUser)
	contents := make([]*genai.Content, 0, len(s.history)+1)
	contents = append(contents, s.history...)
	contents = append(contents, userTurn)

	resp, err := s.client.generate(ctx, contents, s.client.generation.toContentConfig())
	if err != nil {
		return nil, err
	}

	modelTurn := resp.RawResponse.Candidates[0].Content
	if modelTurn == nil {
		modelTurn = genai.NewContentFromText(resp.Text, genai.RoleModel)
	}
	s.history = append(s.history, userTurn, modelTurn)
	return resp, nil
}
