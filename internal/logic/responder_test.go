package logic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agroai-backend/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tccommon "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	v20230901 "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/hunyuan/v20230901"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

func TestKeywordResponderIrrigation(t *testing.T) {
	r := NewKeywordResponder()
	reply, err := r.Respond(context.Background(), ChatRequest{Message: "What about irrigation?", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, IrrigationAdvice, reply)
}

func TestKeywordResponderFirstMatchWins(t *testing.T) {
	r := NewKeywordResponder()
	// "weather" comes before "price" in the rule order
	reply, _ := r.Respond(context.Background(), ChatRequest{Message: "Will the PRICE drop if the Weather turns?"})
	assert.Equal(t, responseTables["en"].rules[0].response, reply)
}

func TestKeywordResponderDefault(t *testing.T) {
	r := NewKeywordResponder()
	reply, _ := r.Respond(context.Background(), ChatRequest{Message: "namaste", Language: "en"})
	assert.Equal(t, responseTables["en"].fallback, reply)

	reply, _ = r.Respond(context.Background(), ChatRequest{Message: "namaste", Language: "hi"})
	assert.Equal(t, responseTables["hi"].fallback, reply)
}

func TestKeywordResponderHindi(t *testing.T) {
	r := NewKeywordResponder()

	native, _ := r.Respond(context.Background(), ChatRequest{Message: "सिंचाई कब करें?", Language: "hi"})
	english, _ := r.Respond(context.Background(), ChatRequest{Message: "irrigation", Language: "hi"})
	assert.Equal(t, native, english)
	assert.Contains(t, native, "सिंचाई")
}

func TestResolveLanguage(t *testing.T) {
	assert.Equal(t, "en", ResolveLanguage(""))
	assert.Equal(t, "en", ResolveLanguage("fr"))
	assert.Equal(t, "hi", ResolveLanguage("HI"))
	assert.Equal(t, "hi", ResolveLanguage(" hi "))
	assert.Equal(t, "en", ResolveLanguage("hi-IN"))
	assert.Equal(t, "en", ResolveLanguage("en"))
}

// recordingModel llms.Model returning a canned reply
type recordingModel struct {
	reply   string
	err     error
	prompts []string
}

func (m *recordingModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLangChainResponderIncludesHistory(t *testing.T) {
	model := &recordingModel{reply: "Use drip irrigation."}
	r := newLangChainResponder(model, zap.NewNop())

	reply, err := r.Respond(context.Background(), ChatRequest{
		UserID:   1,
		Message:  "How should I water tomatoes?",
		Language: "en",
		History: []db.ChatMessage{
			{Type: db.MessageUser, Content: "I grow tomatoes"},
			{Type: db.MessageBot, Content: "Tomatoes need medium water"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Use drip irrigation.", reply)

	prompt := strings.Join(model.prompts, "\n")
	assert.Contains(t, prompt, "I grow tomatoes")
	assert.Contains(t, prompt, "Tomatoes need medium water")
	assert.Contains(t, prompt, "How should I water tomatoes?")
	assert.Contains(t, prompt, "agronomist")
}

func TestLangChainResponderError(t *testing.T) {
	r := newLangChainResponder(&recordingModel{err: errors.New("quota")}, zap.NewNop())
	_, err := r.Respond(context.Background(), ChatRequest{Message: "hi"})
	assert.Error(t, err)
}

type fakeHunyuan struct {
	request *v20230901.ChatCompletionsRequest
	resp    *v20230901.ChatCompletionsResponse
	err     error
}

func (f *fakeHunyuan) ChatCompletionsWithContext(_ context.Context, request *v20230901.ChatCompletionsRequest) (*v20230901.ChatCompletionsResponse, error) {
	f.request = request
	return f.resp, f.err
}

func hunyuanReply(content string) *v20230901.ChatCompletionsResponse {
	resp := v20230901.NewChatCompletionsResponse()
	resp.Response = &v20230901.ChatCompletionsResponseParams{
		Choices: []*v20230901.Choice{{
			Message: &v20230901.Message{
				Role:    tccommon.StringPtr("assistant"),
				Content: tccommon.StringPtr(content),
			},
		}},
	}
	return resp
}

func TestHunyuanResponder(t *testing.T) {
	client := &fakeHunyuan{resp: hunyuanReply("Apply neem oil.")}
	r := &HunyuanResponder{client: client, model: "hunyuan-lite", logger: zap.NewNop()}

	reply, err := r.Respond(context.Background(), ChatRequest{
		Message:  "Aphids on mustard",
		Language: "hi",
		History:  []db.ChatMessage{{Type: db.MessageUser, Content: "hello"}, {Type: db.MessageBot, Content: "namaste"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Apply neem oil.", reply)

	req := client.request
	require.NotNil(t, req)
	assert.Equal(t, "hunyuan-lite", *req.Model)
	assert.False(t, *req.Stream)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, "system", *req.Messages[0].Role)
	assert.Contains(t, *req.Messages[0].Content, "hi")
	assert.Equal(t, "user", *req.Messages[1].Role)
	assert.Equal(t, "assistant", *req.Messages[2].Role)
	assert.Equal(t, "Aphids on mustard", *req.Messages[3].Content)
}

func TestHunyuanResponderEmptyReply(t *testing.T) {
	r := &HunyuanResponder{client: &fakeHunyuan{resp: v20230901.NewChatCompletionsResponse()}, logger: zap.NewNop()}
	_, err := r.Respond(context.Background(), ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, errEmptyReply)
}

func TestHunyuanMessagesKeepsRecentWindow(t *testing.T) {
	history := make([]db.ChatMessage, 0, 15)
	for i := 0; i < 15; i++ {
		history = append(history, db.ChatMessage{Type: db.MessageUser, Content: "q"})
	}
	messages := hunyuanMessages(ChatRequest{Message: "now", History: history})
	assert.Len(t, messages, historyWindow+2)
}
