package logic

import (
	"context"
	"fmt"

	"agroai-backend/internal/common"
	"agroai-backend/internal/db"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	langopenai "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/memory"
	"go.uber.org/zap"
)

const (
	MaxTokenPerReply = 300
	historyWindow    = 10
)

type LLMConfig struct {
	Token   string
	Model   string
	BaseURL string
}

// LangChainResponder answers through any OpenAI compatible endpoint
// (Hunyuan's OpenAI gateway by default)
type LangChainResponder struct {
	llm    llms.Model
	logger *zap.Logger
}

func NewLangChainResponder(cfg LLMConfig, logger *zap.Logger) (*LangChainResponder, error) {
	model := cfg.Model
	if model == "" {
		model = common.HunyuanModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = common.HunyuanBaseUrl
	}
	llm, err := langopenai.New(
		langopenai.WithToken(cfg.Token),
		langopenai.WithModel(model),
		langopenai.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}
	return newLangChainResponder(llm, logger), nil
}

func newLangChainResponder(llm llms.Model, logger *zap.Logger) *LangChainResponder {
	return &LangChainResponder{llm: llm, logger: logger}
}

func (r *LangChainResponder) Respond(ctx context.Context, req ChatRequest) (string, error) {
	chatMemory := memory.NewConversationWindowBuffer(historyWindow)
	history := chatMemory.ChatHistory
	if err := history.AddUserMessage(ctx, languagePrompt(req.Language)); err != nil {
		return "", err
	}
	for _, m := range recentMessages(req.History, historyWindow) {
		var err error
		if m.Type == db.MessageUser {
			err = history.AddUserMessage(ctx, m.Content)
		} else {
			err = history.AddAIMessage(ctx, m.Content)
		}
		if err != nil {
			return "", err
		}
	}

	chain := chains.NewConversation(r.llm, chatMemory)
	resp, err := chains.Run(ctx, chain, req.Message, chains.WithMaxTokens(MaxTokenPerReply))
	if err != nil {
		r.logger.Warn("llm call failed", zap.Uint("user_id", req.UserID), zap.Error(err))
		return "", fmt.Errorf("llm respond: %w", err)
	}
	return resp, nil
}

func languagePrompt(lang string) string {
	return fmt.Sprintf("%s Preferred language code: %s.", common.RolePrompt, ResolveLanguage(lang))
}

func recentMessages(history []db.ChatMessage, n int) []db.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
