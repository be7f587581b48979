package logic

import (
	"context"
	"errors"
	"fmt"

	"agroai-backend/internal/common"
	"agroai-backend/internal/db"

	tccommon "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	v20230901 "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/hunyuan/v20230901"
	"go.uber.org/zap"
)

const DefaultHunyuanRegion = "ap-guangzhou"

var errEmptyReply = errors.New("empty reply")

type HunyuanConfig struct {
	SecretID  string
	SecretKey string
	Region    string
	Model     string
}

type hunyuanClient interface {
	ChatCompletionsWithContext(ctx context.Context, request *v20230901.ChatCompletionsRequest) (*v20230901.ChatCompletionsResponse, error)
}

// HunyuanResponder Tencent Cloud Hunyuan ChatCompletions, non-streaming
type HunyuanResponder struct {
	client hunyuanClient
	model  string
	logger *zap.Logger
}

func NewHunyuanResponder(cfg HunyuanConfig, logger *zap.Logger) (*HunyuanResponder, error) {
	credential := tccommon.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = common.HunyuanEndpoint
	region := cfg.Region
	if region == "" {
		region = DefaultHunyuanRegion
	}
	client, err := v20230901.NewClient(credential, region, cpf)
	if err != nil {
		return nil, fmt.Errorf("init hunyuan client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = common.HunyuanModel
	}
	return &HunyuanResponder{client: client, model: model, logger: logger}, nil
}

func (r *HunyuanResponder) Respond(ctx context.Context, req ChatRequest) (string, error) {
	request := v20230901.NewChatCompletionsRequest()
	request.Model = tccommon.StringPtr(r.model)
	request.Messages = hunyuanMessages(req)
	request.Stream = tccommon.BoolPtr(false)

	resp, err := r.client.ChatCompletionsWithContext(ctx, request)
	if err != nil {
		r.logger.Warn("hunyuan call failed", zap.Uint("user_id", req.UserID), zap.Error(err))
		return "", fmt.Errorf("hunyuan respond: %w", err)
	}
	if resp == nil || resp.Response == nil {
		return "", errEmptyReply
	}
	for _, choice := range resp.Response.Choices {
		if choice != nil && choice.Message != nil && choice.Message.Content != nil {
			return *choice.Message.Content, nil
		}
	}
	return "", errEmptyReply
}

// hunyuanMessages system prompt, recent history, then the new question
func hunyuanMessages(req ChatRequest) []*v20230901.Message {
	history := recentMessages(req.History, historyWindow)
	messages := make([]*v20230901.Message, 0, len(history)+2)
	messages = append(messages, &v20230901.Message{
		Role:    tccommon.StringPtr("system"),
		Content: tccommon.StringPtr(languagePrompt(req.Language)),
	})
	for _, m := range history {
		role := "assistant"
		if m.Type == db.MessageUser {
			role = "user"
		}
		messages = append(messages, &v20230901.Message{
			Role:    tccommon.StringPtr(role),
			Content: tccommon.StringPtr(m.Content),
		})
	}
	messages = append(messages, &v20230901.Message{
		Role:    tccommon.StringPtr("user"),
		Content: tccommon.StringPtr(req.Message),
	})
	return messages
}
