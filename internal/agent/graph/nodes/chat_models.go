package nodes

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/trakt-agent/server/internal/agent/model"
	logx "github.com/trakt-agent/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
// Providers are an ordered preference list: the first provider whose client
// and models construct successfully is used; the rest are fallbacks.
type ChatModelConfig struct {
	Providers []model.ProviderConfig
	RouterCfg *model.RouterModelConfig
	RespCfg   *model.ResponseModelConfig
}

// ChatModels holds the router and response chat models. Fields are the eino
// chat-model interface so tests can substitute fakes.
type ChatModels struct {
	Router            einomodel.BaseChatModel
	Response          einomodel.BaseChatModel
	RouterModelName   string
	ResponseModelName string
	ProviderName      string
}

// NewChatModels walks the provider list and builds both chat models against
// the first provider that initializes. Routing logic never sees provider
// identity beyond this preference order.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if len(config.Providers) == 0 {
		return nil, fmt.Errorf("no generation providers configured")
	}
	if config.RouterCfg == nil || config.RespCfg == nil {
		return nil, fmt.Errorf("model configs are nil")
	}

	var lastErr error
	for _, p := range config.Providers {
		cms, err := newProviderModels(ctx, p, config.RouterCfg, config.RespCfg)
		if err != nil {
			logx.Warn().Err(err).Str("provider", p.Name).Msg("Provider initialization failed, trying next")
			lastErr = err
			continue
		}
		logx.Debug().Str("provider", p.Name).Msg("Chat models initialized")
		return cms, nil
	}
	return nil, fmt.Errorf("all generation providers failed to initialize: %w", lastErr)
}

func newProviderModels(
	ctx context.Context,
	p model.ProviderConfig,
	routerCfg *model.RouterModelConfig,
	respCfg *model.ResponseModelConfig,
) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  p.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = p.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating %s client: %w", p.Name, err)
	}

	routerModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       routerCfg.Model,
		Temperature: &routerCfg.Temperature,
		MaxTokens:   &routerCfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating router model: %w", err)
	}

	responseModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       respCfg.Model,
		Temperature: &respCfg.Temperature,
		MaxTokens:   &respCfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	return &ChatModels{
		Router:            routerModel,
		Response:          responseModel,
		RouterModelName:   routerCfg.Model,
		ResponseModelName: respCfg.Model,
		ProviderName:      p.Name,
	}, nil
}
