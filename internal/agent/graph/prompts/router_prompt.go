package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/trakt-agent/server/internal/agent/model"
)

//go:embed template/router_prompt.txt
var routerSystemPrompt string

//go:embed template/fallback_prompt.txt
var fallbackSystemPrompt string

//go:embed template/contribute_prompt.txt
var contributeSystemPrompt string

// RenderRouterSystem renders the intent-classification system prompt via the
// Eino prompt component. This triggers Prompt callbacks and returns the final
// system prompt string.
func RenderRouterSystem(ctx context.Context, cfg model.PromptConfig) (string, error) {
	return renderReplaced(ctx, routerSystemPrompt, cfg, "router")
}

// RenderFallbackSystem renders the conversational fallback system prompt used
// for turns routed as unknown.
func RenderFallbackSystem(ctx context.Context, cfg model.PromptConfig) (string, error) {
	return renderReplaced(ctx, fallbackSystemPrompt, cfg, "fallback")
}

// RenderContributeSystem renders the contribution-report system prompt.
func RenderContributeSystem(ctx context.Context, cfg model.PromptConfig) (string, error) {
	return renderReplaced(ctx, contributeSystemPrompt, cfg, "contribute")
}

// renderReplaced substitutes known tokens with a string replacer (so JSON
// braces in templates stay untouched), then runs the result through the Eino
// prompt component using a messages placeholder to emit callbacks.
func renderReplaced(ctx context.Context, template string, cfg model.PromptConfig, name string) (string, error) {
	content := strings.NewReplacer(
		"{platform_name}", cfg.PlatformName,
		"{chain_name}", cfg.ChainName,
	).Replace(template)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("%s prompt callbacks: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("%s prompt callbacks: empty result", name)
	}
	return msgs[0].Content, nil
}
