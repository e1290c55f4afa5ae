package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/trakt-agent/server/internal/agent/model"
)

//go:embed template/escrow_prompt.txt
var escrowSystemPrompt string

//go:embed template/escrow_base.sol
var baseEscrowContract string

// RenderEscrowSystem renders the escrow-generation system prompt, templated
// over the embedded base escrow contract, and triggers prompt callbacks.
// Rendered as a Go template because the Solidity context is full of braces.
func RenderEscrowSystem(ctx context.Context, cfg model.PromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(escrowSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"ChainName":    cfg.ChainName,
		"BaseContract": baseEscrowContract,
	})
	if err != nil {
		return "", fmt.Errorf("escrow prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("escrow prompt render: empty result")
	}
	return msgs[0].Content, nil
}
