package nodes

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	"github.com/trakt-agent/server/internal/agent/graph/conversations"
	"github.com/trakt-agent/server/internal/agent/graph/prompts"
	"github.com/trakt-agent/server/internal/agent/model"
	logx "github.com/trakt-agent/server/pkg/logger"
)

// NewFallbackNode creates the conversational node for turns classified as
// unknown. This second generation call belongs to the classification stage,
// so unlike the other terminal nodes its errors propagate: there is no
// meaningful per-node fallback earlier in the pipeline.
func NewFallbackNode(
	cm einomodel.BaseChatModel,
	modelName string,
	mm *conversations.MessagesManager,
	promptCfg model.PromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision model.RouteDecision) (*model.AgentResponse, error) {
		conversationID, _ := stateSnapshot(ctx)
		logx.Debug().Str("conversation_id", conversationID).Msg("Answering with conversational fallback")

		systemPrompt, err := prompts.RenderFallbackSystem(ctx, promptCfg)
		if err != nil {
			return nil, fmt.Errorf("render fallback prompt: %w", err)
		}

		messages, err := mm.NodeContext(ctx, conversationID, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("build fallback context: %w", err)
		}

		out, err := cm.Generate(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("fallback generation: %w", err)
		}
		appendRawMessage(ctx, out.Content)
		addUsageCost(ctx, NodeFallback, modelName, out)

		return &model.AgentResponse{Result: out.Content}, nil
	})
}
