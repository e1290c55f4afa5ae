package nodes

import (
	"context"
	"encoding/json"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	"github.com/trakt-agent/server/internal/agent/graph/conversations"
	"github.com/trakt-agent/server/internal/agent/graph/prompts"
	"github.com/trakt-agent/server/internal/agent/model"
	logx "github.com/trakt-agent/server/pkg/logger"
)

const (
	contributeAck     = "Thank you for your contribution. Your response has been received successfully and will be reviewed by our team."
	contributeAckSoft = "Your error has been received successfully and will be reviewed by our team."
)

// NewContributeNode creates the terminal node for contributions and error
// reports: one generation call shaping the report as JSON, then persistence.
// Every failure is converted to an acknowledgment string so the chat never
// breaks on this route.
func NewContributeNode(
	cm einomodel.BaseChatModel,
	modelName string,
	mm *conversations.MessagesManager,
	promptCfg model.PromptConfig,
	contributions model.ContributionRepository,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision model.RouteDecision) (*model.AgentResponse, error) {
		conversationID, _ := stateSnapshot(ctx)
		logx.Debug().Str("conversation_id", conversationID).Msg("Processing contribution or error report")

		systemPrompt, err := prompts.RenderContributeSystem(ctx, promptCfg)
		if err != nil {
			logx.Error().Err(err).Msg("Error rendering contribute prompt")
			return &model.AgentResponse{Result: contributeAckSoft}, nil
		}

		messages, err := mm.NodeContext(ctx, conversationID, systemPrompt)
		if err != nil {
			logx.Error().Err(err).Msg("Error building contribute context")
			return &model.AgentResponse{Result: contributeAckSoft}, nil
		}

		out, err := cm.Generate(ctx, messages)
		if err != nil {
			logx.Error().Err(err).Msg("Error in contribute node generation")
			return &model.AgentResponse{Result: contributeAckSoft}, nil
		}
		appendRawMessage(ctx, out.Content)
		addUsageCost(ctx, NodeContribute, modelName, out)

		report, err := parseContribution(out.Content)
		if err != nil {
			logx.Error().Err(err).Msg("Error parsing contribution JSON")
			return &model.AgentResponse{Result: contributeAckSoft}, nil
		}

		if contributions != nil {
			if id, err := contributions.Save(ctx, report); err != nil {
				// persistence failure is swallowed, the user still gets an ack
				logx.Error().Err(err).Msg("Error saving contribution report")
			} else {
				logx.Debug().Str("contribution_id", id).Msg("Contribution report stored")
			}
		}

		return &model.AgentResponse{Result: contributeAck}, nil
	})
}

// parseContribution decodes the model's JSON report, tolerating a fenced
// json code block around the object.
func parseContribution(content string) (*model.ContributionReport, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var report model.ContributionReport
	if err := json.Unmarshal([]byte(trimmed), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
