package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/trakt-agent/server/internal/agent/graph/conversations"
	"github.com/trakt-agent/server/internal/agent/graph/parsers"
	"github.com/trakt-agent/server/internal/agent/graph/prompts"
	"github.com/trakt-agent/server/internal/agent/model"
	logx "github.com/trakt-agent/server/pkg/logger"
)

const escrowApology = "I apologize, but there was an error generating the Escrow contract. Please try again or provide more information about your requirements."

// NewEscrowNode creates the terminal node for escrow contract generation:
// one generation call against the escrow system prompt, then extraction of
// the first fenced Solidity block. Errors become an apology string.
func NewEscrowNode(
	cm einomodel.BaseChatModel,
	modelName string,
	mm *conversations.MessagesManager,
	promptCfg model.PromptConfig,
	contracts model.ContractRepository,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision model.RouteDecision) (*model.AgentResponse, error) {
		conversationID, input := stateSnapshot(ctx)
		logx.Debug().Str("conversation_id", conversationID).Msg("Generating escrow contract")

		systemPrompt, err := prompts.RenderEscrowSystem(ctx, promptCfg)
		if err != nil {
			logx.Error().Err(err).Msg("Error rendering escrow prompt")
			return &model.AgentResponse{Result: escrowApology}, nil
		}

		messages, err := mm.NodeContext(ctx, conversationID, systemPrompt)
		if err != nil {
			logx.Error().Err(err).Msg("Error building escrow context")
			return &model.AgentResponse{Result: escrowApology}, nil
		}

		out, err := cm.Generate(ctx, messages)
		if err != nil {
			logx.Error().Err(err).Msg("Error in escrow node generation")
			return &model.AgentResponse{Result: escrowApology}, nil
		}
		appendRawMessage(ctx, out.Content)
		addUsageCost(ctx, NodeEscrow, modelName, out)

		code, remainder := parsers.ExtractSolidity(out.Content)
		resp := &model.AgentResponse{
			Result:       remainder,
			ContractCode: code,
		}

		if code != "" && contracts != nil {
			registerDraft(ctx, contracts, conversationID, input, code)
		}

		return resp, nil
	})
}

// registerDraft stores the extracted contract source as a draft deployment
// record. Failure is swallowed: a storage hiccup must not fail the chat turn.
func registerDraft(ctx context.Context, contracts model.ContractRepository, conversationID, input, code string) {
	draft := &model.DeployedContract{
		ID:           fmt.Sprintf("draft-%s", uuid.NewString()[:8]),
		Name:         draftName(input),
		ContractType: "escrow_draft",
		PartyA:       conversationID,
		DeployedAt:   time.Now().UTC().Format(time.RFC3339),
		Description:  "Draft generated from chat, not yet deployed",
		SourceCode:   code,
	}
	if err := contracts.Save(ctx, draft); err != nil {
		logx.Error().Err(err).Str("draft_id", draft.ID).Msg("Error registering contract draft")
		return
	}
	logx.Debug().Str("draft_id", draft.ID).Msg("Contract draft registered")
}

func draftName(input string) string {
	input = strings.TrimSpace(input)
	if len(input) > 64 {
		input = input[:64]
	}
	if input == "" {
		return "Escrow draft"
	}
	return input
}
