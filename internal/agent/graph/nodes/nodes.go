package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/trakt-agent/server/internal/agent/graph/conversations"
	"github.com/trakt-agent/server/internal/agent/graph/parsers"
	"github.com/trakt-agent/server/internal/agent/graph/prompts"
	"github.com/trakt-agent/server/internal/agent/model"
	logx "github.com/trakt-agent/server/pkg/logger"
)

// Graph node names.
const (
	NodeInputConverter  = "input_converter"
	NodeRouterChatModel = "router_chat_model"
	NodeRouteParser     = "route_parser"
	NodeContribute      = "contribute_node"
	NodeEscrow          = "escrow_node"
	NodeVerify          = "github_verification"
	NodeFallback        = "fallback_node"
)

// NewInputConverterPreHandler resets per-turn state before classification.
func NewInputConverterPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.ConversationID = in.ConversationID
		s.Input = in.Query
		s.History = nil
		s.Messages = nil
		s.Route = model.RouteUnset
		s.Result = ""
		s.ContractCode = ""
		s.Verification = nil
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputConverterNode creates the node that records the user turn and
// assembles the classification context for the router model.
func NewInputConverterNode(
	mm *conversations.MessagesManager,
	promptCfg model.PromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		if err := mm.RecordUserMessage(ctx, input.ConversationID, input.Query); err != nil {
			return nil, fmt.Errorf("record user message: %w", err)
		}

		systemPrompt, err := prompts.RenderRouterSystem(ctx, promptCfg)
		if err != nil {
			return nil, fmt.Errorf("render router system prompt: %w", err)
		}

		messages, err := mm.RouterContext(ctx, input.ConversationID, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("build router context: %w", err)
		}
		return messages, nil
	})
}

// NewInputConverterPostHandler snapshots the loaded history (minus the
// system prompt) into state for the terminal nodes.
func NewInputConverterPostHandler() func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, out []*schema.Message, s *model.AppState) ([]*schema.Message, error) {
		for _, msg := range out {
			if msg == nil || msg.Role == schema.System {
				continue
			}
			s.History = append(s.History, msg)
		}
		return out, nil
	}
}

// NewRouterChatModelPostHandler accumulates the raw router output and logs
// usage cost for the router model.
func NewRouterChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out != nil {
			state.Messages = append(state.Messages, out.Content)
		}
		recordUsageCost(state, NodeRouterChatModel, modelName, out)
		return out, nil
	}
}

// NewRouteParserNode maps the router model's raw token onto a route.
func NewRouteParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (model.RouteDecision, error) {
		if resp == nil {
			return model.RouteDecision{}, fmt.Errorf("router model returned nil message")
		}
		return parsers.ParseRouteToken(resp.Content), nil
	})
}

// NewRouteParserPostHandler applies the deterministic verification override
// and records the route. The route is written exactly once per turn.
func NewRouteParserPostHandler() func(context.Context, model.RouteDecision, *model.AppState) (model.RouteDecision, error) {
	return func(ctx context.Context, out model.RouteDecision, state *model.AppState) (model.RouteDecision, error) {
		if parsers.IsVerificationRequest(state.Input) && out.Route != model.RouteVerification {
			logx.Debug().
				Str("model_route", string(out.Route)).
				Msg("Deterministic verification detection overrides model routing")
			out.Route = model.RouteVerification
		}
		if state.Route != model.RouteUnset {
			return out, fmt.Errorf("route already set to %q", state.Route)
		}
		state.Route = out.Route

		logx.Debug().
			Str("conversation_id", state.ConversationID).
			Str("route", string(out.Route)).
			Msg("Turn classified")
		return out, nil
	}
}

// NewRouteCondition creates the branch condition selecting the terminal node.
func NewRouteCondition() func(context.Context, model.RouteDecision) (string, error) {
	return func(ctx context.Context, input model.RouteDecision) (string, error) {
		switch input.Route {
		case model.RouteContribute:
			return NodeContribute, nil
		case model.RouteEscrow:
			return NodeEscrow, nil
		case model.RouteVerification:
			return NodeVerify, nil
		default:
			return NodeFallback, nil
		}
	}
}

// NewTerminalPostHandler finalizes a terminal node's output: records the
// result and structured payloads into state and persists the assistant turn.
// The result is set by exactly one terminal node and never overwritten.
func NewTerminalPostHandler(mm *conversations.MessagesManager, nodeName string) func(context.Context, *model.AgentResponse, *model.AppState) (*model.AgentResponse, error) {
	return func(ctx context.Context, out *model.AgentResponse, state *model.AppState) (*model.AgentResponse, error) {
		if out == nil {
			return nil, fmt.Errorf("%s produced nil response", nodeName)
		}
		out.Route = state.Route

		if state.Result == "" {
			state.Result = out.Result
		} else {
			out.Result = state.Result
		}
		if out.ContractCode != "" {
			state.ContractCode = out.ContractCode
		}
		if out.Verification != nil {
			state.Verification = out.Verification
		}

		if state.Result != "" {
			if err := mm.SaveResponse(ctx, state.ConversationID, state.Result); err != nil {
				logx.Error().
					Str("conversation_id", state.ConversationID).
					Err(err).
					Msg("Error saving assistant response")
			}
		}
		return out, nil
	}
}

// stateSnapshot reads the per-turn identifiers a terminal node needs.
func stateSnapshot(ctx context.Context) (conversationID, input string) {
	compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
		conversationID = s.ConversationID
		input = s.Input
		return nil
	})
	return conversationID, input
}

// appendRawMessage accumulates a node's raw model output in visitation order.
func appendRawMessage(ctx context.Context, content string) {
	compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
		s.Messages = append(s.Messages, content)
		return nil
	})
}

// recordUsageCost computes and logs USD cost when usage metadata is present.
func recordUsageCost(state *model.AppState, node, modelName string, out *schema.Message) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
	state.TotalCostUSD += totalC

	logx.Debug().
		Str("conversation_id", state.ConversationID).
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}

// addUsageCost is the ProcessState variant for lambdas that call the model
// directly.
func addUsageCost(ctx context.Context, node, modelName string, out *schema.Message) {
	compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
		recordUsageCost(s, node, modelName, out)
		return nil
	})
}
