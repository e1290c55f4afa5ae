package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	logx "github.com/trakt-agent/server/pkg/logger"

	"github.com/trakt-agent/server/internal/agent/graph/conversations"
	"github.com/trakt-agent/server/internal/agent/graph/nodes"
	"github.com/trakt-agent/server/internal/agent/graph/observers"
	"github.com/trakt-agent/server/internal/agent/model"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.AgentResponse, error)
}

// Config holds everything needed to compose the full conversation graph
// end-to-end. This is a convenience layer over GraphConfig that also
// constructs ChatModels and MessagesManager.
type Config struct {
	Providers     []model.ProviderConfig
	RouterModel   model.RouterModelConfig
	ResponseModel model.ResponseModelConfig
	Prompt        model.PromptConfig
	Conversation  model.ConversationConfig

	ConversationRepo model.ConversationRepository
	ContractRepo     model.ContractRepository     // optional, draft registration skipped when nil
	ContributionRepo model.ContributionRepository // optional, persistence skipped when nil
	Verifier         model.DeploymentVerifier
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels       *nodes.ChatModels
	MessagesManager  *conversations.MessagesManager
	Prompt           model.PromptConfig
	ContractRepo     model.ContractRepository
	ContributionRepo model.ContributionRepository
	Verifier         model.DeploymentVerifier
}

// GraphBuilder handles the construction of the conversation graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.AgentResponse]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.AgentResponse]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.AgentResponse, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return &model.AgentResponse{}, nil
	}
	return out, nil
}

// BuildConversationGraph composes ChatModels, MessagesManager, builds the
// graph, and returns a Runner.
func BuildConversationGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("deployment verifier is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		Providers: cfg.Providers,
		RouterCfg: &cfg.RouterModel,
		RespCfg:   &cfg.ResponseModel,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:       cms,
		MessagesManager:  mm,
		Prompt:           cfg.Prompt,
		ContractRepo:     cfg.ContractRepo,
		ContributionRepo: cfg.ContributionRepo,
		Verifier:         cfg.Verifier,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Str("provider", cms.ProviderName).Msg("Conversation graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled conversation graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.AgentResponse], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Router == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Verifier == nil {
		return nil, fmt.Errorf("deployment verifier is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.AgentResponse](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	cms := b.config.ChatModels
	mm := b.config.MessagesManager
	prompt := b.config.Prompt

	b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(mm, prompt),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
		compose.WithStatePostHandler(nodes.NewInputConverterPostHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeRouterChatModel,
		cms.Router,
		compose.WithStatePostHandler(nodes.NewRouterChatModelPostHandler(cms.RouterModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeRouteParser,
		nodes.NewRouteParserNode(),
		compose.WithStatePostHandler(nodes.NewRouteParserPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeContribute,
		nodes.NewContributeNode(cms.Response, cms.ResponseModelName, mm, prompt, b.config.ContributionRepo),
		compose.WithStatePostHandler(nodes.NewTerminalPostHandler(mm, nodes.NodeContribute)),
	)

	b.graph.AddLambdaNode(nodes.NodeEscrow,
		nodes.NewEscrowNode(cms.Response, cms.ResponseModelName, mm, prompt, b.config.ContractRepo),
		compose.WithStatePostHandler(nodes.NewTerminalPostHandler(mm, nodes.NodeEscrow)),
	)

	b.graph.AddLambdaNode(nodes.NodeVerify,
		nodes.NewVerifyNode(b.config.Verifier, prompt),
		compose.WithStatePostHandler(nodes.NewTerminalPostHandler(mm, nodes.NodeVerify)),
	)

	b.graph.AddLambdaNode(nodes.NodeFallback,
		nodes.NewFallbackNode(cms.Response, cms.ResponseModelName, mm, prompt),
		compose.WithStatePostHandler(nodes.NewTerminalPostHandler(mm, nodes.NodeFallback)),
	)
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeRouterChatModel},
		{nodes.NodeRouterChatModel, nodes.NodeRouteParser},
		{nodes.NodeContribute, compose.END},
		{nodes.NodeEscrow, compose.END},
		{nodes.NodeVerify, compose.END},
		{nodes.NodeFallback, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the conditional routing branch. Exactly one terminal
// node runs per turn.
func (b *GraphBuilder) addBranches() error {
	routeBranch := compose.NewGraphBranch(
		nodes.NewRouteCondition(),
		map[string]bool{
			nodes.NodeContribute: true,
			nodes.NodeEscrow:     true,
			nodes.NodeVerify:     true,
			nodes.NodeFallback:   true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeRouteParser, routeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding route branch")
		return fmt.Errorf("error adding route branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.AgentResponse], error) {
	// One linear pass plus one branch; a tight step cap catches wiring bugs.
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
