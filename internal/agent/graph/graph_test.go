package graph

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trakt-agent/server/internal/agent/graph/conversations"
	"github.com/trakt-agent/server/internal/agent/graph/nodes"
	"github.com/trakt-agent/server/internal/agent/model"
	"github.com/trakt-agent/server/internal/agent/repo"
)

// scriptedChatModel returns canned replies in order, repeating the last one.
type scriptedChatModel struct {
	replies []string
	calls   int
}

func (m *scriptedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	idx := m.calls
	if idx >= len(m.replies) {
		idx = len(m.replies) - 1
	}
	m.calls++
	return schema.AssistantMessage(m.replies[idx], nil), nil
}

func (m *scriptedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

type stubVerifier struct {
	result *model.VerificationResult
	params *model.VerificationParams
}

func (v *stubVerifier) Verify(ctx context.Context, params model.VerificationParams) *model.VerificationResult {
	v.params = &params
	return v.result
}

func newTestGraphConfig(t *testing.T, routerReply, responseReply string) (*GraphConfig, *stubVerifier, model.ConversationRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	conversationRepo := repo.NewRedisConversationRepository(rdb, 15*time.Minute)
	convCfg := model.ConversationConfig{TTL: "15m"}
	convCfg.Router.MaxTurns = 5
	mm := conversations.NewMessagesManager(conversationRepo, convCfg)

	verifier := &stubVerifier{result: &model.VerificationResult{
		Verified:  true,
		CommitSHA: "abc1234",
		FileMatch: true,
		Message:   "Deployment verified.",
	}}

	cfg := &GraphConfig{
		ChatModels: &nodes.ChatModels{
			Router:            &scriptedChatModel{replies: []string{routerReply}},
			Response:          &scriptedChatModel{replies: []string{responseReply}},
			RouterModelName:   "gemini-2.5-flash-lite",
			ResponseModelName: "gemini-2.5-flash",
			ProviderName:      "test",
		},
		MessagesManager: mm,
		Prompt: model.PromptConfig{
			PlatformName:  "Trakt",
			ChainName:     "0G",
			DefaultBranch: "main",
			DefaultFile:   "package.json",
		},
		ContractRepo:     repo.NewRedisContractRepository(rdb),
		ContributionRepo: repo.NewRedisContributionRepository(rdb),
		Verifier:         verifier,
	}
	return cfg, verifier, conversationRepo
}

func TestGraphRoutesUnknownToFallback(t *testing.T) {
	cfg, _, _ := newTestGraphConfig(t, "unknown", "Hello! I can help you build escrow contracts on Trakt.")

	runnable, err := BuildGraph(context.Background(), cfg)
	require.NoError(t, err)

	out, err := runnable.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-fallback",
		Query:          "what can you do?",
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, model.RouteUnknown, out.Route)
	assert.NotEmpty(t, out.Result)
	assert.Empty(t, out.ContractCode)
	assert.Nil(t, out.Verification)
}

func TestGraphEscrowExtractsContractCode(t *testing.T) {
	reply := "Here is your escrow contract:\n```solidity\npragma solidity ^0.8.0;\ncontract Escrow {}\n```\nReview it before deploying."
	cfg, _, _ := newTestGraphConfig(t, "escrow_Node", reply)

	runnable, err := BuildGraph(context.Background(), cfg)
	require.NoError(t, err)

	out, err := runnable.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-escrow",
		Query:          "create an escrow contract for my NFT sale",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RouteEscrow, out.Route)
	assert.Contains(t, out.ContractCode, "contract Escrow {}")
	assert.NotContains(t, out.Result, "```solidity")
	assert.Contains(t, out.Result, "Review it before deploying.")
	assert.Nil(t, out.Verification)
}

func TestGraphVerificationRoute(t *testing.T) {
	cfg, verifier, _ := newTestGraphConfig(t, "github_verification", "unused")

	runnable, err := BuildGraph(context.Background(), cfg)
	require.NoError(t, err)

	out, err := runnable.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-verify",
		Query:          "verify https://github.com/acme/app deployment at https://app.vercel.app branch: dev",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RouteVerification, out.Route)
	require.NotNil(t, out.Verification)
	assert.True(t, out.Verification.Verified)
	assert.Contains(t, out.Result, "VERIFIED")

	require.NotNil(t, verifier.params)
	assert.Equal(t, "https://github.com/acme/app", verifier.params.RepoURL)
	assert.Equal(t, "https://app.vercel.app", verifier.params.DeployedURL)
	assert.Equal(t, "dev", verifier.params.Branch)
}

func TestGraphDeterministicOverrideBeatsRouter(t *testing.T) {
	// Router misclassifies, but the input is unambiguously a verification
	// request, so the deterministic check wins.
	cfg, verifier, _ := newTestGraphConfig(t, "contribute_node", "unused")

	runnable, err := BuildGraph(context.Background(), cfg)
	require.NoError(t, err)

	out, err := runnable.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-override",
		Query:          "check my deployment at https://app.vercel.app against https://github.com/acme/app",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RouteVerification, out.Route)
	require.NotNil(t, verifier.params)
}

func TestGraphContributeRoute(t *testing.T) {
	report := "```json\n{\"type\":\"bug\",\"description\":\"router mislabels greetings\",\"impact\":\"low\",\"priority\":\"medium\"}\n```"
	cfg, _, _ := newTestGraphConfig(t, "contribute_node", report)

	runnable, err := BuildGraph(context.Background(), cfg)
	require.NoError(t, err)

	out, err := runnable.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-contribute",
		Query:          "I found a bug: greetings get routed to escrow",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RouteContribute, out.Route)
	assert.NotEmpty(t, out.Result)
	assert.Empty(t, out.ContractCode)
	assert.Nil(t, out.Verification)
}

func TestGraphPersistsConversationTurns(t *testing.T) {
	cfg, _, conversationRepo := newTestGraphConfig(t, "unknown", "I can help with escrow contracts.")

	runnable, err := BuildGraph(context.Background(), cfg)
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-history",
		Query:          "hi there",
	})
	require.NoError(t, err)

	history, err := conversationRepo.LoadHistory(context.Background(), "conv-history")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, schema.User, history.Messages[0].Role)
	assert.Equal(t, "hi there", history.Messages[0].Content)
	assert.Equal(t, schema.Assistant, history.Messages[1].Role)
	assert.Equal(t, "I can help with escrow contracts.", history.Messages[1].Content)
}

func TestBuildGraphValidation(t *testing.T) {
	_, err := BuildGraph(context.Background(), nil)
	assert.Error(t, err)

	_, err = BuildGraph(context.Background(), &GraphConfig{})
	assert.Error(t, err)
}
