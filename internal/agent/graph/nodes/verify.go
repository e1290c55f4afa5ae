package nodes

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/trakt-agent/server/internal/agent/github"
	"github.com/trakt-agent/server/internal/agent/graph/parsers"
	"github.com/trakt-agent/server/internal/agent/model"
	logx "github.com/trakt-agent/server/pkg/logger"
)

const verifyParseFailure = "❌ I couldn't parse the verification request. Please provide either a GitHub URL and deployed URL, or specify owner, repo, and deployed URL."

// NewVerifyNode creates the terminal node for GitHub deployment
// verification. No generation call happens here: parameters are extracted
// deterministically and handed to the injected verifier collaborator.
func NewVerifyNode(
	verifier model.DeploymentVerifier,
	promptCfg model.PromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision model.RouteDecision) (*model.AgentResponse, error) {
		_, input := stateSnapshot(ctx)

		params := parsers.ParseVerificationInput(input)
		if params == nil {
			// silent no-match outcome, not an error
			logx.Debug().Msg("Verification request could not be parsed")
			return &model.AgentResponse{Result: verifyParseFailure}, nil
		}

		if params.Branch == "" {
			params.Branch = promptCfg.DefaultBranch
		}
		if params.FileToCheck == "" {
			params.FileToCheck = promptCfg.DefaultFile
		}

		result := verifier.Verify(ctx, *params)
		formatted := github.FormatVerificationResult(result)
		appendRawMessage(ctx, formatted)

		return &model.AgentResponse{
			Result:       formatted,
			Verification: result,
		}, nil
	})
}
