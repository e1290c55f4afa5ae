package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/trakt-agent/server/internal/agent/github"
	"github.com/trakt-agent/server/internal/agent/graph"
	"github.com/trakt-agent/server/internal/agent/model"
	"github.com/trakt-agent/server/internal/agent/repo"
	"github.com/trakt-agent/server/internal/core"
	logx "github.com/trakt-agent/server/pkg/logger"
	pkgredis "github.com/trakt-agent/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM providers, tried in order at startup
	APIKey          string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL         string `envconfig:"GEMINI_BASE_URL"`
	FallbackAPIKey  string `envconfig:"GEMINI_FALLBACK_API_KEY"`
	FallbackBaseURL string `envconfig:"GEMINI_FALLBACK_BASE_URL"`

	// Agent configs
	Router       model.RouterModelConfig
	Response     model.ResponseModelConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig
	GitHub       model.GitHubConfig
}

func (c *AppConfig) providers() []model.ProviderConfig {
	providers := []model.ProviderConfig{
		{Name: "gemini", APIKey: c.APIKey, BaseURL: c.BaseURL},
	}
	if c.FallbackAPIKey != "" {
		providers = append(providers, model.ProviderConfig{
			Name:    "gemini-fallback",
			APIKey:  c.FallbackAPIKey,
			BaseURL: c.FallbackBaseURL,
		})
	}
	return providers
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	logx.Info().Msg("Connected to Redis successfully")

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}

	cfg := graph.Config{
		Providers:        envCfg.providers(),
		RouterModel:      envCfg.Router,
		ResponseModel:    envCfg.Response,
		Prompt:           envCfg.Prompt,
		Conversation:     envCfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		ContractRepo:     repo.NewRedisContractRepository(rdb),
		ContributionRepo: repo.NewRedisContributionRepository(rdb),
		Verifier:         github.NewVerifier(envCfg.GitHub),
	}

	runner, err := graph.BuildConversationGraph(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "Greeting routed to the fallback assistant",
			query:       "Hi! What can you help me with?",
		},
		{
			description: "Escrow contract generation",
			query:       "Create an escrow contract for selling my NFT for 2 0G tokens",
		},
		{
			description: "Deployment verification with explicit repo and branch",
			query:       "verify https://github.com/acme/escrow-app deployment at https://escrow-app.vercel.app branch: main",
		},
		{
			description: "Error report routed to the contribution node",
			query:       "I found a bug: the generated contract is missing the cancel function",
		},
	}

	conversationID := "demo-conversation-1"

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)

		response, err := runner.Invoke(ctx, model.QueryInput{
			ConversationID: conversationID,
			Query:          test.query,
		})
		if err != nil {
			log.Fatalf("Failed to invoke graph for test %d: %v", i+1, err)
		}

		fmt.Printf("Route: %s\n", response.Route)
		fmt.Printf("Result: %s\n", response.Result)
		if response.ContractCode != "" {
			fmt.Printf("Contract code (%d bytes):\n%s\n", len(response.ContractCode), response.ContractCode)
		}
		if response.Verification != nil {
			fmt.Printf("Verification: verified=%t commit=%s\n",
				response.Verification.Verified, response.Verification.CommitSHA)
		}
		fmt.Println("────────────────────────────────────────")

		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("All conversation turns completed.")
}
