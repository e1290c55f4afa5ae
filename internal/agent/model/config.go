package model

// ================ Config ================
type ConversationConfig struct {
	TTL    string `envconfig:"CONVERSATION_TTL" default:"15m"`
	Router struct {
		MaxTurns int `envconfig:"CONVERSATION_ROUTER_MAX_TURNS" default:"5"`
	}
}

// ProviderConfig describes one generation backend endpoint. Providers are
// tried in order at initialization; the first that constructs wins.
type ProviderConfig struct {
	Name    string `envconfig:"NAME" default:"gemini"`
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL"`
}

type RouterModelConfig struct {
	Model       string  `envconfig:"ROUTER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"ROUTER_MAX_TOKENS" default:"256"`
	Temperature float32 `envconfig:"ROUTER_TEMPERATURE" default:"0.1"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"4000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.7"`
}

type PromptConfig struct {
	PlatformName  string `envconfig:"PROMPT_PLATFORM_NAME" default:"Trakt"`
	ChainName     string `envconfig:"PROMPT_CHAIN_NAME" default:"0G"`
	DefaultBranch string `envconfig:"VERIFY_DEFAULT_BRANCH" default:"main"`
	DefaultFile   string `envconfig:"VERIFY_DEFAULT_FILE" default:"package.json"`
}

type GitHubConfig struct {
	Token        string `envconfig:"GITHUB_TOKEN"`
	FetchTimeout int    `envconfig:"GITHUB_FETCH_TIMEOUT" default:"10"`
}
