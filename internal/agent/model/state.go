package model

import (
	"github.com/cloudwego/eino/schema"
)

// Route is the single classification outcome for one conversation turn.
type Route string

const (
	RouteUnset        Route = ""
	RouteContribute   Route = "contribute_node"
	RouteEscrow       Route = "escrow_Node"
	RouteVerification Route = "github_verification"
	RouteUnknown      Route = "unknown"
)

// RouteDecision carries the parsed route alongside the raw model token,
// flowing from the parser node into the branch condition.
type RouteDecision struct {
	Route Route
	Raw   string
}

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Do not access AppState directly from outside handlers. For persistence,
//     use repositories/services (e.g., MessagesManager).
type AppState struct {
	ConversationID string
	Input          string            // current user utterance, set before classification
	History        []*schema.Message // loaded from the conversation repository
	Messages       []string          // every node's raw output in visitation order
	Route          Route             // set at most once, by the route parser
	Result         string            // final user-facing text, set by one terminal node
	ContractCode   string            // set only on the escrow route when a fenced block was found
	Verification   *VerificationResult

	// Accumulated total LLM cost (USD) across model invocations for this turn
	TotalCostUSD float64
}

// QueryInput represents the input for processing one user turn.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
}

// AgentResponse is the caller-visible outcome of one graph run.
type AgentResponse struct {
	Route        Route               `json:"route"`
	Result       string              `json:"result"`
	ContractCode string              `json:"contract_code,omitempty"`
	Verification *VerificationResult `json:"verification,omitempty"`
}
