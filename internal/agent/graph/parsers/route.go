package parsers

import (
	"strings"

	"github.com/trakt-agent/server/internal/agent/model"
)

// basic safety limit to avoid pathological inputs
const maxContentLen = 128 * 1024 // 128KB

// routeTokens is checked in order; the first token contained in the model
// output wins. Order matters: the router prompt demands exactly one token,
// but drifting models sometimes wrap it in prose.
var routeTokens = []model.Route{
	model.RouteContribute,
	model.RouteEscrow,
	model.RouteVerification,
	model.RouteUnknown,
}

// ParseRouteToken maps the router model's raw output to a Route.
// Output that matches none of the known tokens is treated as unknown, which
// downstream answers with the conversational fallback rather than failing.
func ParseRouteToken(content string) model.RouteDecision {
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}
	raw := strings.TrimSpace(content)
	for _, token := range routeTokens {
		if strings.Contains(raw, string(token)) {
			return model.RouteDecision{Route: token, Raw: raw}
		}
	}
	return model.RouteDecision{Route: model.RouteUnknown, Raw: raw}
}

// verificationPhrases deterministically identify a deployment-verification
// request independent of the router model's answer.
var verificationPhrases = []string{
	"verify deployment",
	"check deployment",
	"verify github",
	"check github",
	"deployment verification",
	"repo verification",
	"verify repo",
	"check repo",
}

// IsVerificationRequest reports whether the raw user input is a GitHub
// deployment-verification request. A positive result overrides the model's
// routing token so verification requests are never misrouted by prompt drift.
func IsVerificationRequest(input string) bool {
	lower := strings.ToLower(input)
	for _, phrase := range verificationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return strings.Contains(lower, "github.com") &&
		(strings.Contains(lower, "verify") || strings.Contains(lower, "check"))
}
