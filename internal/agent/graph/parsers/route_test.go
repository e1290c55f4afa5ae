package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trakt-agent/server/internal/agent/model"
)

func TestParseRouteToken(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    model.Route
	}{
		{"exact contribute", "contribute_node", model.RouteContribute},
		{"exact escrow", "escrow_Node", model.RouteEscrow},
		{"exact verification", "github_verification", model.RouteVerification},
		{"exact unknown", "unknown", model.RouteUnknown},
		{"token wrapped in prose", "The answer is escrow_Node.", model.RouteEscrow},
		{"surrounding whitespace", "  github_verification\n", model.RouteVerification},
		{"no known token", "I cannot classify this request", model.RouteUnknown},
		{"empty output", "", model.RouteUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRouteToken(tt.content)
			assert.Equal(t, tt.want, got.Route)
		})
	}
}

func TestParseRouteTokenCapsContent(t *testing.T) {
	content := strings.Repeat("x", maxContentLen+1024) + "escrow_Node"
	got := ParseRouteToken(content)
	// the token sits past the cap, so it must not be seen
	assert.Equal(t, model.RouteUnknown, got.Route)
}

func TestIsVerificationRequest(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"verify deployment phrase", "please verify deployment of my app", true},
		{"check repo phrase", "can you CHECK REPO acme/app", true},
		{"github url with verify", "verify https://github.com/acme/app for me", true},
		{"github url with check", "check https://github.com/acme/app please", true},
		{"github url without keywords", "look at https://github.com/acme/app", false},
		{"escrow request", "create an escrow contract for my NFT", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVerificationRequest(tt.input))
		})
	}
}
