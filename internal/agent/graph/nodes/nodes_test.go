package nodes

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trakt-agent/server/internal/agent/model"
)

func TestNewRouteCondition(t *testing.T) {
	cond := NewRouteCondition()

	tests := []struct {
		route model.Route
		want  string
	}{
		{model.RouteContribute, NodeContribute},
		{model.RouteEscrow, NodeEscrow},
		{model.RouteVerification, NodeVerify},
		{model.RouteUnknown, NodeFallback},
		{model.RouteUnset, NodeFallback},
	}
	for _, tt := range tests {
		got, err := cond(context.Background(), model.RouteDecision{Route: tt.route})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "route %q", tt.route)
	}
}

func TestParseContribution(t *testing.T) {
	t.Run("bare json", func(t *testing.T) {
		report, err := parseContribution(`{"type":"error_report","description":"cancel fails","priority":"high"}`)
		require.NoError(t, err)
		assert.Equal(t, "error_report", report.Type)
		assert.Equal(t, "cancel fails", report.Description)
		assert.Equal(t, "high", report.Priority)
	})

	t.Run("fenced json", func(t *testing.T) {
		report, err := parseContribution("```json\n{\"type\":\"code_contribution\",\"description\":\"add tests\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, "code_contribution", report.Type)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parseContribution("thanks for the report!")
		assert.Error(t, err)
	})
}

func TestDraftName(t *testing.T) {
	assert.Equal(t, "Escrow draft", draftName("   "))
	assert.Equal(t, "sell my NFT", draftName("sell my NFT"))

	long := strings.Repeat("x", 100)
	assert.Len(t, draftName(long), 64)
}
