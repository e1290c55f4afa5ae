package github

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trakt-agent/server/internal/agent/model"
)

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"plain", "https://github.com/acme/app", "acme", "app", false},
		{"git suffix", "https://github.com/acme/app.git", "acme", "app", false},
		{"trailing slash", "https://github.com/acme/app/", "acme", "app", false},
		{"extra path", "https://github.com/acme/app/tree/main", "acme", "app", false},
		{"not github", "https://gitlab.com/acme/app", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseGitHubURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestVerifyRejectsMissingRepoReference(t *testing.T) {
	v := NewVerifier(model.GitHubConfig{})

	result := v.Verify(context.Background(), model.VerificationParams{
		DeployedURL: "https://app.vercel.app",
	})

	assert.False(t, result.Verified)
	assert.NotEmpty(t, result.Error)
	assert.Contains(t, result.Message, "Verification failed")
	assert.Equal(t, "https://app.vercel.app", result.DeployedURL)
}

func TestVerifyRejectsBadRepoURL(t *testing.T) {
	v := NewVerifier(model.GitHubConfig{})

	result := v.Verify(context.Background(), model.VerificationParams{
		RepoURL:     "https://example.com/not/github",
		DeployedURL: "https://app.vercel.app",
	})

	assert.False(t, result.Verified)
	assert.NotEmpty(t, result.Error)
}

func TestPreviewTruncation(t *testing.T) {
	long := make([]byte, previewLimit+100)
	for i := range long {
		long[i] = 'a'
	}
	got := preview(string(long))
	assert.Len(t, got, previewLimit+3)
	assert.Equal(t, "...", got[len(got)-3:])

	short := "short"
	assert.Equal(t, short, preview(short))
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "abc1234", shortSHA("abc1234def5678"))
	assert.Equal(t, "abc", shortSHA("abc"))
}
