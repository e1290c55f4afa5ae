package github

import (
	"fmt"
	"strings"

	"github.com/trakt-agent/server/internal/agent/model"
)

// FormatVerificationResult renders a verification outcome as user-facing
// Markdown. Pure function of its input: identical results render identically.
func FormatVerificationResult(result *model.VerificationResult) string {
	var b strings.Builder

	b.WriteString("## GitHub Deployment Verification\n\n")

	if result.Verified {
		b.WriteString("**Status:** ✅ VERIFIED\n")
	} else {
		b.WriteString("**Status:** ❌ NOT VERIFIED\n")
	}
	fmt.Fprintf(&b, "**Message:** %s\n\n", result.Message)

	if result.CommitSHA != "" {
		fmt.Fprintf(&b, "**Commit SHA:** `%s`\n", result.CommitSHA)
	}

	fmt.Fprintf(&b, "**Deployed URL:** %s\n", result.DeployedURL)

	if result.Error != "" {
		fmt.Fprintf(&b, "**Error:** %s\n", result.Error)
	} else {
		if result.FileMatch {
			b.WriteString("**File Match:** ✅ Yes\n")
		} else {
			b.WriteString("**File Match:** ❌ No\n")
		}

		if !result.FileMatch && result.RepoFile != "" && result.DeployedFile != "" {
			b.WriteString("\n**Differences detected:**\n")
			fmt.Fprintf(&b, "- Repo file preview: `%s`\n", result.RepoFile)
			fmt.Fprintf(&b, "- Deployed file preview: `%s`\n", result.DeployedFile)
		}
	}

	if result.Verified {
		b.WriteString("\n🎉 **The deployment matches the GitHub repository!** This means the deployed code is authentic and matches the source code in the repository.")
	} else {
		b.WriteString("\n⚠️ **The deployment does not match the GitHub repository.** This could indicate:")
		b.WriteString("\n- The deployment is from a different commit")
		b.WriteString("\n- Local changes were made that aren't in the repo")
		b.WriteString("\n- The file doesn't exist at the deployed URL")
		b.WriteString("\n- There's a configuration or build process difference")
	}

	return b.String()
}
