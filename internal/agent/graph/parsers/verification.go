package parsers

import (
	"regexp"
	"strings"

	"github.com/trakt-agent/server/internal/agent/model"
)

var (
	urlPattern       = regexp.MustCompile(`https?://[^\s]+`)
	ownerRepoPattern = regexp.MustCompile(`([a-zA-Z0-9_-]+)/([a-zA-Z0-9_-]+)`)
	branchPattern    = regexp.MustCompile(`(?i)branch[:\s]+([^\s]+)`)
	filePattern      = regexp.MustCompile(`(?i)file[:\s]+([^\s]+)`)
)

// ParseVerificationInput extracts structured verification parameters from a
// free-text request. It returns nil when the input is not a verification
// request or when no deployed URL can be found; that is a silent no-match
// outcome the caller must branch on, not an error.
//
// URL partitioning: any URL containing github.com is a repo candidate; the
// first non-GitHub URL encountered becomes the deployed URL
// (first-match-wins). When no GitHub URL is present, the first bare
// owner/repo token in the text is used instead; a GitHub URL always takes
// precedence over the bare token.
func ParseVerificationInput(input string) *model.VerificationParams {
	lower := strings.ToLower(input)
	if !strings.Contains(lower, "verify") &&
		!strings.Contains(lower, "check") &&
		!strings.Contains(lower, "deployment") {
		return nil
	}

	urls := urlPattern.FindAllString(input, -1)

	var repoURL, deployedURL string
	for _, u := range urls {
		if strings.Contains(u, "github.com") {
			if repoURL == "" {
				repoURL = u
			}
		} else if deployedURL == "" {
			deployedURL = u
		}
	}

	// Deployment URL is mandatory; a repo reference is not.
	if deployedURL == "" {
		return nil
	}

	params := &model.VerificationParams{
		RepoURL:     repoURL,
		DeployedURL: deployedURL,
	}

	if m := branchPattern.FindStringSubmatch(input); m != nil {
		params.Branch = m[1]
	}
	if m := filePattern.FindStringSubmatch(input); m != nil {
		params.FileToCheck = m[1]
	}

	if repoURL == "" {
		// Scan with URLs blanked out so path segments of the deployed URL
		// cannot masquerade as an owner/repo token.
		bare := urlPattern.ReplaceAllString(input, " ")
		if m := ownerRepoPattern.FindStringSubmatch(bare); m != nil {
			params.Owner = m[1]
			params.Repo = m[2]
		}
	}

	return params
}
