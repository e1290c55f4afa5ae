package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"

	"github.com/trakt-agent/server/internal/agent/model"
	logx "github.com/trakt-agent/server/pkg/logger"
)

const (
	previewLimit  = 500
	fetchUserAgent = "Trakt-GitHub-Verifier/1.0"
)

var githubURLPattern = regexp.MustCompile(`github\.com/([^/\s]+)/([^/\s]+)`)

// Verifier checks a deployed artifact against a GitHub repository by
// comparing one file at the branch head commit with the same file served
// from the deployed URL.
type Verifier struct {
	client *gh.Client
	http   *http.Client
}

// NewVerifier builds a Verifier. An empty token yields unauthenticated API
// access (rate limited, public repos only).
func NewVerifier(cfg model.GitHubConfig) *Verifier {
	client := gh.NewClient(nil)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	timeout := time.Duration(cfg.FetchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Verifier{
		client: client,
		http:   &http.Client{Timeout: timeout},
	}
}

// Verify resolves the repository reference, fetches both copies of the file
// and compares them. Failures are embedded in the result rather than
// returned, so the caller always has something to render.
func (v *Verifier) Verify(ctx context.Context, params model.VerificationParams) *model.VerificationResult {
	owner, repo := params.Owner, params.Repo
	if params.RepoURL != "" {
		var err error
		owner, repo, err = ParseGitHubURL(params.RepoURL)
		if err != nil {
			return failure(params.DeployedURL, err)
		}
	}
	if owner == "" || repo == "" {
		return failure(params.DeployedURL, fmt.Errorf("no repository reference: provide a GitHub URL or owner/repo"))
	}

	branch := params.Branch
	if branch == "" {
		branch = "main"
	}
	fileToCheck := params.FileToCheck
	if fileToCheck == "" {
		fileToCheck = "package.json"
	}

	logx.Debug().
		Str("owner", owner).
		Str("repo", repo).
		Str("branch", branch).
		Str("file", fileToCheck).
		Str("deployed_url", params.DeployedURL).
		Msg("Starting deployment verification")

	commitSHA, err := v.branchCommit(ctx, owner, repo, branch)
	if err != nil {
		return failure(params.DeployedURL, err)
	}

	repoContent, err := v.fileAtCommit(ctx, owner, repo, commitSHA, fileToCheck)
	if err != nil {
		return &model.VerificationResult{
			DeployedURL: params.DeployedURL,
			CommitSHA:   commitSHA,
			Message:     fmt.Sprintf("❌ Verification failed: %v", err),
			Error:       err.Error(),
		}
	}

	deployedFileURL := strings.TrimRight(params.DeployedURL, "/") + "/" + fileToCheck
	deployedContent, err := v.fetchDeployedFile(ctx, deployedFileURL)
	if err != nil {
		return &model.VerificationResult{
			DeployedURL: params.DeployedURL,
			CommitSHA:   commitSHA,
			Message:     fmt.Sprintf("❌ Verification failed: %v", err),
			Error:       err.Error(),
		}
	}

	repoContent = strings.TrimSpace(repoContent)
	deployedContent = strings.TrimSpace(deployedContent)
	match := repoContent == deployedContent

	message := fmt.Sprintf("❌ Deployment does NOT match repo code at commit %s", shortSHA(commitSHA))
	if match {
		message = fmt.Sprintf("✅ Deployment matches repo code at commit %s", shortSHA(commitSHA))
	}

	return &model.VerificationResult{
		Verified:     match,
		CommitSHA:    commitSHA,
		DeployedURL:  params.DeployedURL,
		FileMatch:    match,
		Message:      message,
		RepoFile:     preview(repoContent),
		DeployedFile: preview(deployedContent),
	}
}

func (v *Verifier) branchCommit(ctx context.Context, owner, repo, branch string) (string, error) {
	info, _, err := v.client.Repositories.GetBranch(ctx, owner, repo, branch, 3)
	if err != nil {
		return "", fmt.Errorf("failed to get commit for %s/%s@%s: %w", owner, repo, branch, err)
	}
	return info.GetCommit().GetSHA(), nil
}

func (v *Verifier) fileAtCommit(ctx context.Context, owner, repo, commitSHA, path string) (string, error) {
	fileContent, _, _, err := v.client.Repositories.GetContents(ctx, owner, repo, path,
		&gh.RepositoryContentGetOptions{Ref: commitSHA})
	if err != nil {
		return "", fmt.Errorf("failed to get file content for %s: %w", path, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("path %s is a directory, not a file", path)
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode file content for %s: %w", path, err)
	}
	return content, nil
}

func (v *Verifier) fetchDeployedFile(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deployed file from %s: %w", url, err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := v.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deployed file from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch deployed file from %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read deployed file from %s: %w", url, err)
	}
	return string(body), nil
}

// ParseGitHubURL extracts owner and repo from a GitHub repository URL.
func ParseGitHubURL(repoURL string) (owner, repo string, err error) {
	m := githubURLPattern.FindStringSubmatch(repoURL)
	if m == nil {
		return "", "", fmt.Errorf("invalid GitHub URL format, expected https://github.com/owner/repo")
	}
	repo = strings.TrimSuffix(m[2], ".git")
	repo = strings.TrimRight(repo, "/")
	return m[1], repo, nil
}

func failure(deployedURL string, err error) *model.VerificationResult {
	logx.Error().Err(err).Str("deployed_url", deployedURL).Msg("Verification failed")
	return &model.VerificationResult{
		DeployedURL: deployedURL,
		Message:     fmt.Sprintf("❌ Verification failed: %v", err),
		Error:       err.Error(),
	}
}

func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "..."
}

func shortSHA(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

var _ model.DeploymentVerifier = (*Verifier)(nil)
