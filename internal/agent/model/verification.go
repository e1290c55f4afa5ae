package model

import "context"

// VerificationParams are the structured inputs extracted from a free-text
// verification request. Either RepoURL or Owner/Repo identifies the
// repository; RepoURL takes precedence when both could be extracted.
type VerificationParams struct {
	RepoURL     string
	Owner       string
	Repo        string
	DeployedURL string
	Branch      string
	FileToCheck string
}

// VerificationResult is the outcome produced by the deployment verifier.
type VerificationResult struct {
	Verified     bool   `json:"verified"`
	CommitSHA    string `json:"commit_sha"`
	DeployedURL  string `json:"deployed_url"`
	FileMatch    bool   `json:"file_match"`
	Message      string `json:"message"`
	RepoFile     string `json:"repo_file,omitempty"`
	DeployedFile string `json:"deployed_file,omitempty"`
	Error        string `json:"error,omitempty"`
}

// DeploymentVerifier checks a deployed artifact against a source repository.
// Failures are embedded in the result (Verified=false, Error set) so the
// caller always has something to render.
type DeploymentVerifier interface {
	Verify(ctx context.Context, params VerificationParams) *VerificationResult
}
