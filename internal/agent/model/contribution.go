package model

import "context"

// ContributionReport is the structured form of a user contribution or error
// report, as emitted by the contribution model prompt.
type ContributionReport struct {
	Type        string `json:"type"` // "error_report" or "code_contribution"
	Description string `json:"description"`
	Details     string `json:"details"`
	Impact      string `json:"impact"`
	Priority    string `json:"priority"` // low, medium, high
}

// ContributionRepository persists contribution reports keyed by a
// timestamp-derived identifier.
type ContributionRepository interface {
	Save(ctx context.Context, report *ContributionReport) (id string, err error)
}
