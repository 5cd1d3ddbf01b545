package branches

import (
	"context"
	"time"

	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/markdown"
	"github.com/temirov/profile_scripts/internal/readme"
)

// DefaultBranchLimitConstant caps the number of branches rendered when no limit is configured.
const DefaultBranchLimitConstant = 15

// BranchRecord is one row of the dashboard.
type BranchRecord struct {
	BranchName  string
	CommitTitle string
	AuthorName  string
	CommitDate  time.Time
	CommitURL   string
	ShortSHA    string
}

// DashboardOptions is the explicit run context of a dashboard update.
type DashboardOptions struct {
	AccessToken            string
	Repository             string
	Limit                  int
	ReadmePath             string
	EscapePolicy           markdown.EscapePolicy
	IgnoreTimestampChanges bool
	DryRun                 bool
}

// EffectiveLimit returns the configured limit, or the default when it is not positive.
func (options DashboardOptions) EffectiveLimit() int {
	if options.Limit <= 0 {
		return DefaultBranchLimitConstant
	}
	return options.Limit
}

// DashboardResult reports the rendered records and what happened to the README.
type DashboardResult struct {
	Repository githubcli.Repository
	Records    []BranchRecord
	Update     readme.UpdateResult
}

// GitHubClient exposes the repository queries used by the dashboard.
type GitHubClient interface {
	ResolveRepository(executionContext context.Context, repository string) (githubcli.Repository, error)
	ListBranches(executionContext context.Context, repository string) ([]githubcli.Branch, error)
	ResolveCommit(executionContext context.Context, repository string, commitSHA string) (githubcli.Commit, error)
}

// ReadmeUpdater splices rendered content into a README region.
type ReadmeUpdater interface {
	Update(executionContext context.Context, path string, region readme.Region, body string) (readme.UpdateResult, error)
}
