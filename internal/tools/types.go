package tools

import (
	"context"
	"time"

	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/readme"
)

// ToolRecord describes one qualifying repository as rendered on the profile.
type ToolRecord struct {
	Name            string
	DisplayName     string
	Description     string
	PrimaryURL      string
	SourceURL       string
	StarCount       int
	ForkCount       int
	PrimaryLanguage string
	LastUpdated     time.Time
	DiscoveredFiles []string
	TopicTags       []string
}

// ScanOptions is the explicit run context of a tool scan.
type ScanOptions struct {
	AccessToken            string
	Username               string
	ReadmePath             string
	ExcludedRepositories   []string
	SkipForks              bool
	SkipArchived           bool
	IgnoreTimestampChanges bool
	DryRun                 bool
}

// ScanResult reports the records found and what happened to the README.
type ScanResult struct {
	Records []ToolRecord
	Update  readme.UpdateResult
}

// GitHubClient exposes the repository queries used by the scanner.
type GitHubClient interface {
	ListUserRepositories(executionContext context.Context, username string) ([]githubcli.Repository, error)
	ListRootContents(executionContext context.Context, repository string) ([]githubcli.ContentEntry, error)
	ListLanguages(executionContext context.Context, repository string) (map[string]int64, error)
	ListTopics(executionContext context.Context, repository string) ([]string, error)
	ResolvePagesSite(executionContext context.Context, repository string) (githubcli.PagesSite, error)
}

// ReadmeUpdater splices rendered content into a README region.
type ReadmeUpdater interface {
	Update(executionContext context.Context, path string, region readme.Region, body string) (readme.UpdateResult, error)
}
