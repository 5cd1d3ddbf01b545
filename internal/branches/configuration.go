package branches

import (
	"strings"

	"github.com/temirov/profile_scripts/internal/markdown"
	pathutils "github.com/temirov/profile_scripts/internal/utils/path"
)

const (
	configurationRepositoryKeyConstant             = "repository"
	configurationLimitKeyConstant                  = "limit"
	configurationReadmePathKeyConstant             = "readme_path"
	configurationEscapePolicyKeyConstant           = "escape_policy"
	configurationIgnoreTimestampChangesKeyConstant = "ignore_timestamp_changes"
	configurationDryRunKeyConstant                 = "dry_run"
)

// CommandConfiguration captures configuration values for the branch dashboard command.
type CommandConfiguration struct {
	Repository             string `mapstructure:"repository"`
	Limit                  int    `mapstructure:"limit"`
	ReadmePath             string `mapstructure:"readme_path"`
	EscapePolicy           string `mapstructure:"escape_policy"`
	IgnoreTimestampChanges bool   `mapstructure:"ignore_timestamp_changes"`
	DryRun                 bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides baseline configuration values for the branch dashboard.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Limit:                  DefaultBranchLimitConstant,
		ReadmePath:             pathutils.DefaultReadmePathConstant,
		EscapePolicy:           string(markdown.EscapePolicyFull),
		IgnoreTimestampChanges: true,
	}
}

// DefaultConfigurationValues returns the defaults keyed below rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRepositoryKeyConstant:             defaults.Repository,
		rootKey + "." + configurationLimitKeyConstant:                  defaults.Limit,
		rootKey + "." + configurationReadmePathKeyConstant:             defaults.ReadmePath,
		rootKey + "." + configurationEscapePolicyKeyConstant:           defaults.EscapePolicy,
		rootKey + "." + configurationIgnoreTimestampChangesKeyConstant: defaults.IgnoreTimestampChanges,
		rootKey + "." + configurationDryRunKeyConstant:                 defaults.DryRun,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.ReadmePath = strings.TrimSpace(configuration.ReadmePath)
	sanitized.EscapePolicy = strings.TrimSpace(configuration.EscapePolicy)
	return sanitized
}
