package tools

import (
	"strings"

	pathutils "github.com/temirov/profile_scripts/internal/utils/path"
)

const (
	configurationUsernameKeyConstant               = "username"
	configurationReadmePathKeyConstant             = "readme_path"
	configurationExcludeKeyConstant                = "exclude"
	configurationSkipForksKeyConstant              = "skip_forks"
	configurationSkipArchivedKeyConstant           = "skip_archived"
	configurationIgnoreTimestampChangesKeyConstant = "ignore_timestamp_changes"
	configurationDryRunKeyConstant                 = "dry_run"
)

// CommandConfiguration captures persisted settings for the tool scan.
type CommandConfiguration struct {
	Username               string   `mapstructure:"username"`
	ReadmePath             string   `mapstructure:"readme_path"`
	Exclude                []string `mapstructure:"exclude"`
	SkipForks              bool     `mapstructure:"skip_forks"`
	SkipArchived           bool     `mapstructure:"skip_archived"`
	IgnoreTimestampChanges bool     `mapstructure:"ignore_timestamp_changes"`
	DryRun                 bool     `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides baseline values for the tool scan.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ReadmePath:             pathutils.DefaultReadmePathConstant,
		Exclude:                []string{},
		IgnoreTimestampChanges: true,
	}
}

// DefaultConfigurationValues returns the defaults keyed below rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationUsernameKeyConstant:               defaults.Username,
		rootKey + "." + configurationReadmePathKeyConstant:             defaults.ReadmePath,
		rootKey + "." + configurationExcludeKeyConstant:                defaults.Exclude,
		rootKey + "." + configurationSkipForksKeyConstant:              defaults.SkipForks,
		rootKey + "." + configurationSkipArchivedKeyConstant:           defaults.SkipArchived,
		rootKey + "." + configurationIgnoreTimestampChangesKeyConstant: defaults.IgnoreTimestampChanges,
		rootKey + "." + configurationDryRunKeyConstant:                 defaults.DryRun,
	}
}

// Sanitize trims configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Username = strings.TrimSpace(configuration.Username)
	sanitized.ReadmePath = strings.TrimSpace(configuration.ReadmePath)
	sanitized.Exclude = sanitizeNames(configuration.Exclude)
	return sanitized
}

func sanitizeNames(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
