package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/profile_scripts/internal/dependencies"
	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/readme"
	"github.com/temirov/profile_scripts/internal/utils"
	pathutils "github.com/temirov/profile_scripts/internal/utils/path"
)

const (
	commandUseConstant                    = "tools"
	commandShortDescriptionConstant       = "Publish the user's HTML tools in the profile README"
	commandLongDescriptionConstant        = "tools scans every repository of a GitHub user, keeps the ones with HTML files at their root, and rewrites the TOOLS_LIST region of the profile README as a grid of cards."
	commandExampleConstant                = "profile-scripts tools --user octocat --readme ~/profile/README.md"
	commandExecutionErrorTemplateConstant = "tool scan failed: %w"
	unexpectedArgumentsMessageConstant    = "tools does not accept positional arguments"
	flagUserNameConstant                  = "user"
	flagUserDescriptionConstant           = "GitHub username whose repositories are scanned (defaults to GITHUB_ACTOR)"
	flagReadmeNameConstant                = "readme"
	flagReadmeDescriptionConstant         = "Path of the README to update"
	flagExcludeNameConstant               = "exclude"
	flagExcludeDescriptionConstant        = "Repository name to leave out (repeatable)"
	flagSkipForksNameConstant             = "skip-forks"
	flagSkipForksDescriptionConstant      = "Leave forked repositories out"
	flagSkipArchivedNameConstant          = "skip-archived"
	flagSkipArchivedDescriptionConstant   = "Leave archived repositories out"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Print the generated region without writing the README"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the tools command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	TokenProvider                func() string
	GitHubExecutor               githubcli.GitHubCommandExecutor
	FileSystem                   afero.Fs
	Clock                        utils.Clock
	LockDirectory                string
	HomeDirectoryProvider        pathutils.HomeDirectoryProvider
}

// Build constructs the tools command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		RunE:    builder.run,
	}

	command.Flags().String(flagUserNameConstant, "", flagUserDescriptionConstant)
	command.Flags().String(flagReadmeNameConstant, "", flagReadmeDescriptionConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, nil, flagExcludeDescriptionConstant)
	command.Flags().Bool(flagSkipForksNameConstant, false, flagSkipForksDescriptionConstant)
	command.Flags().Bool(flagSkipArchivedNameConstant, false, flagSkipArchivedDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := builder.parseOptions(command)
	if len(options.AccessToken) == 0 {
		return ErrTokenRequired
	}
	if len(options.Username) == 0 {
		return ErrUsernameRequired
	}

	logger := dependencies.ResolveLogger(builder.LoggerProvider)
	executor, executorError := dependencies.ResolveGitHubExecutor(builder.GitHubExecutor, logger, builder.humanReadable())
	if executorError != nil {
		return executorError
	}
	githubClient, clientError := dependencies.ResolveGitHubClient(executor, options.AccessToken)
	if clientError != nil {
		return clientError
	}

	updater, updaterError := readme.NewUpdater(dependencies.ResolveFileSystem(builder.FileSystem), readme.UpdaterSettings{
		IgnoreTimestampChanges: options.IgnoreTimestampChanges,
		DryRun:                 options.DryRun,
	})
	if updaterError != nil {
		return updaterError
	}

	service, serviceError := NewService(Dependencies{
		GitHubClient:  githubClient,
		ReadmeUpdater: updater,
		Logger:        logger,
		Clock:         dependencies.ResolveClock(builder.Clock),
	})
	if serviceError != nil {
		return serviceError
	}

	runLock, lockError := readme.NewLocker(builder.LockDirectory).Acquire(options.ReadmePath)
	if lockError != nil {
		return lockError
	}
	defer func() {
		_ = runLock.Release()
	}()

	result, runError := service.Run(command.Context(), options)
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	if options.DryRun {
		fmt.Fprintln(command.OutOrStdout(), result.Update.RegionContent)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) ScanOptions {
	configuration := builder.resolveConfiguration()

	username := configuration.Username
	if command.Flags().Changed(flagUserNameConstant) {
		flagValue, _ := command.Flags().GetString(flagUserNameConstant)
		username = strings.TrimSpace(flagValue)
	}

	readmePath := configuration.ReadmePath
	if command.Flags().Changed(flagReadmeNameConstant) {
		readmePath, _ = command.Flags().GetString(flagReadmeNameConstant)
	}

	excluded := configuration.Exclude
	if command.Flags().Changed(flagExcludeNameConstant) {
		flagValues, _ := command.Flags().GetStringSlice(flagExcludeNameConstant)
		excluded = sanitizeNames(flagValues)
	}

	skipForks := configuration.SkipForks
	if command.Flags().Changed(flagSkipForksNameConstant) {
		skipForks, _ = command.Flags().GetBool(flagSkipForksNameConstant)
	}

	skipArchived := configuration.SkipArchived
	if command.Flags().Changed(flagSkipArchivedNameConstant) {
		skipArchived, _ = command.Flags().GetBool(flagSkipArchivedNameConstant)
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(flagDryRunNameConstant) {
		dryRun, _ = command.Flags().GetBool(flagDryRunNameConstant)
	}

	return ScanOptions{
		AccessToken:            builder.resolveToken(),
		Username:               username,
		ReadmePath:             pathutils.NewReadmePathResolver(builder.HomeDirectoryProvider).Resolve(readmePath),
		ExcludedRepositories:   excluded,
		SkipForks:              skipForks,
		SkipArchived:           skipArchived,
		IgnoreTimestampChanges: configuration.IgnoreTimestampChanges,
		DryRun:                 dryRun,
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveToken() string {
	if builder.TokenProvider == nil {
		return ""
	}
	return strings.TrimSpace(builder.TokenProvider())
}

func (builder *CommandBuilder) humanReadable() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}
