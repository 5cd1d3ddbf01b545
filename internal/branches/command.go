package branches

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/profile_scripts/internal/dependencies"
	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/markdown"
	"github.com/temirov/profile_scripts/internal/readme"
	"github.com/temirov/profile_scripts/internal/utils"
	flagutils "github.com/temirov/profile_scripts/internal/utils/flags"
	pathutils "github.com/temirov/profile_scripts/internal/utils/path"
)

const (
	commandUseConstant                    = "branches"
	commandShortDescriptionConstant       = "Publish the branch activity dashboard of a repository"
	commandLongDescriptionConstant        = "branches lists the branches of an owner/repo, reads the latest commit of each, and rewrites the BRANCH_ACTIVITY region of a README as a Markdown table."
	commandExampleConstant                = "profile-scripts branches --repository octocat/octocat --limit 10"
	commandExecutionErrorTemplateConstant = "branch dashboard failed: %w"
	unexpectedArgumentsMessageConstant    = "branches does not accept positional arguments"
	flagRepositoryNameConstant            = "repository"
	flagRepositoryDescriptionConstant     = "Repository in owner/repo form (defaults to GITHUB_REPOSITORY)"
	flagLimitNameConstant                 = "limit"
	flagLimitDescriptionConstant          = "Maximum number of branches to render"
	flagReadmeNameConstant                = "readme"
	flagReadmeDescriptionConstant         = "Path of the README to update"
	flagEscapePolicyNameConstant          = "escape-policy"
	flagEscapePolicyDescriptionConstant   = "Escaping applied to commit titles"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Print the generated region without writing the README"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for the branch dashboard.
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

// Build constructs the branches command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		RunE:    builder.run,
	}

	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().Int(flagLimitNameConstant, DefaultBranchLimitConstant, flagLimitDescriptionConstant)
	command.Flags().String(flagReadmeNameConstant, "", flagReadmeDescriptionConstant)
	command.Flags().String(flagEscapePolicyNameConstant, "", flagutils.FormatChoiceUsage(string(markdown.EscapePolicyFull), []string{string(markdown.EscapePolicyFull), string(markdown.EscapePolicyTable)}, flagEscapePolicyDescriptionConstant))
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}
	if len(options.AccessToken) == 0 {
		return ErrTokenRequired
	}
	if len(options.Repository) == 0 {
		return ErrRepositoryRequired
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

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (DashboardOptions, error) {
	configuration := builder.resolveConfiguration()

	repository := configuration.Repository
	if command.Flags().Changed(flagRepositoryNameConstant) {
		flagValue, _ := command.Flags().GetString(flagRepositoryNameConstant)
		repository = strings.TrimSpace(flagValue)
	}

	limit := configuration.Limit
	if command.Flags().Changed(flagLimitNameConstant) {
		limit, _ = command.Flags().GetInt(flagLimitNameConstant)
	}

	readmePath := configuration.ReadmePath
	if command.Flags().Changed(flagReadmeNameConstant) {
		readmePath, _ = command.Flags().GetString(flagReadmeNameConstant)
	}

	escapePolicyValue := configuration.EscapePolicy
	if command.Flags().Changed(flagEscapePolicyNameConstant) {
		escapePolicyValue, _ = command.Flags().GetString(flagEscapePolicyNameConstant)
	}
	escapePolicy, policyError := markdown.ParseEscapePolicy(escapePolicyValue)
	if policyError != nil {
		return DashboardOptions{}, policyError
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(flagDryRunNameConstant) {
		dryRun, _ = command.Flags().GetBool(flagDryRunNameConstant)
	}

	return DashboardOptions{
		AccessToken:            builder.resolveToken(),
		Repository:             repository,
		Limit:                  limit,
		ReadmePath:             pathutils.NewReadmePathResolver(builder.HomeDirectoryProvider).Resolve(readmePath),
		EscapePolicy:           escapePolicy,
		IgnoreTimestampChanges: configuration.IgnoreTimestampChanges,
		DryRun:                 dryRun,
	}, nil
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
