package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/profile_scripts/internal/branches"
	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/tools"
	"github.com/temirov/profile_scripts/internal/utils"
	flagutils "github.com/temirov/profile_scripts/internal/utils/flags"
)

const (
	applicationNameConstant                     = "profile-scripts"
	applicationShortDescriptionConstant         = "Keep a GitHub profile README up to date"
	applicationLongDescriptionConstant          = "profile-scripts regenerates marker-delimited regions of a profile README: a grid of the user's HTML tools and a dashboard of recent branch activity."
	configFileFlagNameConstant                  = "config"
	configFileFlagUsageConstant                 = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                    = "log-level"
	logLevelFlagUsageConstant                   = "Override the configured log level."
	logFormatFlagNameConstant                   = "log-format"
	logFormatFlagUsageConstant                  = "Override the configured log format."
	logFileFlagNameConstant                     = "log-file"
	logFileFlagUsageConstant                    = "Additionally write JSON logs to this rotating file."
	commonConfigurationKeyConstant              = "common"
	commonLogLevelConfigKeyConstant             = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant            = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant              = commonConfigurationKeyConstant + ".log_file"
	commonGitHubTokenConfigKeyConstant          = commonConfigurationKeyConstant + ".github_token"
	environmentPrefixConstant                   = "PROFILESCRIPTS"
	configurationNameConstant                   = "config"
	configurationTypeConstant                   = "yaml"
	dotEnvFileNameConstant                      = ".env"
	configurationInitializedMessageConstant     = "configuration initialized"
	configurationLogLevelFieldConstant          = "log_level"
	configurationLogFormatFieldConstant         = "log_format"
	configurationFileFieldConstant              = "config_file"
	configurationTokenPresentFieldConstant      = "github_token_configured"
	configurationLoadErrorTemplateConstant      = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant         = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant             = "unable to flush logger: %w"
	rootCommandInfoMessageConstant              = "profile-scripts CLI executed"
	rootCommandDebugMessageConstant             = "profile-scripts CLI diagnostics"
	logFieldCommandNameConstant                 = "command_name"
	logFieldArgumentCountConstant               = "argument_count"
	logFieldArgumentsConstant                   = "arguments"
	loggerNotInitializedMessageConstant         = "logger not initialized"
	defaultConfigurationSearchPathConstant      = "."
	toolsConfigurationKeyConstant               = "tools"
	toolScanConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".tool_scan"
	toolScanUsernameConfigKeyConstant           = toolScanConfigurationKeyConstant + ".username"
	branchDashboardConfigurationKeyConstant     = toolsConfigurationKeyConstant + ".branch_dashboard"
	branchDashboardRepositoryConfigKeyConstant  = branchDashboardConfigurationKeyConstant + ".repository"
	githubTokenEnvironmentVariableConstant      = "GITHUB_TOKEN"
	githubCLITokenEnvironmentVariableConstant   = "GH_TOKEN"
	githubActorEnvironmentVariableConstant      = "GITHUB_ACTOR"
	githubRepositoryEnvironmentVariableConstant = "GITHUB_REPOSITORY"
)

var (
	logLevelChoices = []string{
		string(utils.LogLevelDebug),
		string(utils.LogLevelInfo),
		string(utils.LogLevelWarn),
		string(utils.LogLevelError),
	}
	logFormatChoices = []string{
		string(utils.LogFormatStructured),
		string(utils.LogFormatConsole),
	}
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores settings shared by every command.
type ApplicationCommonConfiguration struct {
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	LogFile     string `mapstructure:"log_file"`
	GitHubToken string `mapstructure:"github_token"`
}

// ApplicationToolsConfiguration holds configuration for the README generators.
type ApplicationToolsConfiguration struct {
	ToolScan        tools.CommandConfiguration    `mapstructure:"tool_scan"`
	BranchDashboard branches.CommandConfiguration `mapstructure:"branch_dashboard"`
}

// applicationCollaborators replaces the process-level collaborators of the subcommands.
type applicationCollaborators struct {
	GitHubExecutor githubcli.GitHubCommandExecutor
	FileSystem     afero.Fs
	Clock          utils.Clock
	LockDirectory  string
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     *flagutils.ChoiceValue
	logFormatFlagValue    *flagutils.ChoiceValue
	logFileFlagValue      string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return newApplication(applicationCollaborators{})
}

func newApplication(collaborators applicationCollaborators) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.SetDotEnvFile(dotEnvFileNameConstant)
	configurationLoader.SetEnvironmentBindings(map[string][]string{
		commonGitHubTokenConfigKeyConstant:         {githubTokenEnvironmentVariableConstant, githubCLITokenEnvironmentVariableConstant},
		toolScanUsernameConfigKeyConstant:          {githubActorEnvironmentVariableConstant},
		branchDashboardRepositoryConfigKeyConstant: {githubRepositoryEnvironmentVariableConstant},
	})

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		logLevelFlagValue:   flagutils.NewChoiceValue(string(utils.LogLevelInfo), logLevelChoices),
		logFormatFlagValue:  flagutils.NewChoiceValue(string(utils.LogFormatStructured), logFormatChoices),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().Var(application.logLevelFlagValue, logLevelFlagNameConstant, flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), logLevelChoices, logLevelFlagUsageConstant))
	cobraCommand.PersistentFlags().Var(application.logFormatFlagValue, logFormatFlagNameConstant, flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), logFormatChoices, logFormatFlagUsageConstant))
	cobraCommand.PersistentFlags().StringVar(&application.logFileFlagValue, logFileFlagNameConstant, "", logFileFlagUsageConstant)

	toolScanBuilder := tools.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() tools.CommandConfiguration {
			return application.configuration.Tools.ToolScan
		},
		TokenProvider:  application.gitHubToken,
		GitHubExecutor: collaborators.GitHubExecutor,
		FileSystem:     collaborators.FileSystem,
		Clock:          collaborators.Clock,
		LockDirectory:  collaborators.LockDirectory,
	}
	toolScanCommand, toolScanBuildError := toolScanBuilder.Build()
	if toolScanBuildError == nil {
		cobraCommand.AddCommand(toolScanCommand)
	}

	branchDashboardBuilder := branches.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() branches.CommandConfiguration {
			return application.configuration.Tools.BranchDashboard
		},
		TokenProvider:  application.gitHubToken,
		GitHubExecutor: collaborators.GitHubExecutor,
		FileSystem:     collaborators.FileSystem,
		Clock:          collaborators.Clock,
		LockDirectory:  collaborators.LockDirectory,
	}
	branchDashboardCommand, branchDashboardBuildError := branchDashboardBuilder.Build()
	if branchDashboardBuildError == nil {
		cobraCommand.AddCommand(branchDashboardCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:    string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:   string(utils.LogFormatStructured),
		commonLogFileConfigKeyConstant:     "",
		commonGitHubTokenConfigKeyConstant: "",
	}
	for configurationKey, configurationValue := range tools.DefaultConfigurationValues(toolScanConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range branches.DefaultConfigurationValues(branchDashboardConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue.String()
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue.String()
	}

	if application.persistentFlagChanged(command, logFileFlagNameConstant) {
		application.configuration.Common.LogFile = application.logFileFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
		strings.TrimSpace(application.configuration.Common.LogFile),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Bool(configurationTokenPresentFieldConstant, len(application.gitHubToken()) > 0),
	)

	return nil
}

func (application *Application) gitHubToken() string {
	return strings.TrimSpace(application.configuration.Common.GitHubToken)
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	return application.syncLoggerInstance(application.logger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
