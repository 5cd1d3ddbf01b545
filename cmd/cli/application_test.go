package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/profile_scripts/internal/branches"
	"github.com/temirov/profile_scripts/internal/execshell"
	"github.com/temirov/profile_scripts/internal/tools"
	"github.com/temirov/profile_scripts/internal/utils"
)

const (
	testReadmePathConstant                 = "/profile/README.md"
	testToolsReadmeContentConstant         = "# Hi\n<!-- TOOLS_LIST:START -->\n<!-- TOOLS_LIST:END -->\n"
	testBranchesReadmeContentConstant      = "# Hi\n<!-- BRANCH_ACTIVITY:START -->\n<!-- BRANCH_ACTIVITY:END -->\n"
	testTokenConstant                      = "ghp_application"
	testNotFoundStandardErrorConstant      = "gh: Not Found (HTTP 404)"
	testConfigurationFileNameConstant      = "profile.yaml"
	testBranchConfigurationContentConstant = "tools:\n  branch_dashboard:\n    repository: octocat/profile\n    limit: 1\n    escape_policy: table\n    dry_run: true\n"
)

var testGeneratedAt = time.Date(2024, time.July, 1, 8, 0, 0, 0, time.UTC)

type routingGitHubExecutor struct {
	responses map[string]string
	tokens    []string
}

func (executor *routingGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.tokens = append(executor.tokens, details.EnvironmentVariables["GH_TOKEN"])
	for _, argument := range details.Arguments {
		if response, exists := executor.responses[argument]; exists {
			return execshell.ExecutionResult{StandardOutput: response}, nil
		}
	}
	return execshell.ExecutionResult{}, execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGitHub, Details: details},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: testNotFoundStandardErrorConstant},
	}
}

func newRoutingGitHubExecutor() *routingGitHubExecutor {
	return &routingGitHubExecutor{responses: map[string]string{
		"users/octocat/repos?per_page=100":            `[{"name":"timer","full_name":"octocat/timer","html_url":"https://github.com/octocat/timer","stargazers_count":4,"owner":{"login":"octocat"}}]`,
		"repos/octocat/timer/contents":                `[{"name":"index.html","path":"index.html","type":"file"}]`,
		"repos/octocat/timer/languages":               `{"HTML":120}`,
		"repos/octocat/timer/topics":                  `{"names":[]}`,
		"repos/octocat/profile":                       `{"name":"profile","full_name":"octocat/profile","stargazers_count":1,"owner":{"login":"octocat"}}`,
		"repos/octocat/profile/branches?per_page=100": `[{"name":"main","commit":{"sha":"aaaaaaa1111"}},{"name":"dev","commit":{"sha":"bbbbbbb2222"}}]`,
		"repos/octocat/profile/commits/aaaaaaa1111":   `{"sha":"aaaaaaa1111","html_url":"https://github.com/octocat/profile/commit/aaaaaaa1111","commit":{"message":"Render <b> tags","author":{"name":"Alice","date":"2024-06-30T10:00:00Z"}}}`,
		"repos/octocat/profile/commits/bbbbbbb2222":   `{"sha":"bbbbbbb2222","html_url":"https://github.com/octocat/profile/commit/bbbbbbb2222","commit":{"message":"Dev work","author":{"name":"Bob","date":"2024-06-29T10:00:00Z"}}}`,
	}}
}

// clearGitHubEnvironment keeps ambient CI variables from leaking into the configuration.
func clearGitHubEnvironment(testInstance *testing.T) {
	testInstance.Helper()
	for _, name := range []string{
		githubTokenEnvironmentVariableConstant,
		githubCLITokenEnvironmentVariableConstant,
		githubActorEnvironmentVariableConstant,
		githubRepositoryEnvironmentVariableConstant,
		"PROFILESCRIPTS_COMMON_GITHUB_TOKEN",
		"PROFILESCRIPTS_TOOLS_TOOL_SCAN_USERNAME",
		"PROFILESCRIPTS_TOOLS_BRANCH_DASHBOARD_REPOSITORY",
	} {
		testInstance.Setenv(name, "")
	}
}

func newTestApplication(testInstance *testing.T, executor *routingGitHubExecutor, fileSystem afero.Fs) (*Application, *bytes.Buffer) {
	testInstance.Helper()
	application := newApplication(applicationCollaborators{
		GitHubExecutor: executor,
		FileSystem:     fileSystem,
		Clock:          utils.FixedClock{Instant: testGeneratedAt},
		LockDirectory:  testInstance.TempDir(),
	})
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(&bytes.Buffer{})
	return application, outputBuffer
}

func TestEmbeddedDefaultConfigurationMatchesCommandDefaults(testInstance *testing.T) {
	content, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)

	var document map[string]any
	require.NoError(testInstance, yaml.Unmarshal(content, &document))

	flattened := map[string]any{}
	flattenConfiguration("", document, flattened)

	expectedDefaults := map[string]any{}
	for key, value := range tools.DefaultConfigurationValues(toolScanConfigurationKeyConstant) {
		expectedDefaults[key] = value
	}
	for key, value := range branches.DefaultConfigurationValues(branchDashboardConfigurationKeyConstant) {
		expectedDefaults[key] = value
	}

	for key, expectedValue := range expectedDefaults {
		testInstance.Run(key, func(testInstance *testing.T) {
			actualValue, exists := flattened[key]
			require.True(testInstance, exists)
			if expectedSlice, isSlice := expectedValue.([]string); isSlice {
				require.Empty(testInstance, expectedSlice)
				require.Empty(testInstance, actualValue)
				return
			}
			require.EqualValues(testInstance, expectedValue, actualValue)
		})
	}

	require.Equal(testInstance, string(utils.LogLevelInfo), flattened[commonLogLevelConfigKeyConstant])
	require.Equal(testInstance, string(utils.LogFormatStructured), flattened[commonLogFormatConfigKeyConstant])
}

func flattenConfiguration(prefix string, node map[string]any, target map[string]any) {
	for key, value := range node {
		fullKey := key
		if len(prefix) > 0 {
			fullKey = prefix + "." + key
		}
		if nested, isMap := value.(map[string]any); isMap {
			flattenConfiguration(fullKey, nested, target)
			continue
		}
		target[fullKey] = value
	}
}

func TestApplicationRegistersProfileCommands(testInstance *testing.T) {
	application := NewApplication()
	registered := map[string]bool{}
	for _, command := range application.rootCommand.Commands() {
		registered[command.Name()] = true
	}
	require.True(testInstance, registered["tools"])
	require.True(testInstance, registered["branches"])

	for _, flagName := range []string{configFileFlagNameConstant, logLevelFlagNameConstant, logFormatFlagNameConstant, logFileFlagNameConstant} {
		require.NotNil(testInstance, application.rootCommand.PersistentFlags().Lookup(flagName), flagName)
	}
}

func TestApplicationToolsUsesGitHubEnvironment(testInstance *testing.T) {
	clearGitHubEnvironment(testInstance)
	testInstance.Setenv(githubCLITokenEnvironmentVariableConstant, testTokenConstant)
	testInstance.Setenv(githubActorEnvironmentVariableConstant, "octocat")

	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, testReadmePathConstant, []byte(testToolsReadmeContentConstant), 0o644))

	executor := newRoutingGitHubExecutor()
	application, _ := newTestApplication(testInstance, executor, fileSystem)
	application.rootCommand.SetArgs([]string{"tools", "--readme", testReadmePathConstant})

	require.NoError(testInstance, application.Execute())

	updatedContent, readError := afero.ReadFile(fileSystem, testReadmePathConstant)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(updatedContent), "<!-- TOOLS_LIST:START -->\n<table>")
	require.Contains(testInstance, string(updatedContent), "https://github.com/octocat/timer")
	require.Contains(testInstance, string(updatedContent), "*🕐 Last updated: 2024-07-01 08:00:00 UTC*")

	require.NotEmpty(testInstance, executor.tokens)
	for _, token := range executor.tokens {
		require.Equal(testInstance, testTokenConstant, token)
	}
}

func TestApplicationBranchesReadsConfigurationFile(testInstance *testing.T) {
	clearGitHubEnvironment(testInstance)
	testInstance.Setenv(githubTokenEnvironmentVariableConstant, testTokenConstant)

	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testBranchConfigurationContentConstant), 0o600))

	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, testReadmePathConstant, []byte(testBranchesReadmeContentConstant), 0o644))

	application, outputBuffer := newTestApplication(testInstance, newRoutingGitHubExecutor(), fileSystem)
	application.rootCommand.SetArgs([]string{"branches", "--config", configurationPath, "--readme", testReadmePathConstant})

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
	require.Equal(testInstance, 1, application.configuration.Tools.BranchDashboard.Limit)

	printedRegion := outputBuffer.String()
	require.Contains(testInstance, printedRegion, "Render &lt;b&gt; tags")
	require.NotContains(testInstance, printedRegion, "`dev`")

	unchangedContent, readError := afero.ReadFile(fileSystem, testReadmePathConstant)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testBranchesReadmeContentConstant, string(unchangedContent))
}

func TestApplicationPrefixedEnvironmentOverridesDefaults(testInstance *testing.T) {
	clearGitHubEnvironment(testInstance)
	testInstance.Setenv(githubTokenEnvironmentVariableConstant, testTokenConstant)
	testInstance.Setenv(githubRepositoryEnvironmentVariableConstant, "octocat/profile")
	testInstance.Setenv("PROFILESCRIPTS_TOOLS_BRANCH_DASHBOARD_LIMIT", "2")

	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, testReadmePathConstant, []byte(testBranchesReadmeContentConstant), 0o644))

	application, _ := newTestApplication(testInstance, newRoutingGitHubExecutor(), fileSystem)
	application.rootCommand.SetArgs([]string{"branches", "--readme", testReadmePathConstant})

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, 2, application.configuration.Tools.BranchDashboard.Limit)
	require.Equal(testInstance, "octocat/profile", application.configuration.Tools.BranchDashboard.Repository)

	updatedContent, readError := afero.ReadFile(fileSystem, testReadmePathConstant)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(updatedContent), "| `dev` |")
	require.Contains(testInstance, string(updatedContent), "Render <b> tags")
}

func TestApplicationFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError error
		errorSample   string
	}{
		{
			name:          "tools_without_token",
			arguments:     []string{"tools", "--user", "octocat"},
			expectedError: tools.ErrTokenRequired,
		},
		{
			name:          "branches_without_token",
			arguments:     []string{"branches", "--repository", "octocat/profile"},
			expectedError: branches.ErrTokenRequired,
		},
		{
			name:        "unsupported_log_format",
			arguments:   []string{"--log-format", "xml", "tools"},
			errorSample: "xml",
		},
		{
			name:        "missing_configuration_file",
			arguments:   []string{"--config", "/nonexistent/profile.yaml", "tools"},
			errorSample: "unable to load configuration",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			clearGitHubEnvironment(testInstance)
			application, _ := newTestApplication(testInstance, newRoutingGitHubExecutor(), afero.NewMemMapFs())
			application.rootCommand.SetArgs(testCase.arguments)

			executionError := application.Execute()
			require.Error(testInstance, executionError)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, executionError, testCase.expectedError)
			}
			if len(testCase.errorSample) > 0 {
				require.Contains(testInstance, executionError.Error(), testCase.errorSample)
			}
		})
	}
}
