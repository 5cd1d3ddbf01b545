package branches_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/profile_scripts/internal/branches"
	"github.com/temirov/profile_scripts/internal/execshell"
	"github.com/temirov/profile_scripts/internal/markdown"
	"github.com/temirov/profile_scripts/internal/utils"
)

const (
	commandReadmePathConstant       = "/repo/README.md"
	commandReadmeContentConstant    = "# Profile\n<!-- BRANCH_ACTIVITY:START -->\n<!-- BRANCH_ACTIVITY:END -->\n"
	commandRepositoryFlagConstant   = "--repository"
	commandLimitFlagConstant        = "--limit"
	commandReadmeFlagConstant       = "--readme"
	commandEscapePolicyFlagConstant = "--escape-policy"
	commandDryRunFlagConstant       = "--dry-run"
	commandTokenConstant            = "ghp_branches"
	repositoryEndpointConstant      = "repos/octocat/profile"
	branchesEndpointConstant        = "repos/octocat/profile/branches?per_page=100"
	mainCommitEndpointConstant      = "repos/octocat/profile/commits/aaaaaaa1111"
	featureCommitEndpointConstant   = "repos/octocat/profile/commits/bbbbbbb2222"
	repositoryResponseConstant      = `{"name":"profile","full_name":"octocat/profile","stargazers_count":3,"forks_count":1,"open_issues_count":0,"owner":{"login":"octocat"}}`
	branchesResponseConstant        = `[{"name":"main","commit":{"sha":"aaaaaaa1111"}},{"name":"feature","commit":{"sha":"bbbbbbb2222"}}]`
	mainCommitResponseConstant      = `{"sha":"aaaaaaa1111","html_url":"https://github.com/octocat/profile/commit/aaaaaaa1111","commit":{"message":"Use <table> layout","author":{"name":"Alice","date":"2024-01-01T10:00:00Z"}}}`
	featureCommitResponseConstant   = `{"sha":"bbbbbbb2222","html_url":"https://github.com/octocat/profile/commit/bbbbbbb2222","commit":{"message":"Add feature","author":{"name":"Bob","date":"2024-01-02T10:00:00Z"}}}`
	notFoundStandardErrorConstant   = "gh: Not Found (HTTP 404)"
)

type routingGitHubExecutor struct {
	responses          map[string]string
	requestedEndpoints []string
}

func (executor *routingGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	for _, argument := range details.Arguments {
		response, exists := executor.responses[argument]
		if !exists {
			continue
		}
		executor.requestedEndpoints = append(executor.requestedEndpoints, argument)
		return execshell.ExecutionResult{StandardOutput: response}, nil
	}
	return execshell.ExecutionResult{}, execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGitHub, Details: details},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: notFoundStandardErrorConstant},
	}
}

func newRoutingGitHubExecutor() *routingGitHubExecutor {
	return &routingGitHubExecutor{responses: map[string]string{
		repositoryEndpointConstant:    repositoryResponseConstant,
		branchesEndpointConstant:      branchesResponseConstant,
		mainCommitEndpointConstant:    mainCommitResponseConstant,
		featureCommitEndpointConstant: featureCommitResponseConstant,
	}}
}

func newBranchesCommandBuilder(testInstance *testing.T, executor *routingGitHubExecutor, fileSystem afero.Fs, configuration branches.CommandConfiguration) *branches.CommandBuilder {
	testInstance.Helper()
	return &branches.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() branches.CommandConfiguration { return configuration },
		TokenProvider:         func() string { return commandTokenConstant },
		GitHubExecutor:        executor,
		FileSystem:            fileSystem,
		Clock:                 utils.FixedClock{Instant: dashboardGeneratedAt},
		LockDirectory:         testInstance.TempDir(),
	}
}

func TestBranchesCommandFlagsOverrideConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name             string
		arguments        []string
		expectedRows     []string
		unexpectedRows   []string
		expectedRequests int
	}{
		{
			name:      "configuration_only",
			arguments: []string{},
			expectedRows: []string{
				"| `main` | Use <table> layout | Alice | 2024-01-01 | [`aaaaaaa`](https://github.com/octocat/profile/commit/aaaaaaa1111) |",
				"| `feature` | Add feature | Bob | 2024-01-02 | [`bbbbbbb`](https://github.com/octocat/profile/commit/bbbbbbb2222) |",
			},
			expectedRequests: 4,
		},
		{
			name:      "limit_and_policy_flags",
			arguments: []string{commandLimitFlagConstant, "1", commandEscapePolicyFlagConstant, string(markdown.EscapePolicyTable)},
			expectedRows: []string{
				"| `main` | Use &lt;table&gt; layout | Alice | 2024-01-01 | [`aaaaaaa`](https://github.com/octocat/profile/commit/aaaaaaa1111) |",
			},
			unexpectedRows:   []string{"| `feature` |"},
			expectedRequests: 3,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			require.NoError(testInstance, afero.WriteFile(fileSystem, commandReadmePathConstant, []byte(commandReadmeContentConstant), 0o644))

			configuration := branches.DefaultCommandConfiguration()
			configuration.Repository = "octocat/profile"
			configuration.ReadmePath = commandReadmePathConstant

			executor := newRoutingGitHubExecutor()
			command, buildError := newBranchesCommandBuilder(testInstance, executor, fileSystem, configuration).Build()
			require.NoError(testInstance, buildError)
			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)

			require.NoError(testInstance, command.Execute())

			content, readError := afero.ReadFile(fileSystem, commandReadmePathConstant)
			require.NoError(testInstance, readError)
			for _, expectedRow := range testCase.expectedRows {
				require.Contains(testInstance, string(content), expectedRow)
			}
			for _, unexpectedRow := range testCase.unexpectedRows {
				require.NotContains(testInstance, string(content), unexpectedRow)
			}
			require.Len(testInstance, executor.requestedEndpoints, testCase.expectedRequests)
			require.True(testInstance, strings.HasSuffix(string(content), "*🕐 Last updated: 2024-01-02 03:04:05 UTC*\n<!-- BRANCH_ACTIVITY:END -->\n"))
		})
	}
}

func TestBranchesCommandDryRunLeavesReadme(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, commandReadmePathConstant, []byte(commandReadmeContentConstant), 0o644))

	command, buildError := newBranchesCommandBuilder(testInstance, newRoutingGitHubExecutor(), fileSystem, branches.DefaultCommandConfiguration()).Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &strings.Builder{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())
	command.SetArgs([]string{commandRepositoryFlagConstant, "octocat/profile", commandReadmeFlagConstant, commandReadmePathConstant, commandDryRunFlagConstant})

	require.NoError(testInstance, command.Execute())
	require.True(testInstance, strings.HasPrefix(outputBuffer.String(), "<!-- BRANCH_ACTIVITY:START -->\n| 🌿 Branch |"))

	content, readError := afero.ReadFile(fileSystem, commandReadmePathConstant)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, commandReadmeContentConstant, string(content))
}

func TestBranchesCommandRejectsInvalidInput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError error
		expectedText  string
	}{
		{
			name:          "missing_repository",
			arguments:     []string{},
			expectedError: branches.ErrRepositoryRequired,
		},
		{
			name:         "unknown_escape_policy",
			arguments:    []string{commandRepositoryFlagConstant, "octocat/profile", commandEscapePolicyFlagConstant, "html"},
			expectedText: "unsupported escape policy",
		},
		{
			name:         "positional_arguments",
			arguments:    []string{"extra"},
			expectedText: "does not accept positional arguments",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := newRoutingGitHubExecutor()
			command, buildError := newBranchesCommandBuilder(testInstance, executor, afero.NewMemMapFs(), branches.DefaultCommandConfiguration()).Build()
			require.NoError(testInstance, buildError)
			command.SilenceUsage = true
			command.SilenceErrors = true
			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)

			executionError := command.Execute()
			require.Error(testInstance, executionError)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, executionError, testCase.expectedError)
			}
			if len(testCase.expectedText) > 0 {
				require.ErrorContains(testInstance, executionError, testCase.expectedText)
			}
			require.Empty(testInstance, executor.requestedEndpoints)
		})
	}
}
