// Package dependencies resolves the default collaborators shared by the profile commands.
package dependencies

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/profile_scripts/internal/execshell"
	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/ui"
	"github.com/temirov/profile_scripts/internal/utils"
)

// ResolveLogger returns the provided logger or a no-op logger.
func ResolveLogger(provider func() *zap.Logger) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveGitHubExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable runs additionally report every gh call on the console.
func ResolveGitHubExecutor(existing githubcli.GitHubCommandExecutor, logger *zap.Logger, humanReadable bool) (githubcli.GitHubCommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var observer execshell.CommandEventObserver
	if humanReadable {
		observer = ui.NewConsoleCommandEventLogger(logger)
	}

	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveGitHubClient builds a gh-backed client authenticated with accessToken.
func ResolveGitHubClient(executor githubcli.GitHubCommandExecutor, accessToken string) (*githubcli.Client, error) {
	return githubcli.NewClient(executor, accessToken)
}

// ResolveFileSystem returns the provided file system or the OS file system.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveClock returns the provided clock or the system clock.
func ResolveClock(existing utils.Clock) utils.Clock {
	if existing != nil {
		return existing
	}
	return utils.SystemClock{}
}
