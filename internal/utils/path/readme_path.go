package pathutils

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultReadmePathConstant is the README updated when no path is configured.
	DefaultReadmePathConstant       = "README.md"
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// ReadmePathResolver normalizes configured README paths.
type ReadmePathResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
}

// NewReadmePathResolver constructs a resolver. A nil provider uses os.UserHomeDir.
func NewReadmePathResolver(provider HomeDirectoryProvider) ReadmePathResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return ReadmePathResolver{homeDirectoryProvider: provider}
}

// Resolve trims candidatePath, substitutes the default README for an empty value,
// and expands a leading tilde to the home directory.
func (resolver ReadmePathResolver) Resolve(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return DefaultReadmePathConstant
	}
	if !strings.HasPrefix(trimmedPath, tildeSymbolConstant) {
		return filepath.Clean(trimmedPath)
	}

	provider := resolver.homeDirectoryProvider
	if provider == nil {
		provider = os.UserHomeDir
	}
	homeDirectory, homeError := provider()
	if homeError != nil || len(homeDirectory) == 0 {
		return filepath.Clean(trimmedPath)
	}

	switch {
	case trimmedPath == tildeSymbolConstant:
		return homeDirectory
	case strings.HasPrefix(trimmedPath, tildeForwardSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(trimmedPath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(trimmedPath, tildeSymbolConstant+string(os.PathSeparator)):
		return filepath.Join(homeDirectory, strings.TrimPrefix(trimmedPath, tildeSymbolConstant+string(os.PathSeparator)))
	default:
		return filepath.Clean(trimmedPath)
	}
}
