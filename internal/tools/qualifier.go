package tools

import (
	"strings"

	"github.com/temirov/profile_scripts/internal/githubcli"
)

var toolFileExtensions = []string{".html", ".htm"}

// IsToolFile reports whether a file name carries an HTML extension, ignoring case.
func IsToolFile(fileName string) bool {
	lowerCaseName := strings.ToLower(fileName)
	for _, extension := range toolFileExtensions {
		if strings.HasSuffix(lowerCaseName, extension) {
			return true
		}
	}
	return false
}

// Qualifies returns the HTML files found in a root listing, in listing order.
// The repository is a tool exactly when the result is non-empty.
func Qualifies(entries []githubcli.ContentEntry) []string {
	toolFiles := []string{}
	for _, entry := range entries {
		if entry.Type == githubcli.ContentEntryTypeDirectory {
			continue
		}
		if IsToolFile(entry.Name) {
			toolFiles = append(toolFiles, entry.Name)
		}
	}
	return toolFiles
}

// IsIdentityRepository reports whether repositoryName is the profile repository of username.
func IsIdentityRepository(repositoryName string, username string) bool {
	return strings.EqualFold(strings.TrimSpace(repositoryName), strings.TrimSpace(username))
}
