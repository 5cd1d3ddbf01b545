package tools

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultDescriptionConstant   = "A handy little tool"
	defaultLanguageConstant      = "HTML"
	pagesSiteURLTemplateConstant = "https://%s.github.io/%s/"
)

var displayNameSeparators = strings.NewReplacer("-", " ", "_", " ")

// DisplayName turns a repository name into a card title.
func DisplayName(repositoryName string) string {
	spaced := displayNameSeparators.Replace(repositoryName)
	return cases.Title(language.Und).String(spaced)
}

// PrimaryLanguage selects the language with the most bytes. Ties resolve to the
// lexicographically smaller name and an empty breakdown yields HTML.
func PrimaryLanguage(languageBytes map[string]int64) string {
	selectedLanguage := ""
	var selectedBytes int64
	for languageName, byteCount := range languageBytes {
		if len(selectedLanguage) == 0 || byteCount > selectedBytes || (byteCount == selectedBytes && languageName < selectedLanguage) {
			selectedLanguage = languageName
			selectedBytes = byteCount
		}
	}
	if len(selectedLanguage) == 0 {
		return defaultLanguageConstant
	}
	return selectedLanguage
}

// Description falls back to a default for repositories without one.
func Description(repositoryDescription string) string {
	trimmedDescription := strings.TrimSpace(repositoryDescription)
	if len(trimmedDescription) == 0 {
		return defaultDescriptionConstant
	}
	return trimmedDescription
}

// PagesURL returns the published URL of a Pages site, or the conventional
// github.io address when the API omits it.
func PagesURL(siteURL string, username string, repositoryName string) string {
	trimmedSiteURL := strings.TrimSpace(siteURL)
	if len(trimmedSiteURL) > 0 {
		return trimmedSiteURL
	}
	return fmt.Sprintf(pagesSiteURLTemplateConstant, strings.ToLower(username), repositoryName)
}
