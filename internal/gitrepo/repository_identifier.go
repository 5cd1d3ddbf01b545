package gitrepo

import (
	"fmt"
	"strings"
)

const (
	schemeSeparatorConstant                = "://"
	sshProtocolPrefixConstant              = "ssh://"
	httpsProtocolPrefixConstant            = "https://"
	httpProtocolPrefixConstant             = "http://"
	gitUserPrefixConstant                  = "git@"
	sshPathDelimiterConstant               = ":"
	pathSeparatorConstant                  = "/"
	gitSuffixConstant                      = ".git"
	identifierParseErrorTemplateConstant   = "%s: %s"
	invalidIdentifierMessageConstant       = "expected owner/repo or a GitHub remote URL"
	requiredIdentifierMessageConstant      = "repository identifier required"
	repositoryIdentifierTemplateConstant   = "%s/%s"
	expectedIdentifierSegmentCountConstant = 2
)

// RepositoryIdentifierError indicates a repository reference could not be reduced to owner/repo.
type RepositoryIdentifierError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (identifierError RepositoryIdentifierError) Error() string {
	return fmt.Sprintf(identifierParseErrorTemplateConstant, identifierError.Input, identifierError.Message)
}

// RepositoryIdentifier names a repository by owner and name.
type RepositoryIdentifier struct {
	Owner      string
	Repository string
}

// String renders the identifier as owner/repo.
func (identifier RepositoryIdentifier) String() string {
	return fmt.Sprintf(repositoryIdentifierTemplateConstant, identifier.Owner, identifier.Repository)
}

// ParseRepositoryIdentifier accepts owner/repo as well as the HTTPS and SSH
// remote URLs git prints for a clone, e.g. git@github.com:owner/repo.git.
func ParseRepositoryIdentifier(reference string) (RepositoryIdentifier, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return RepositoryIdentifier{}, RepositoryIdentifierError{Input: reference, Message: requiredIdentifierMessageConstant}
	}

	path := trimmedReference
	switch {
	case strings.HasPrefix(trimmedReference, httpsProtocolPrefixConstant),
		strings.HasPrefix(trimmedReference, httpProtocolPrefixConstant),
		strings.HasPrefix(trimmedReference, sshProtocolPrefixConstant):
		withoutScheme := trimmedReference[strings.Index(trimmedReference, schemeSeparatorConstant)+len(schemeSeparatorConstant):]
		hostSplitIndex := strings.Index(withoutScheme, pathSeparatorConstant)
		if hostSplitIndex == -1 {
			return RepositoryIdentifier{}, RepositoryIdentifierError{Input: reference, Message: invalidIdentifierMessageConstant}
		}
		path = withoutScheme[hostSplitIndex+1:]
	case strings.HasPrefix(trimmedReference, gitUserPrefixConstant):
		pathSplitIndex := strings.Index(trimmedReference, sshPathDelimiterConstant)
		if pathSplitIndex == -1 {
			return RepositoryIdentifier{}, RepositoryIdentifierError{Input: reference, Message: invalidIdentifierMessageConstant}
		}
		path = trimmedReference[pathSplitIndex+1:]
	}

	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) != expectedIdentifierSegmentCountConstant {
		return RepositoryIdentifier{}, RepositoryIdentifierError{Input: reference, Message: invalidIdentifierMessageConstant}
	}
	owner := segments[0]
	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return RepositoryIdentifier{}, RepositoryIdentifierError{Input: reference, Message: invalidIdentifierMessageConstant}
	}
	return RepositoryIdentifier{Owner: owner, Repository: repository}, nil
}
