package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/temirov/profile_scripts/internal/execshell"
)

const (
	apiSubcommandConstant                  = "api"
	paginateFlagConstant                   = "--paginate"
	acceptHeaderFlagConstant               = "-H"
	acceptHeaderValueConstant              = "Accept: application/vnd.github+json"
	tokenEnvironmentVariableConstant       = "GH_TOKEN"
	promptDisabledEnvironmentVariableName  = "GH_PROMPT_DISABLED"
	promptDisabledEnvironmentVariableValue = "1"
	usernameFieldNameConstant              = "username"
	repositoryFieldNameConstant            = "repository"
	commitSHAFieldNameConstant             = "commit_sha"
	requiredValueMessageConstant           = "value required"
	ownerRepositoryFormatMessageConstant   = "expected owner/repo"
	executorNotConfiguredMessageConstant   = "github cli executor not configured"
	repositoryPathSeparatorConstant        = "/"
	userRepositoriesEndpointTemplate       = "users/%s/repos?per_page=100"
	repositoryEndpointTemplate             = "repos/%s"
	rootContentsEndpointTemplate           = "repos/%s/contents"
	languagesEndpointTemplate              = "repos/%s/languages"
	topicsEndpointTemplate                 = "repos/%s/topics"
	pagesEndpointTemplate                  = "repos/%s/pages"
	branchesEndpointTemplate               = "repos/%s/branches?per_page=100"
	commitEndpointTemplate                 = "repos/%s/commits/%s"
	listUserRepositoriesOperationConstant  = OperationName("ListUserRepositories")
	resolveRepositoryOperationConstant     = OperationName("ResolveRepository")
	listRootContentsOperationConstant      = OperationName("ListRootContents")
	listLanguagesOperationConstant         = OperationName("ListLanguages")
	listTopicsOperationConstant            = OperationName("ListTopics")
	resolvePagesSiteOperationConstant      = OperationName("ResolvePagesSite")
	listBranchesOperationConstant          = OperationName("ListBranches")
	resolveCommitOperationConstant         = OperationName("ResolveCommit")
)

// OperationName describes a named GitHub API workflow supported by the client.
type OperationName string

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates gh api invocations through execshell.
type Client struct {
	executor    GitHubCommandExecutor
	accessToken string
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// NewClient constructs a GitHub CLI client. A non-empty accessToken is handed to
// gh through GH_TOKEN; an empty one leaves gh on its own stored credentials.
func NewClient(executor GitHubCommandExecutor, accessToken string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor, accessToken: strings.TrimSpace(accessToken)}, nil
}

type repositoryResponse struct {
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
	Stars       int     `json:"stargazers_count"`
	Forks       int     `json:"forks_count"`
	OpenIssues  int     `json:"open_issues_count"`
	Fork        bool    `json:"fork"`
	Archived    bool    `json:"archived"`
	UpdatedAt   string  `json:"updated_at"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// ListUserRepositories enumerates every repository owned by username in API order.
func (client *Client) ListUserRepositories(executionContext context.Context, username string) ([]Repository, error) {
	trimmedUsername := strings.TrimSpace(username)
	if len(trimmedUsername) == 0 {
		return nil, InvalidInputError{FieldName: usernameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	output, executionError := client.runAPI(executionContext, fmt.Sprintf(userRepositoriesEndpointTemplate, trimmedUsername), true)
	if executionError != nil {
		return nil, OperationError{Operation: listUserRepositoriesOperationConstant, Cause: executionError}
	}

	responses, decodingError := decodePaginatedArray[repositoryResponse](output)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listUserRepositoriesOperationConstant, Cause: decodingError}
	}

	repositories := make([]Repository, 0, len(responses))
	for _, response := range responses {
		repositories = append(repositories, response.toRepository())
	}
	return repositories, nil
}

// ResolveRepository retrieves the details of a single owner/repo.
func (client *Client) ResolveRepository(executionContext context.Context, repository string) (Repository, error) {
	repositoryIdentifier, validationError := validateRepositoryIdentifier(repository)
	if validationError != nil {
		return Repository{}, validationError
	}

	output, executionError := client.runAPI(executionContext, fmt.Sprintf(repositoryEndpointTemplate, repositoryIdentifier), false)
	if executionError != nil {
		return Repository{}, OperationError{Operation: resolveRepositoryOperationConstant, Cause: executionError}
	}

	var response repositoryResponse
	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return Repository{}, ResponseDecodingError{Operation: resolveRepositoryOperationConstant, Cause: decodingError}
	}
	return response.toRepository(), nil
}

// ListRootContents lists the entries at the root of the default branch.
func (client *Client) ListRootContents(executionContext context.Context, repository string) ([]ContentEntry, error) {
	repositoryIdentifier, validationError := validateRepositoryIdentifier(repository)
	if validationError != nil {
		return nil, validationError
	}

	output, executionError := client.runAPI(executionContext, fmt.Sprintf(rootContentsEndpointTemplate, repositoryIdentifier), false)
	if executionError != nil {
		return nil, OperationError{Operation: listRootContentsOperationConstant, Cause: executionError}
	}

	var response []struct {
		Name string `json:"name"`
		Path string `json:"path"`
		Type string `json:"type"`
	}
	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listRootContentsOperationConstant, Cause: decodingError}
	}

	entries := make([]ContentEntry, 0, len(response))
	for _, entry := range response {
		entries = append(entries, ContentEntry{Name: entry.Name, Path: entry.Path, Type: ContentEntryType(entry.Type)})
	}
	return entries, nil
}

// ListLanguages returns the byte count per language detected in the repository.
func (client *Client) ListLanguages(executionContext context.Context, repository string) (map[string]int64, error) {
	repositoryIdentifier, validationError := validateRepositoryIdentifier(repository)
	if validationError != nil {
		return nil, validationError
	}

	output, executionError := client.runAPI(executionContext, fmt.Sprintf(languagesEndpointTemplate, repositoryIdentifier), false)
	if executionError != nil {
		return nil, OperationError{Operation: listLanguagesOperationConstant, Cause: executionError}
	}

	languages := map[string]int64{}
	if decodingError := json.Unmarshal([]byte(output), &languages); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listLanguagesOperationConstant, Cause: decodingError}
	}
	return languages, nil
}

// ListTopics returns the topic names attached to the repository.
func (client *Client) ListTopics(executionContext context.Context, repository string) ([]string, error) {
	repositoryIdentifier, validationError := validateRepositoryIdentifier(repository)
	if validationError != nil {
		return nil, validationError
	}

	output, executionError := client.runAPI(executionContext, fmt.Sprintf(topicsEndpointTemplate, repositoryIdentifier), false)
	if executionError != nil {
		return nil, OperationError{Operation: listTopicsOperationConstant, Cause: executionError}
	}

	var response struct {
		Names []string `json:"names"`
	}
	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listTopicsOperationConstant, Cause: decodingError}
	}
	if response.Names == nil {
		return []string{}, nil
	}
	return response.Names, nil
}

// ResolvePagesSite retrieves the GitHub Pages site of the repository. Repositories
// without Pages fail with an error for which IsNotFound reports true.
func (client *Client) ResolvePagesSite(executionContext context.Context, repository string) (PagesSite, error) {
	repositoryIdentifier, validationError := validateRepositoryIdentifier(repository)
	if validationError != nil {
		return PagesSite{}, validationError
	}

	output, executionError := client.runAPI(executionContext, fmt.Sprintf(pagesEndpointTemplate, repositoryIdentifier), false)
	if executionError != nil {
		return PagesSite{}, OperationError{Operation: resolvePagesSiteOperationConstant, Cause: executionError}
	}

	var response struct {
		HTMLURL string `json:"html_url"`
	}
	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return PagesSite{}, ResponseDecodingError{Operation: resolvePagesSiteOperationConstant, Cause: decodingError}
	}
	return PagesSite{HTMLURL: response.HTMLURL}, nil
}

// ListBranches enumerates every branch of the repository in API order.
func (client *Client) ListBranches(executionContext context.Context, repository string) ([]Branch, error) {
	repositoryIdentifier, validationError := validateRepositoryIdentifier(repository)
	if validationError != nil {
		return nil, validationError
	}

	output, executionError := client.runAPI(executionContext, fmt.Sprintf(branchesEndpointTemplate, repositoryIdentifier), true)
	if executionError != nil {
		return nil, OperationError{Operation: listBranchesOperationConstant, Cause: executionError}
	}

	type branchResponse struct {
		Name   string `json:"name"`
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	responses, decodingError := decodePaginatedArray[branchResponse](output)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listBranchesOperationConstant, Cause: decodingError}
	}

	branches := make([]Branch, 0, len(responses))
	for _, response := range responses {
		branches = append(branches, Branch{Name: response.Name, CommitSHA: response.Commit.SHA})
	}
	return branches, nil
}

// ResolveCommit retrieves a commit of the repository by SHA.
func (client *Client) ResolveCommit(executionContext context.Context, repository string, commitSHA string) (Commit, error) {
	repositoryIdentifier, validationError := validateRepositoryIdentifier(repository)
	if validationError != nil {
		return Commit{}, validationError
	}
	trimmedSHA := strings.TrimSpace(commitSHA)
	if len(trimmedSHA) == 0 {
		return Commit{}, InvalidInputError{FieldName: commitSHAFieldNameConstant, Message: requiredValueMessageConstant}
	}

	output, executionError := client.runAPI(executionContext, fmt.Sprintf(commitEndpointTemplate, repositoryIdentifier, trimmedSHA), false)
	if executionError != nil {
		return Commit{}, OperationError{Operation: resolveCommitOperationConstant, Cause: executionError}
	}

	var response struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
		Commit  struct {
			Message string `json:"message"`
			Author  struct {
				Name string    `json:"name"`
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return Commit{}, ResponseDecodingError{Operation: resolveCommitOperationConstant, Cause: decodingError}
	}

	return Commit{
		SHA:        response.SHA,
		Message:    response.Commit.Message,
		AuthorName: response.Commit.Author.Name,
		AuthorDate: response.Commit.Author.Date,
		HTMLURL:    response.HTMLURL,
	}, nil
}

func (client *Client) runAPI(executionContext context.Context, endpoint string, paginate bool) (string, error) {
	arguments := []string{apiSubcommandConstant}
	if paginate {
		arguments = append(arguments, paginateFlagConstant)
	}
	arguments = append(arguments, endpoint, acceptHeaderFlagConstant, acceptHeaderValueConstant)

	environment := map[string]string{promptDisabledEnvironmentVariableName: promptDisabledEnvironmentVariableValue}
	if len(client.accessToken) > 0 {
		environment[tokenEnvironmentVariableConstant] = client.accessToken
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		EnvironmentVariables: environment,
	})
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

// decodePaginatedArray decodes the output of gh api --paginate, which emits one
// JSON array per page back to back.
func decodePaginatedArray[T any](output string) ([]T, error) {
	decoder := json.NewDecoder(strings.NewReader(output))
	collected := []T{}
	for {
		var page []T
		decodingError := decoder.Decode(&page)
		if errors.Is(decodingError, io.EOF) {
			return collected, nil
		}
		if decodingError != nil {
			return nil, decodingError
		}
		collected = append(collected, page...)
	}
}

func validateRepositoryIdentifier(repository string) (string, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	owner, name, found := strings.Cut(repositoryIdentifier, repositoryPathSeparatorConstant)
	if !found || len(owner) == 0 || len(name) == 0 || strings.Contains(name, repositoryPathSeparatorConstant) {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: ownerRepositoryFormatMessageConstant}
	}
	return repositoryIdentifier, nil
}

func (response repositoryResponse) toRepository() Repository {
	repository := Repository{
		Owner:      response.Owner.Login,
		Name:       response.Name,
		FullName:   response.FullName,
		HTMLURL:    response.HTMLURL,
		Stars:      response.Stars,
		Forks:      response.Forks,
		OpenIssues: response.OpenIssues,
		Fork:       response.Fork,
		Archived:   response.Archived,
	}
	if response.Description != nil {
		repository.Description = *response.Description
	}
	if len(repository.FullName) == 0 && len(repository.Owner) > 0 {
		repository.FullName = repository.Owner + repositoryPathSeparatorConstant + repository.Name
	}
	if updatedAt, parseError := time.Parse(time.RFC3339, response.UpdatedAt); parseError == nil {
		repository.UpdatedAt = updatedAt
	}
	return repository
}
