package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/profile_scripts/internal/batch"
	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/readme"
	"github.com/temirov/profile_scripts/internal/utils"
)

const (
	tokenRequiredMessageConstant          = "GitHub token required (set GITHUB_TOKEN or GH_TOKEN)"
	usernameRequiredMessageConstant       = "GitHub username required (set GITHUB_ACTOR or --user)"
	readmePathRequiredMessageConstant     = "README path required"
	githubClientMissingMessageConstant    = "GitHub client not configured"
	readmeUpdaterMissingMessageConstant   = "README updater not configured"
	identityRepositoryMessageConstant     = "profile repository"
	excludedRepositoryMessageConstant     = "excluded by configuration"
	forkRepositoryMessageConstant         = "fork"
	archivedRepositoryMessageConstant     = "archived"
	noToolFilesMessageConstant            = "no HTML files at repository root"
	listRepositoriesErrorTemplateConstant = "unable to list repositories of %s: %w"
	contentsErrorTemplateConstant         = "unable to read root contents: %w"
	languagesErrorTemplateConstant        = "unable to read languages: %w"
	topicsErrorTemplateConstant           = "unable to read topics: %w"
	renderErrorWrapTemplateConstant       = "unable to render tools: %w"
	updateErrorTemplateConstant           = "unable to update README: %w"
	scanStartedMessageConstant            = "Scanning repositories"
	repositoriesListedMessageConstant     = "Listed repositories"
	repositoryInspectMessageConstant      = "Inspecting repository"
	toolFileFoundMessageConstant          = "Found tool file"
	pagesFallbackMessageConstant          = "No GitHub Pages site, using repository URL"
	toolAddedMessageConstant              = "Added tool"
	repositorySkippedMessageConstant      = "Skipped repository"
	repositoryIgnoredMessageConstant      = "Ignored repository"
	scanCompletedMessageConstant          = "Tool scan completed"
	readmeUpdatedMessageConstant          = "README updated"
	readmeUnchangedMessageConstant        = "README unchanged"
	readmeDryRunMessageConstant           = "README update previewed"
	logFieldUsernameConstant              = "username"
	logFieldRepositoryConstant            = "repository"
	logFieldRepositoryCountConstant       = "repository_count"
	logFieldToolCountConstant             = "tool_count"
	logFieldFileConstant                  = "file"
	logFieldURLConstant                   = "url"
	logFieldReasonConstant                = "reason"
	logFieldReadmePathConstant            = "readme_path"
)

var (
	// ErrTokenRequired indicates no GitHub token was configured.
	ErrTokenRequired = errors.New(tokenRequiredMessageConstant)
	// ErrUsernameRequired indicates no GitHub username was configured.
	ErrUsernameRequired = errors.New(usernameRequiredMessageConstant)
	// ErrReadmePathRequired indicates the README path was empty.
	ErrReadmePathRequired = errors.New(readmePathRequiredMessageConstant)
	// ErrGitHubClientNotConfigured indicates the service was constructed without a GitHub client.
	ErrGitHubClientNotConfigured = errors.New(githubClientMissingMessageConstant)
	// ErrReadmeUpdaterNotConfigured indicates the service was constructed without a README updater.
	ErrReadmeUpdaterNotConfigured = errors.New(readmeUpdaterMissingMessageConstant)

	errIdentityRepository = errors.New(identityRepositoryMessageConstant)
	errExcludedRepository = errors.New(excludedRepositoryMessageConstant)
	errForkRepository     = errors.New(forkRepositoryMessageConstant)
	errArchivedRepository = errors.New(archivedRepositoryMessageConstant)
	errNoToolFiles        = errors.New(noToolFilesMessageConstant)
)

// Dependencies enumerates collaborators required by the tool scanner.
type Dependencies struct {
	GitHubClient  GitHubClient
	ReadmeUpdater ReadmeUpdater
	Logger        *zap.Logger
	Clock         utils.Clock
}

// Service scans repositories and publishes qualifying tools.
type Service struct {
	githubClient  GitHubClient
	readmeUpdater ReadmeUpdater
	logger        *zap.Logger
	clock         utils.Clock
	renderer      Renderer
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitHubClient == nil {
		return nil, ErrGitHubClientNotConfigured
	}
	if dependencies.ReadmeUpdater == nil {
		return nil, ErrReadmeUpdaterNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = utils.SystemClock{}
	}

	return &Service{
		githubClient:  dependencies.GitHubClient,
		readmeUpdater: dependencies.ReadmeUpdater,
		logger:        logger,
		clock:         clock,
	}, nil
}

// Run scans the user's repositories, renders the tool grid and updates the README.
func (service *Service) Run(executionContext context.Context, options ScanOptions) (ScanResult, error) {
	if len(strings.TrimSpace(options.AccessToken)) == 0 {
		return ScanResult{}, ErrTokenRequired
	}
	if len(strings.TrimSpace(options.ReadmePath)) == 0 {
		return ScanResult{}, ErrReadmePathRequired
	}

	records, scanError := service.Scan(executionContext, options)
	if scanError != nil {
		return ScanResult{}, scanError
	}

	body, renderError := service.renderer.Render(strings.TrimSpace(options.Username), records, service.clock.Now())
	if renderError != nil {
		return ScanResult{Records: records}, fmt.Errorf(renderErrorWrapTemplateConstant, renderError)
	}

	updateResult, updateError := service.readmeUpdater.Update(executionContext, options.ReadmePath, readme.ToolsListRegion, body)
	if updateError != nil {
		return ScanResult{Records: records, Update: updateResult}, fmt.Errorf(updateErrorTemplateConstant, updateError)
	}

	service.logUpdate(updateResult)
	return ScanResult{Records: records, Update: updateResult}, nil
}

// Scan builds a ToolRecord for every qualifying repository of the user, in listing order.
func (service *Service) Scan(executionContext context.Context, options ScanOptions) ([]ToolRecord, error) {
	username := strings.TrimSpace(options.Username)
	if len(username) == 0 {
		return nil, ErrUsernameRequired
	}

	service.logger.Info(scanStartedMessageConstant, zap.String(logFieldUsernameConstant, username))

	repositories, listError := service.githubClient.ListUserRepositories(executionContext, username)
	if listError != nil {
		return nil, fmt.Errorf(listRepositoriesErrorTemplateConstant, username, listError)
	}
	service.logger.Info(repositoriesListedMessageConstant, zap.Int(logFieldRepositoryCountConstant, len(repositories)))

	excluded := make(map[string]struct{}, len(options.ExcludedRepositories))
	for _, excludedName := range options.ExcludedRepositories {
		excluded[strings.ToLower(strings.TrimSpace(excludedName))] = struct{}{}
	}

	records, collectError := batch.Collect(repositories, func(_ int, repository githubcli.Repository) batch.Outcome[ToolRecord] {
		return service.inspectRepository(executionContext, username, repository, options, excluded)
	}, service.logSkippedRepository)
	if collectError != nil {
		return nil, collectError
	}

	service.logger.Info(scanCompletedMessageConstant, zap.Int(logFieldToolCountConstant, len(records)))
	return records, nil
}

func (service *Service) inspectRepository(executionContext context.Context, username string, repository githubcli.Repository, options ScanOptions, excluded map[string]struct{}) batch.Outcome[ToolRecord] {
	if IsIdentityRepository(repository.Name, username) {
		return batch.Skip[ToolRecord](errIdentityRepository)
	}
	if _, isExcluded := excluded[strings.ToLower(repository.Name)]; isExcluded {
		return batch.Skip[ToolRecord](errExcludedRepository)
	}
	if options.SkipForks && repository.Fork {
		return batch.Skip[ToolRecord](errForkRepository)
	}
	if options.SkipArchived && repository.Archived {
		return batch.Skip[ToolRecord](errArchivedRepository)
	}

	repositoryIdentifier := repository.FullName
	service.logger.Debug(repositoryInspectMessageConstant, zap.String(logFieldRepositoryConstant, repositoryIdentifier))

	entries, contentsError := service.githubClient.ListRootContents(executionContext, repositoryIdentifier)
	if contentsError != nil {
		return batch.Fail[ToolRecord](fmt.Errorf(contentsErrorTemplateConstant, contentsError), githubcli.IsConnectionFailure)
	}

	toolFiles := Qualifies(entries)
	if len(toolFiles) == 0 {
		return batch.Skip[ToolRecord](errNoToolFiles)
	}
	for _, toolFile := range toolFiles {
		service.logger.Debug(toolFileFoundMessageConstant, zap.String(logFieldRepositoryConstant, repositoryIdentifier), zap.String(logFieldFileConstant, toolFile))
	}

	primaryURL := repository.HTMLURL
	pagesSite, pagesError := service.githubClient.ResolvePagesSite(executionContext, repositoryIdentifier)
	switch {
	case pagesError == nil:
		primaryURL = PagesURL(pagesSite.HTMLURL, username, repository.Name)
	case githubcli.IsConnectionFailure(pagesError) && !isPagesAccessDenied(pagesError):
		return batch.Abort[ToolRecord](pagesError)
	default:
		service.logger.Debug(pagesFallbackMessageConstant, zap.String(logFieldRepositoryConstant, repositoryIdentifier), zap.String(logFieldURLConstant, primaryURL))
	}

	languages, languagesError := service.githubClient.ListLanguages(executionContext, repositoryIdentifier)
	if languagesError != nil {
		return batch.Fail[ToolRecord](fmt.Errorf(languagesErrorTemplateConstant, languagesError), githubcli.IsConnectionFailure)
	}

	topics, topicsError := service.githubClient.ListTopics(executionContext, repositoryIdentifier)
	if topicsError != nil {
		return batch.Fail[ToolRecord](fmt.Errorf(topicsErrorTemplateConstant, topicsError), githubcli.IsConnectionFailure)
	}

	record := ToolRecord{
		Name:            repository.Name,
		DisplayName:     DisplayName(repository.Name),
		Description:     Description(repository.Description),
		PrimaryURL:      primaryURL,
		SourceURL:       repository.HTMLURL,
		StarCount:       repository.Stars,
		ForkCount:       repository.Forks,
		PrimaryLanguage: PrimaryLanguage(languages),
		LastUpdated:     repository.UpdatedAt,
		DiscoveredFiles: toolFiles,
		TopicTags:       topics,
	}
	service.logger.Info(toolAddedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryIdentifier), zap.String(logFieldURLConstant, primaryURL))
	return batch.Keep(record)
}

func (service *Service) logSkippedRepository(repository githubcli.Repository, reason error) {
	fields := []zap.Field{zap.String(logFieldRepositoryConstant, repository.Name), zap.String(logFieldReasonConstant, reason.Error())}
	switch {
	case errors.Is(reason, errIdentityRepository),
		errors.Is(reason, errExcludedRepository),
		errors.Is(reason, errForkRepository),
		errors.Is(reason, errArchivedRepository),
		errors.Is(reason, errNoToolFiles):
		service.logger.Debug(repositoryIgnoredMessageConstant, fields...)
	default:
		service.logger.Warn(repositorySkippedMessageConstant, fields...)
	}
}

func (service *Service) logUpdate(result readme.UpdateResult) {
	pathField := zap.String(logFieldReadmePathConstant, result.Path)
	switch result.Status {
	case readme.UpdateStatusUpdated:
		service.logger.Info(readmeUpdatedMessageConstant, pathField)
	case readme.UpdateStatusDryRun:
		service.logger.Info(readmeDryRunMessageConstant, pathField)
	default:
		service.logger.Info(readmeUnchangedMessageConstant, pathField)
	}
}

// isPagesAccessDenied reports a 403 from the Pages endpoint that is not a rate
// limit. Tokens without Pages access get it for repositories they can read.
func isPagesAccessDenied(err error) bool {
	statusCode, known := githubcli.HTTPStatus(err)
	return known && statusCode == http.StatusForbidden && !githubcli.IsRateLimited(err)
}
