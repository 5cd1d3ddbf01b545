package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/profile_scripts/internal/batch"
	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/gitrepo"
	"github.com/temirov/profile_scripts/internal/markdown"
	"github.com/temirov/profile_scripts/internal/readme"
	"github.com/temirov/profile_scripts/internal/utils"
)

const (
	tokenRequiredMessageConstant        = "GitHub token required (set GITHUB_TOKEN or GH_TOKEN)"
	repositoryRequiredMessageConstant   = "repository required (set GITHUB_REPOSITORY or --repository)"
	readmePathRequiredMessageConstant   = "README path required"
	noBranchesMessageConstant           = "no branch information available"
	githubClientMissingMessageConstant  = "GitHub client not configured"
	readmeUpdaterMissingMessageConstant = "README updater not configured"
	connectErrorTemplateConstant        = "unable to open repository %s: %w"
	listBranchesErrorTemplateConstant   = "unable to list branches of %s: %w"
	commitErrorTemplateConstant         = "unable to read latest commit %s: %w"
	updateErrorTemplateConstant         = "unable to update README: %w"
	shortSHALengthConstant              = 7
	progressTemplateConstant            = "%d/%d"
	connectingMessageConstant           = "Connecting to repository"
	connectedMessageConstant            = "Repository found"
	branchesListedMessageConstant       = "Listed branches"
	repositoryHasNoBranchesConstant     = "Repository has no branches"
	branchProcessedMessageConstant      = "Processed branch"
	branchSkippedMessageConstant        = "Skipped branch"
	branchesCollectedMessageConstant    = "Branch dashboard rendered"
	readmeUpdatedMessageConstant        = "README updated"
	readmeUnchangedMessageConstant      = "README unchanged"
	readmeDryRunMessageConstant         = "README update previewed"
	logFieldRepositoryConstant          = "repository"
	logFieldStarsConstant               = "stars"
	logFieldForksConstant               = "forks"
	logFieldOpenIssuesConstant          = "open_issues"
	logFieldBranchConstant              = "branch"
	logFieldBranchCountConstant         = "branch_count"
	logFieldLimitConstant               = "limit"
	logFieldProgressConstant            = "progress"
	logFieldReasonConstant              = "reason"
	logFieldRowCountConstant            = "row_count"
	logFieldReadmePathConstant          = "readme_path"
)

var (
	// ErrTokenRequired indicates no GitHub token was configured.
	ErrTokenRequired = errors.New(tokenRequiredMessageConstant)
	// ErrRepositoryRequired indicates no owner/repo was configured.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
	// ErrReadmePathRequired indicates the README path was empty.
	ErrReadmePathRequired = errors.New(readmePathRequiredMessageConstant)
	// ErrNoBranches indicates no branch could be rendered.
	ErrNoBranches = errors.New(noBranchesMessageConstant)
	// ErrGitHubClientNotConfigured indicates the service was constructed without a GitHub client.
	ErrGitHubClientNotConfigured = errors.New(githubClientMissingMessageConstant)
	// ErrReadmeUpdaterNotConfigured indicates the service was constructed without a README updater.
	ErrReadmeUpdaterNotConfigured = errors.New(readmeUpdaterMissingMessageConstant)
)

// Dependencies enumerates collaborators required by the dashboard service.
type Dependencies struct {
	GitHubClient  GitHubClient
	ReadmeUpdater ReadmeUpdater
	Logger        *zap.Logger
	Clock         utils.Clock
}

// Service builds and publishes the branch activity dashboard.
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

// Run collects branch records, renders the dashboard and updates the README.
func (service *Service) Run(executionContext context.Context, options DashboardOptions) (DashboardResult, error) {
	if len(strings.TrimSpace(options.AccessToken)) == 0 {
		return DashboardResult{}, ErrTokenRequired
	}
	if len(strings.TrimSpace(options.ReadmePath)) == 0 {
		return DashboardResult{}, ErrReadmePathRequired
	}

	repository, records, collectError := service.Collect(executionContext, options)
	if collectError != nil {
		return DashboardResult{Repository: repository}, collectError
	}

	body := service.renderer.Render(records, service.clock.Now())
	service.logger.Info(branchesCollectedMessageConstant, zap.String(logFieldRepositoryConstant, repository.FullName), zap.Int(logFieldRowCountConstant, len(records)))

	updateResult, updateError := service.readmeUpdater.Update(executionContext, options.ReadmePath, readme.BranchActivityRegion, body)
	result := DashboardResult{Repository: repository, Records: records, Update: updateResult}
	if updateError != nil {
		return result, fmt.Errorf(updateErrorTemplateConstant, updateError)
	}

	service.logUpdate(updateResult)
	return result, nil
}

// Collect resolves the repository and builds one record per branch, up to the
// effective limit and in listing order. Branches whose commit cannot be read
// are skipped; an empty result is ErrNoBranches.
func (service *Service) Collect(executionContext context.Context, options DashboardOptions) (githubcli.Repository, []BranchRecord, error) {
	if len(strings.TrimSpace(options.Repository)) == 0 {
		return githubcli.Repository{}, nil, ErrRepositoryRequired
	}
	parsedIdentifier, identifierError := gitrepo.ParseRepositoryIdentifier(options.Repository)
	if identifierError != nil {
		return githubcli.Repository{}, nil, identifierError
	}
	repositoryIdentifier := parsedIdentifier.String()

	service.logger.Info(connectingMessageConstant, zap.String(logFieldRepositoryConstant, repositoryIdentifier))
	repository, repositoryError := service.githubClient.ResolveRepository(executionContext, repositoryIdentifier)
	if repositoryError != nil {
		return githubcli.Repository{}, nil, fmt.Errorf(connectErrorTemplateConstant, repositoryIdentifier, repositoryError)
	}
	service.logger.Info(connectedMessageConstant,
		zap.String(logFieldRepositoryConstant, repository.FullName),
		zap.Int(logFieldStarsConstant, repository.Stars),
		zap.Int(logFieldForksConstant, repository.Forks),
		zap.Int(logFieldOpenIssuesConstant, repository.OpenIssues),
	)

	branches, branchesError := service.githubClient.ListBranches(executionContext, repositoryIdentifier)
	if branchesError != nil {
		return repository, nil, fmt.Errorf(listBranchesErrorTemplateConstant, repositoryIdentifier, branchesError)
	}
	service.logger.Info(branchesListedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryIdentifier), zap.Int(logFieldBranchCountConstant, len(branches)), zap.Int(logFieldLimitConstant, options.EffectiveLimit()))
	if len(branches) == 0 {
		service.logger.Warn(repositoryHasNoBranchesConstant, zap.String(logFieldRepositoryConstant, repositoryIdentifier))
		return repository, nil, ErrNoBranches
	}

	selectedBranches := branches[:min(options.EffectiveLimit(), len(branches))]
	escaper := markdown.NewEscaper(options.EscapePolicy)
	processedCount := 0

	records, collectError := batch.Collect(selectedBranches, func(_ int, branch githubcli.Branch) batch.Outcome[BranchRecord] {
		commit, commitError := service.githubClient.ResolveCommit(executionContext, repositoryIdentifier, branch.CommitSHA)
		if commitError != nil {
			return batch.Fail[BranchRecord](fmt.Errorf(commitErrorTemplateConstant, branch.CommitSHA, commitError), githubcli.IsConnectionFailure)
		}

		processedCount++
		service.logger.Info(branchProcessedMessageConstant,
			zap.String(logFieldProgressConstant, fmt.Sprintf(progressTemplateConstant, processedCount, len(selectedBranches))),
			zap.String(logFieldBranchConstant, branch.Name),
		)
		return batch.Keep(newBranchRecord(branch, commit, escaper))
	}, service.logSkippedBranch)
	if collectError != nil {
		return repository, nil, collectError
	}
	if len(records) == 0 {
		return repository, nil, ErrNoBranches
	}

	return repository, records, nil
}

func newBranchRecord(branch githubcli.Branch, commit githubcli.Commit, escaper markdown.Escaper) BranchRecord {
	commitSHA := commit.SHA
	if len(commitSHA) == 0 {
		commitSHA = branch.CommitSHA
	}
	return BranchRecord{
		BranchName:  branch.Name,
		CommitTitle: escaper.EscapeTruncated(markdown.FirstLine(commit.Message), markdown.CommitTitleBudgetConstant),
		AuthorName:  markdown.Truncate(commit.AuthorName, markdown.AuthorNameBudgetConstant),
		CommitDate:  commit.AuthorDate,
		CommitURL:   commit.HTMLURL,
		ShortSHA:    commitSHA[:min(shortSHALengthConstant, len(commitSHA))],
	}
}

func (service *Service) logSkippedBranch(branch githubcli.Branch, reason error) {
	service.logger.Warn(branchSkippedMessageConstant, zap.String(logFieldBranchConstant, branch.Name), zap.String(logFieldReasonConstant, reason.Error()))
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
