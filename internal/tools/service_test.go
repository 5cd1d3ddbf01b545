package tools_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/profile_scripts/internal/batch"
	"github.com/temirov/profile_scripts/internal/execshell"
	"github.com/temirov/profile_scripts/internal/githubcli"
	"github.com/temirov/profile_scripts/internal/readme"
	"github.com/temirov/profile_scripts/internal/tools"
	"github.com/temirov/profile_scripts/internal/utils"
)

const (
	serviceTestUsernameConstant   = "octocat"
	serviceTestTokenConstant      = "ghp_token"
	serviceTestReadmePathConstant = "/profile/README.md"
	serviceTestReadmeConstant     = "# Hi\n\n<!-- TOOLS_LIST:START -->\nold\n<!-- TOOLS_LIST:END -->\n\nBye\n"
)

type stubToolsGitHubClient struct {
	repositories    []githubcli.Repository
	listError       error
	contents        map[string][]githubcli.ContentEntry
	contentsErrors  map[string]error
	languages       map[string]map[string]int64
	languagesErrors map[string]error
	topics          map[string][]string
	pagesSites      map[string]githubcli.PagesSite
	pagesErrors     map[string]error
	contentRequests []string
}

func (client *stubToolsGitHubClient) ListUserRepositories(context.Context, string) ([]githubcli.Repository, error) {
	return client.repositories, client.listError
}

func (client *stubToolsGitHubClient) ListRootContents(_ context.Context, repository string) ([]githubcli.ContentEntry, error) {
	client.contentRequests = append(client.contentRequests, repository)
	if failure, exists := client.contentsErrors[repository]; exists {
		return nil, failure
	}
	return client.contents[repository], nil
}

func (client *stubToolsGitHubClient) ListLanguages(_ context.Context, repository string) (map[string]int64, error) {
	if failure, exists := client.languagesErrors[repository]; exists {
		return nil, failure
	}
	return client.languages[repository], nil
}

func (client *stubToolsGitHubClient) ListTopics(_ context.Context, repository string) ([]string, error) {
	return client.topics[repository], nil
}

func (client *stubToolsGitHubClient) ResolvePagesSite(_ context.Context, repository string) (githubcli.PagesSite, error) {
	if failure, exists := client.pagesErrors[repository]; exists {
		return githubcli.PagesSite{}, failure
	}
	if site, exists := client.pagesSites[repository]; exists {
		return site, nil
	}
	return githubcli.PagesSite{}, httpFailure(404)
}

func httpFailure(statusCode int) error {
	return httpFailureWithMessage(statusCode, "request failed")
}

func httpFailureWithMessage(statusCode int, message string) error {
	return githubcli.OperationError{
		Operation: githubcli.OperationName("test"),
		Cause: execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGitHub},
			Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: fmt.Sprintf("gh: %s (HTTP %d)", message, statusCode)},
		},
	}
}

func newRepository(name string) githubcli.Repository {
	return githubcli.Repository{
		Owner:     serviceTestUsernameConstant,
		Name:      name,
		FullName:  serviceTestUsernameConstant + "/" + name,
		HTMLURL:   "https://github.com/" + serviceTestUsernameConstant + "/" + name,
		Stars:     3,
		Forks:     1,
		UpdatedAt: time.Date(2024, time.April, 5, 9, 0, 0, 0, time.UTC),
	}
}

func htmlEntries(names ...string) []githubcli.ContentEntry {
	entries := make([]githubcli.ContentEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, githubcli.ContentEntry{Name: name, Path: name, Type: githubcli.ContentEntryTypeFile})
	}
	return entries
}

type recordingReadmeUpdater struct {
	bodies []string
	result readme.UpdateResult
	err    error
}

func (updater *recordingReadmeUpdater) Update(_ context.Context, path string, region readme.Region, body string) (readme.UpdateResult, error) {
	updater.bodies = append(updater.bodies, body)
	result := updater.result
	result.Path = path
	return result, updater.err
}

func newToolsService(testInstance *testing.T, client tools.GitHubClient, updater tools.ReadmeUpdater, logger *zap.Logger) *tools.Service {
	testInstance.Helper()
	service, serviceError := tools.NewService(tools.Dependencies{
		GitHubClient:  client,
		ReadmeUpdater: updater,
		Logger:        logger,
		Clock:         utils.FixedClock{Instant: testGeneratedAt},
	})
	require.NoError(testInstance, serviceError)
	return service
}

func TestNewServiceRequiresCollaborators(testInstance *testing.T) {
	_, missingClientError := tools.NewService(tools.Dependencies{ReadmeUpdater: &recordingReadmeUpdater{}})
	require.ErrorIs(testInstance, missingClientError, tools.ErrGitHubClientNotConfigured)

	_, missingUpdaterError := tools.NewService(tools.Dependencies{GitHubClient: &stubToolsGitHubClient{}})
	require.ErrorIs(testInstance, missingUpdaterError, tools.ErrReadmeUpdaterNotConfigured)
}

func TestScanQualifiesRepositories(testInstance *testing.T) {
	client := &stubToolsGitHubClient{
		repositories: []githubcli.Repository{
			newRepository("octocat"),
			newRepository("json-formatter"),
			newRepository("backend"),
			newRepository("color_picker"),
		},
		contents: map[string][]githubcli.ContentEntry{
			"octocat/octocat":        htmlEntries("index.html"),
			"octocat/json-formatter": htmlEntries("index.html", "README.md"),
			"octocat/backend":        htmlEntries("main.go"),
			"octocat/color_picker":   htmlEntries("picker.HTM"),
		},
		languages: map[string]map[string]int64{
			"octocat/json-formatter": {"JavaScript": 900, "HTML": 400},
		},
		topics: map[string][]string{
			"octocat/color_picker": {"color"},
		},
		pagesSites: map[string]githubcli.PagesSite{
			"octocat/json-formatter": {HTMLURL: "https://tools.example.org/json/"},
		},
	}

	records, scanError := newToolsService(testInstance, client, &recordingReadmeUpdater{}, nil).Scan(context.Background(), tools.ScanOptions{Username: serviceTestUsernameConstant})
	require.NoError(testInstance, scanError)
	require.Len(testInstance, records, 2)

	require.Equal(testInstance, tools.ToolRecord{
		Name:            "json-formatter",
		DisplayName:     "Json Formatter",
		Description:     "A handy little tool",
		PrimaryURL:      "https://tools.example.org/json/",
		SourceURL:       "https://github.com/octocat/json-formatter",
		StarCount:       3,
		ForkCount:       1,
		PrimaryLanguage: "JavaScript",
		LastUpdated:     time.Date(2024, time.April, 5, 9, 0, 0, 0, time.UTC),
		DiscoveredFiles: []string{"index.html"},
	}, records[0])

	require.Equal(testInstance, "color_picker", records[1].Name)
	require.Equal(testInstance, "https://github.com/octocat/color_picker", records[1].PrimaryURL)
	require.Equal(testInstance, "HTML", records[1].PrimaryLanguage)
	require.Equal(testInstance, []string{"color"}, records[1].TopicTags)

	require.NotContains(testInstance, client.contentRequests, "octocat/octocat")
}

func TestScanNeverIncludesIdentityRepository(testInstance *testing.T) {
	client := &stubToolsGitHubClient{
		repositories: []githubcli.Repository{newRepository("OctoCat")},
		contents:     map[string][]githubcli.ContentEntry{"octocat/OctoCat": htmlEntries("index.html")},
	}

	records, scanError := newToolsService(testInstance, client, &recordingReadmeUpdater{}, nil).Scan(context.Background(), tools.ScanOptions{Username: serviceTestUsernameConstant})
	require.NoError(testInstance, scanError)
	require.Empty(testInstance, records)
	require.Empty(testInstance, client.contentRequests)
}

func TestScanFilters(testInstance *testing.T) {
	forkedRepository := newRepository("forked")
	forkedRepository.Fork = true
	archivedRepository := newRepository("archived")
	archivedRepository.Archived = true

	testCases := []struct {
		name          string
		options       tools.ScanOptions
		expectedNames []string
	}{
		{
			name:          "no_filters",
			options:       tools.ScanOptions{Username: serviceTestUsernameConstant},
			expectedNames: []string{"kept", "forked", "archived"},
		},
		{
			name:          "exclude_case_insensitive",
			options:       tools.ScanOptions{Username: serviceTestUsernameConstant, ExcludedRepositories: []string{" KEPT "}},
			expectedNames: []string{"forked", "archived"},
		},
		{
			name:          "skip_forks_and_archived",
			options:       tools.ScanOptions{Username: serviceTestUsernameConstant, SkipForks: true, SkipArchived: true},
			expectedNames: []string{"kept"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client := &stubToolsGitHubClient{
				repositories: []githubcli.Repository{newRepository("kept"), forkedRepository, archivedRepository},
				contents: map[string][]githubcli.ContentEntry{
					"octocat/kept":     htmlEntries("index.html"),
					"octocat/forked":   htmlEntries("index.html"),
					"octocat/archived": htmlEntries("index.html"),
				},
			}

			records, scanError := newToolsService(testInstance, client, &recordingReadmeUpdater{}, nil).Scan(context.Background(), testCase.options)
			require.NoError(testInstance, scanError)

			names := make([]string, 0, len(records))
			for _, record := range records {
				names = append(names, record.Name)
			}
			require.Equal(testInstance, testCase.expectedNames, names)
		})
	}
}

func TestScanSkipsRepositoryOnRecoverableFailure(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	client := &stubToolsGitHubClient{
		repositories: []githubcli.Repository{newRepository("broken"), newRepository("healthy"), newRepository("languageless")},
		contents: map[string][]githubcli.ContentEntry{
			"octocat/healthy":      htmlEntries("index.html"),
			"octocat/languageless": htmlEntries("index.html"),
		},
		contentsErrors:  map[string]error{"octocat/broken": httpFailure(500)},
		languagesErrors: map[string]error{"octocat/languageless": httpFailure(404)},
	}

	records, scanError := newToolsService(testInstance, client, &recordingReadmeUpdater{}, zap.New(observerCore)).Scan(context.Background(), tools.ScanOptions{Username: serviceTestUsernameConstant})
	require.NoError(testInstance, scanError)
	require.Len(testInstance, records, 1)
	require.Equal(testInstance, "healthy", records[0].Name)

	warnings := observedLogs.FilterMessage("Skipped repository").All()
	require.Len(testInstance, warnings, 2)
	require.Equal(testInstance, zapcore.WarnLevel, warnings[0].Level)
	require.Equal(testInstance, "broken", warnings[0].ContextMap()["repository"])
	require.Equal(testInstance, "languageless", warnings[1].ContextMap()["repository"])
}

func TestScanAbortsOnConnectionFailure(testInstance *testing.T) {
	testCases := []struct {
		name   string
		client *stubToolsGitHubClient
	}{
		{
			name: "contents_unauthorized",
			client: &stubToolsGitHubClient{
				repositories:   []githubcli.Repository{newRepository("first"), newRepository("second")},
				contentsErrors: map[string]error{"octocat/first": httpFailure(401)},
				contents:       map[string][]githubcli.ContentEntry{"octocat/second": htmlEntries("index.html")},
			},
		},
		{
			name: "pages_rate_limited",
			client: &stubToolsGitHubClient{
				repositories: []githubcli.Repository{newRepository("first"), newRepository("second")},
				contents:     map[string][]githubcli.ContentEntry{"octocat/first": htmlEntries("index.html"), "octocat/second": htmlEntries("index.html")},
				pagesErrors:  map[string]error{"octocat/first": httpFailureWithMessage(403, "API rate limit exceeded for user ID 1.")},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			records, scanError := newToolsService(testInstance, testCase.client, &recordingReadmeUpdater{}, nil).Scan(context.Background(), tools.ScanOptions{Username: serviceTestUsernameConstant})
			require.Error(testInstance, scanError)
			require.Nil(testInstance, records)

			var abortedError batch.AbortedError
			require.ErrorAs(testInstance, scanError, &abortedError)
			require.True(testInstance, githubcli.IsConnectionFailure(scanError))
			require.NotContains(testInstance, testCase.client.contentRequests, "octocat/second")
		})
	}
}

func TestScanFallsBackWhenPagesAccessDenied(testInstance *testing.T) {
	client := &stubToolsGitHubClient{
		repositories: []githubcli.Repository{newRepository("first"), newRepository("second")},
		contents:     map[string][]githubcli.ContentEntry{"octocat/first": htmlEntries("index.html"), "octocat/second": htmlEntries("index.html")},
		pagesErrors:  map[string]error{"octocat/first": httpFailureWithMessage(403, "Resource not accessible by integration")},
		pagesSites:   map[string]githubcli.PagesSite{"octocat/second": {HTMLURL: "https://octocat.github.io/second/"}},
	}

	records, scanError := newToolsService(testInstance, client, &recordingReadmeUpdater{}, nil).Scan(context.Background(), tools.ScanOptions{Username: serviceTestUsernameConstant})
	require.NoError(testInstance, scanError)
	require.Len(testInstance, records, 2)

	primaryURLs := map[string]string{}
	for _, record := range records {
		primaryURLs[record.Name] = record.PrimaryURL
	}
	require.Equal(testInstance, "https://github.com/octocat/first", primaryURLs["first"])
	require.Equal(testInstance, "https://octocat.github.io/second/", primaryURLs["second"])
}

func TestScanReportsListingFailure(testInstance *testing.T) {
	client := &stubToolsGitHubClient{listError: errors.New("listing failed")}
	_, scanError := newToolsService(testInstance, client, &recordingReadmeUpdater{}, nil).Scan(context.Background(), tools.ScanOptions{Username: serviceTestUsernameConstant})
	require.ErrorContains(testInstance, scanError, "listing failed")

	_, usernameError := newToolsService(testInstance, client, &recordingReadmeUpdater{}, nil).Scan(context.Background(), tools.ScanOptions{Username: "  "})
	require.ErrorIs(testInstance, usernameError, tools.ErrUsernameRequired)
}

func TestRunValidatesOptions(testInstance *testing.T) {
	service := newToolsService(testInstance, &stubToolsGitHubClient{}, &recordingReadmeUpdater{}, nil)

	_, tokenError := service.Run(context.Background(), tools.ScanOptions{Username: serviceTestUsernameConstant, ReadmePath: serviceTestReadmePathConstant})
	require.ErrorIs(testInstance, tokenError, tools.ErrTokenRequired)

	_, pathError := service.Run(context.Background(), tools.ScanOptions{AccessToken: serviceTestTokenConstant, Username: serviceTestUsernameConstant})
	require.ErrorIs(testInstance, pathError, tools.ErrReadmePathRequired)
}

func TestRunRewritesToolsRegion(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, serviceTestReadmePathConstant, []byte(serviceTestReadmeConstant), 0o644))

	updater, updaterError := readme.NewUpdater(fileSystem, readme.UpdaterSettings{IgnoreTimestampChanges: true})
	require.NoError(testInstance, updaterError)

	client := &stubToolsGitHubClient{
		repositories: []githubcli.Repository{newRepository("octocat"), newRepository("timer")},
		contents:     map[string][]githubcli.ContentEntry{"octocat/timer": htmlEntries("timer.html")},
	}
	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	service := newToolsService(testInstance, client, updater, zap.New(observerCore))

	options := tools.ScanOptions{AccessToken: serviceTestTokenConstant, Username: serviceTestUsernameConstant, ReadmePath: serviceTestReadmePathConstant}
	result, runError := service.Run(context.Background(), options)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, readme.UpdateStatusUpdated, result.Update.Status)
	require.Len(testInstance, result.Records, 1)

	content, readError := afero.ReadFile(fileSystem, serviceTestReadmePathConstant)
	require.NoError(testInstance, readError)
	require.True(testInstance, strings.HasPrefix(string(content), "# Hi\n\n<!-- TOOLS_LIST:START -->\n<table>\n<tr>\n"))
	require.True(testInstance, strings.HasSuffix(string(content), "*🕐 Last updated: 2024-06-30 12:00:00 UTC*\n<!-- TOOLS_LIST:END -->\n\nBye\n"))
	require.Contains(testInstance, string(content), "### 🔧 Timer")
	require.NotContains(testInstance, string(content), "### 🔧 Octocat")
	require.Equal(testInstance, 1, observedLogs.FilterMessage("README updated").Len())

	secondResult, secondRunError := service.Run(context.Background(), options)
	require.NoError(testInstance, secondRunError)
	require.Equal(testInstance, readme.UpdateStatusUnchanged, secondResult.Update.Status)
}

func TestRunNeutralizesMarkersInDescriptions(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, serviceTestReadmePathConstant, []byte(serviceTestReadmeConstant), 0o644))

	updater, updaterError := readme.NewUpdater(fileSystem, readme.UpdaterSettings{IgnoreTimestampChanges: true})
	require.NoError(testInstance, updaterError)

	repository := newRepository("timer")
	repository.Description = "see <!-- TOOLS_LIST:END --> here"
	client := &stubToolsGitHubClient{
		repositories: []githubcli.Repository{repository},
		contents:     map[string][]githubcli.ContentEntry{"octocat/timer": htmlEntries("index.html")},
	}
	service := newToolsService(testInstance, client, updater, nil)
	options := tools.ScanOptions{AccessToken: serviceTestTokenConstant, Username: serviceTestUsernameConstant, ReadmePath: serviceTestReadmePathConstant}

	_, firstRunError := service.Run(context.Background(), options)
	require.NoError(testInstance, firstRunError)

	content, readError := afero.ReadFile(fileSystem, serviceTestReadmePathConstant)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, 1, strings.Count(string(content), readme.ToolsListRegion.EndMarker))
	require.Contains(testInstance, string(content), "see &lt;!-- TOOLS_LIST:END --&gt; here")

	secondResult, secondRunError := service.Run(context.Background(), options)
	require.NoError(testInstance, secondRunError)
	require.Equal(testInstance, readme.UpdateStatusUnchanged, secondResult.Update.Status)
}

func TestRunRendersPlaceholderWithoutTools(testInstance *testing.T) {
	updater := &recordingReadmeUpdater{result: readme.UpdateResult{Status: readme.UpdateStatusDryRun}}
	service := newToolsService(testInstance, &stubToolsGitHubClient{}, updater, nil)

	result, runError := service.Run(context.Background(), tools.ScanOptions{AccessToken: serviceTestTokenConstant, Username: serviceTestUsernameConstant, ReadmePath: serviceTestReadmePathConstant, DryRun: true})
	require.NoError(testInstance, runError)
	require.Empty(testInstance, result.Records)
	require.Len(testInstance, updater.bodies, 1)
	require.Contains(testInstance, updater.bodies[0], "No tools yet")
	require.Equal(testInstance, serviceTestReadmePathConstant, result.Update.Path)
}

func TestRunWrapsUpdaterFailure(testInstance *testing.T) {
	updater := &recordingReadmeUpdater{err: readme.ErrReadmeNotFound}
	service := newToolsService(testInstance, &stubToolsGitHubClient{}, updater, nil)

	_, runError := service.Run(context.Background(), tools.ScanOptions{AccessToken: serviceTestTokenConstant, Username: serviceTestUsernameConstant, ReadmePath: serviceTestReadmePathConstant})
	require.ErrorIs(testInstance, runError, readme.ErrReadmeNotFound)
}
