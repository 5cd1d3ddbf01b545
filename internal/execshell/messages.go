package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	exitCodeSuffixTemplateConstant          = " (exit code %d%s)"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	failedPrefixConstant                    = "Failed to "
	unablePrefixConstant                    = "Unable to "
	executionFailureSeparatorConstant       = ": "
)

const (
	githubAPICommandNameConstant   = "api"
	githubFlagPrefixConstant       = "-"
	githubQuerySeparatorConstant   = "?"
	githubPathSeparatorConstant    = "/"
	githubUsersSegmentConstant     = "users"
	githubReposSegmentConstant     = "repos"
	githubContentsSegmentConstant  = "contents"
	githubLanguagesSegmentConstant = "languages"
	githubTopicsSegmentConstant    = "topics"
	githubPagesSegmentConstant     = "pages"
	githubBranchesSegmentConstant  = "branches"
	githubCommitsSegmentConstant   = "commits"
)

// apiMessageTemplates holds the progressive and completed phrasing of a gh api request.
type apiMessageTemplates struct {
	inProgress string
	completed  string
	action     string
}

var (
	userRepositoriesMessages = apiMessageTemplates{inProgress: "Listing repositories of %s", completed: "Listed repositories of %s", action: "list repositories of %s"}
	rootContentsMessages     = apiMessageTemplates{inProgress: "Reading root contents of %s", completed: "Read root contents of %s", action: "read root contents of %s"}
	languagesMessages        = apiMessageTemplates{inProgress: "Reading languages of %s", completed: "Read languages of %s", action: "read languages of %s"}
	topicsMessages           = apiMessageTemplates{inProgress: "Reading topics of %s", completed: "Read topics of %s", action: "read topics of %s"}
	pagesMessages            = apiMessageTemplates{inProgress: "Checking GitHub Pages site of %s", completed: "Found GitHub Pages site of %s", action: "check GitHub Pages site of %s"}
	branchesMessages         = apiMessageTemplates{inProgress: "Listing branches of %s", completed: "Listed branches of %s", action: "list branches of %s"}
	commitMessages           = apiMessageTemplates{inProgress: "Retrieving commit %s", completed: "Retrieved commit %s", action: "retrieve commit %s"}
	repositoryMessages       = apiMessageTemplates{inProgress: "Retrieving repository details for %s", completed: "Retrieved repository details for %s", action: "retrieve repository details for %s"}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGitHub {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	endpoint := formatter.extractAPIEndpoint(command.Details.Arguments)
	if len(endpoint) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	templates, subject, recognized := formatter.classifyEndpoint(endpoint)
	if !recognized {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.inProgress, subject)
	case messageStageSuccess:
		return fmt.Sprintf(templates.completed, subject)
	case messageStageFailure:
		return failedPrefixConstant + fmt.Sprintf(templates.action, subject) +
			fmt.Sprintf(exitCodeSuffixTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return unablePrefixConstant + fmt.Sprintf(templates.action, subject) + executionFailureSeparatorConstant + formatter.describeFailure(failure)
	default:
		return emptyStringConstant
	}
}

// extractAPIEndpoint returns the path of a gh api invocation without its query string.
func (formatter CommandMessageFormatter) extractAPIEndpoint(arguments []string) string {
	if len(arguments) < 2 || strings.TrimSpace(arguments[0]) != githubAPICommandNameConstant {
		return emptyStringConstant
	}
	for _, argument := range arguments[1:] {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, githubFlagPrefixConstant) {
			continue
		}
		endpoint, _, _ := strings.Cut(trimmedArgument, githubQuerySeparatorConstant)
		return strings.Trim(endpoint, githubPathSeparatorConstant)
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) classifyEndpoint(endpoint string) (apiMessageTemplates, string, bool) {
	segments := strings.Split(endpoint, githubPathSeparatorConstant)

	if len(segments) == 3 && segments[0] == githubUsersSegmentConstant && segments[2] == githubReposSegmentConstant {
		return userRepositoriesMessages, segments[1], true
	}

	if len(segments) < 3 || segments[0] != githubReposSegmentConstant {
		return apiMessageTemplates{}, emptyStringConstant, false
	}

	repository := segments[1] + githubPathSeparatorConstant + segments[2]
	if len(segments) == 3 {
		return repositoryMessages, repository, true
	}

	switch segments[3] {
	case githubContentsSegmentConstant:
		return rootContentsMessages, repository, true
	case githubLanguagesSegmentConstant:
		return languagesMessages, repository, true
	case githubTopicsSegmentConstant:
		return topicsMessages, repository, true
	case githubPagesSegmentConstant:
		return pagesMessages, repository, true
	case githubBranchesSegmentConstant:
		return branchesMessages, repository, true
	case githubCommitsSegmentConstant:
		if len(segments) > 4 {
			return commitMessages, repository + "@" + segments[4], true
		}
	}

	return apiMessageTemplates{}, emptyStringConstant, false
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
