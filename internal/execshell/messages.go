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
	genericStartTemplateConstant              = "Running %s"
	genericSuccessTemplateConstant            = "Completed %s"
	genericFailureTemplateConstant            = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant   = "%s failed: %s"
	commandLabelTemplateConstant              = "%s%s"
	commandWithArgumentsTemplateConstant      = "%s %s"
	workingDirectorySuffixTemplateConstant    = " (in %s)"
	commandArgumentsJoinSeparatorConstant     = " "
	standardErrorSuffixTemplateConstant       = ": %s"
	unknownFailureMessageConstant             = "unknown error"
	emptyStringConstant                       = ""
	operationFailureTemplateConstant          = "Failed to %s (exit code %d%s)"
	operationExecutionFailureTemplateConstant = "Unable to %s: %s"
)

const (
	githubAPICommandNameConstant               = "api"
	githubMethodFlagConstant                   = "-X"
	githubMethodGetConstant                    = "GET"
	githubMethodDeleteConstant                 = "DELETE"
	githubMethodPatchConstant                  = "PATCH"
	githubMethodPutConstant                    = "PUT"
	githubRepositoryPrefixConstant             = "repos/"
	githubEndpointSeparatorConstant            = "/"
	githubQuerySeparatorConstant               = "?"
	githubBranchesSegmentConstant              = "branches"
	githubCommitsSegmentConstant               = "commits"
	githubTagsSegmentConstant                  = "tags"
	githubPullsSegmentConstant                 = "pulls"
	githubContentsSegmentConstant              = "contents"
	githubGitSegmentConstant                   = "git"
	githubRefsSegmentConstant                  = "refs"
	githubHeadsSegmentConstant                 = "heads"
	githubReferenceMinimumSegmentsConstant     = 4
	githubRepositoryIdentifierSegmentsConstant = 2
)

const (
	listBranchesDescriptionTemplateConstant     = "list branches of %s"
	readCommitDescriptionTemplateConstant       = "read commit %s in %s"
	deleteBranchDescriptionTemplateConstant     = "delete branch %s from %s"
	listTagsDescriptionTemplateConstant         = "list tags of %s"
	deleteTagDescriptionTemplateConstant        = "delete tag %s from %s"
	closePullRequestDescriptionTemplateConstant = "close pull request #%s in %s"
	readContentDescriptionTemplateConstant      = "read %s from %s"
	writeContentDescriptionTemplateConstant     = "write %s to %s"
	deleteContentDescriptionTemplateConstant    = "delete %s from %s"
	archiveDescriptionTemplateConstant          = "archive %s"
	readRepositoryDescriptionTemplateConstant   = "read repository details for %s"
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

	description, described := formatter.describeGitHubAPICall(command.Details.Arguments)
	if !described {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return capitalize(gerund(description))
	case messageStageSuccess:
		return capitalize(pastTense(description))
	case messageStageFailure:
		return fmt.Sprintf(operationFailureTemplateConstant, description, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(operationExecutionFailureTemplateConstant, description, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

// describeGitHubAPICall maps a gh api invocation onto an operation description such as "delete branch x from owner/repo".
func (formatter CommandMessageFormatter) describeGitHubAPICall(arguments []string) (string, bool) {
	if len(arguments) < 2 || strings.TrimSpace(arguments[0]) != githubAPICommandNameConstant {
		return emptyStringConstant, false
	}

	endpoint := strings.TrimSpace(arguments[1])
	if index := strings.Index(endpoint, githubQuerySeparatorConstant); index >= 0 {
		endpoint = endpoint[:index]
	}
	if !strings.HasPrefix(endpoint, githubRepositoryPrefixConstant) {
		return emptyStringConstant, false
	}

	segments := strings.Split(strings.TrimPrefix(endpoint, githubRepositoryPrefixConstant), githubEndpointSeparatorConstant)
	if len(segments) < githubRepositoryIdentifierSegmentsConstant {
		return emptyStringConstant, false
	}
	repository := strings.Join(segments[:githubRepositoryIdentifierSegmentsConstant], githubEndpointSeparatorConstant)
	resource := segments[githubRepositoryIdentifierSegmentsConstant:]

	method := strings.ToUpper(strings.TrimSpace(findFlagValue(arguments, githubMethodFlagConstant)))
	if len(method) == 0 {
		method = githubMethodGetConstant
	}

	if len(resource) == 0 {
		if method == githubMethodPatchConstant {
			return fmt.Sprintf(archiveDescriptionTemplateConstant, repository), true
		}
		return fmt.Sprintf(readRepositoryDescriptionTemplateConstant, repository), true
	}

	remainder := strings.Join(resource[1:], githubEndpointSeparatorConstant)
	switch resource[0] {
	case githubBranchesSegmentConstant:
		return fmt.Sprintf(listBranchesDescriptionTemplateConstant, repository), true
	case githubCommitsSegmentConstant:
		return fmt.Sprintf(readCommitDescriptionTemplateConstant, remainder, repository), true
	case githubTagsSegmentConstant:
		return fmt.Sprintf(listTagsDescriptionTemplateConstant, repository), true
	case githubPullsSegmentConstant:
		return fmt.Sprintf(closePullRequestDescriptionTemplateConstant, remainder, repository), true
	case githubContentsSegmentConstant:
		switch method {
		case githubMethodPutConstant:
			return fmt.Sprintf(writeContentDescriptionTemplateConstant, remainder, repository), true
		case githubMethodDeleteConstant:
			return fmt.Sprintf(deleteContentDescriptionTemplateConstant, remainder, repository), true
		default:
			return fmt.Sprintf(readContentDescriptionTemplateConstant, remainder, repository), true
		}
	case githubGitSegmentConstant:
		if len(resource) < githubReferenceMinimumSegmentsConstant || resource[1] != githubRefsSegmentConstant {
			return emptyStringConstant, false
		}
		referenceName := strings.Join(resource[3:], githubEndpointSeparatorConstant)
		if resource[2] == githubHeadsSegmentConstant {
			return fmt.Sprintf(deleteBranchDescriptionTemplateConstant, referenceName, repository), true
		}
		return fmt.Sprintf(deleteTagDescriptionTemplateConstant, referenceName, repository), true
	default:
		return emptyStringConstant, false
	}
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
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf(commandWithArgumentsTemplateConstant, commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
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

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return arguments[index+1]
		}
	}
	return emptyStringConstant
}

var gerundForms = map[string]string{
	"list":    "listing",
	"read":    "reading",
	"delete":  "deleting",
	"close":   "closing",
	"write":   "writing",
	"archive": "archiving",
}

var pastTenseForms = map[string]string{
	"list":    "listed",
	"read":    "read",
	"delete":  "deleted",
	"close":   "closed",
	"write":   "wrote",
	"archive": "archived",
}

func gerund(description string) string {
	return replaceLeadingVerb(description, gerundForms)
}

func pastTense(description string) string {
	return replaceLeadingVerb(description, pastTenseForms)
}

func replaceLeadingVerb(description string, forms map[string]string) string {
	verb, remainder, found := strings.Cut(description, commandArgumentsJoinSeparatorConstant)
	replacement, known := forms[verb]
	if !known {
		return description
	}
	if !found {
		return replacement
	}
	return replacement + commandArgumentsJoinSeparatorConstant + remainder
}

func capitalize(value string) string {
	if len(value) == 0 {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
