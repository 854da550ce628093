package repoadmin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/githubcli"
	"github.com/temirov/repo-cleaner/internal/prompt"
)

const (
	loggerNotConfiguredMessageConstant     = "repository administration logger not configured"
	clientNotConfiguredMessageConstant     = "repository administration GitHub client not configured"
	prompterNotConfiguredMessageConstant   = "repository administration prompter not configured"
	outputNotConfiguredMessageConstant     = "repository administration output not configured"
	operationFailuresTemplateConstant      = "%d of %d %s failed"
	pullRequestsNounConstant               = "pull request operations"
	fileDeletionsNounConstant              = "file deletions"
	pullRequestClosedTemplateConstant      = "Closed pull request #%d\n"
	pullRequestFailedTemplateConstant      = "Failed to close pull request #%d: %s\n"
	archivePromptTemplateConstant          = "Archive %s? It becomes read-only. [y/N] "
	archiveCancelledMessageConstant        = "Archive cancelled.\n"
	alreadyArchivedTemplateConstant        = "Repository %s is already archived.\n"
	archivedTemplateConstant               = "Archived repository: %s\n"
	fileDeletedTemplateConstant            = "Deleted file: %s\n"
	fileNotFoundTemplateConstant           = "File %s not found.\n"
	fileDeletionFailedTemplateConstant     = "Failed to delete file %s: %s\n"
	defaultDeletionMessageTemplateConstant = "Remove %s"
	pullRequestClosedMessageConstant       = "Closed pull request"
	pullRequestCloseFailedMessageConstant  = "Failed to close pull request"
	repositoryArchivedMessageConstant      = "Archived repository"
	fileDeletedMessageConstant             = "Deleted remote file"
	fileMissingMessageConstant             = "Remote file not found"
	fileDeletionFailedMessageConstant      = "Failed to delete remote file"
	logFieldRepositoryConstant             = "repository"
	logFieldPullRequestConstant            = "pull_request"
	logFieldPathConstant                   = "path"
	logFieldBranchConstant                 = "branch"
)

var (
	// ErrLoggerNotConfigured indicates the service was constructed without a logger.
	ErrLoggerNotConfigured   = errors.New(loggerNotConfiguredMessageConstant)
	// ErrClientNotConfigured indicates the service was constructed without a GitHub client.
	ErrClientNotConfigured   = errors.New(clientNotConfiguredMessageConstant)
	// ErrPrompterNotConfigured indicates the service was constructed without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterNotConfiguredMessageConstant)
	// ErrOutputNotConfigured indicates the service was constructed without an output writer.
	ErrOutputNotConfigured   = errors.New(outputNotConfiguredMessageConstant)
)

// GitHubClient is the subset of githubcli.Client used for repository administration.
type GitHubClient interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	ClosePullRequest(executionContext context.Context, repository string, pullRequestNumber int) error
	ArchiveRepository(executionContext context.Context, repository string) error
	GetFileContent(executionContext context.Context, repository string, filePath string, branch string) (githubcli.FileContent, error)
	DeleteFile(executionContext context.Context, repository string, deletion githubcli.FileDeletion) error
}

// PartialFailureError reports that some items of a batch operation failed while the rest succeeded.
type PartialFailureError struct {
	Noun   string
	Failed int
	Total  int
}

// Error describes the failure count.
func (failureError PartialFailureError) Error() string {
	return fmt.Sprintf(operationFailuresTemplateConstant, failureError.Failed, failureError.Total, failureError.Noun)
}

// FileDeletionOptions configures a remote file deletion batch.
type FileDeletionOptions struct {
	Repository string
	Paths      []string
	Branch     string
	Message    string
}

// Service executes administrative repository operations.
type Service struct {
	logger   *zap.Logger
	client   GitHubClient
	prompter prompt.ConfirmationPrompter
	output   io.Writer
}

// NewService constructs a Service.
func NewService(logger *zap.Logger, client GitHubClient, prompter prompt.ConfirmationPrompter, output io.Writer) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	if output == nil {
		return nil, ErrOutputNotConfigured
	}
	return &Service{logger: logger, client: client, prompter: prompter, output: output}, nil
}

// ClosePullRequests closes each pull request in order. Every number is attempted; a
// PartialFailureError is returned when any of them failed.
func (service *Service) ClosePullRequests(executionContext context.Context, repository string, pullRequestNumbers []int) error {
	failures := 0
	for _, pullRequestNumber := range pullRequestNumbers {
		if closeError := service.client.ClosePullRequest(executionContext, repository, pullRequestNumber); closeError != nil {
			failures++
			service.logger.Warn(pullRequestCloseFailedMessageConstant, zap.String(logFieldRepositoryConstant, repository), zap.Int(logFieldPullRequestConstant, pullRequestNumber), zap.Error(closeError))
			fmt.Fprintf(service.output, pullRequestFailedTemplateConstant, pullRequestNumber, closeError)
			continue
		}
		service.logger.Info(pullRequestClosedMessageConstant, zap.String(logFieldRepositoryConstant, repository), zap.Int(logFieldPullRequestConstant, pullRequestNumber))
		fmt.Fprintf(service.output, pullRequestClosedTemplateConstant, pullRequestNumber)
	}
	if failures > 0 {
		return PartialFailureError{Noun: pullRequestsNounConstant, Failed: failures, Total: len(pullRequestNumbers)}
	}
	return nil
}

// Archive archives the repository after confirmation. An already archived repository is reported and left alone.
func (service *Service) Archive(executionContext context.Context, repository string) error {
	metadata, metadataError := service.client.ResolveRepoMetadata(executionContext, repository)
	if metadataError != nil {
		return metadataError
	}
	if metadata.Archived {
		fmt.Fprintf(service.output, alreadyArchivedTemplateConstant, repository)
		return nil
	}

	confirmed, promptError := service.prompter.Confirm(fmt.Sprintf(archivePromptTemplateConstant, repository))
	if promptError != nil {
		return promptError
	}
	if !confirmed {
		fmt.Fprint(service.output, archiveCancelledMessageConstant)
		return nil
	}

	if archiveError := service.client.ArchiveRepository(executionContext, repository); archiveError != nil {
		return archiveError
	}
	service.logger.Info(repositoryArchivedMessageConstant, zap.String(logFieldRepositoryConstant, repository))
	fmt.Fprintf(service.output, archivedTemplateConstant, repository)
	return nil
}

// DeleteFiles removes each path from the branch, resolving its blob SHA first.
// A missing file is reported as not found and does not count as a failure.
func (service *Service) DeleteFiles(executionContext context.Context, options FileDeletionOptions) error {
	failures := 0
	for _, filePath := range options.Paths {
		trimmedPath := strings.TrimSpace(filePath)
		fileFields := []zap.Field{
			zap.String(logFieldRepositoryConstant, options.Repository),
			zap.String(logFieldPathConstant, trimmedPath),
			zap.String(logFieldBranchConstant, options.Branch),
		}

		existing, lookupError := service.client.GetFileContent(executionContext, options.Repository, trimmedPath, options.Branch)
		if lookupError != nil {
			if githubcli.IsNotFound(lookupError) {
				service.logger.Info(fileMissingMessageConstant, fileFields...)
				fmt.Fprintf(service.output, fileNotFoundTemplateConstant, trimmedPath)
				continue
			}
			failures++
			service.logger.Warn(fileDeletionFailedMessageConstant, append(fileFields, zap.Error(lookupError))...)
			fmt.Fprintf(service.output, fileDeletionFailedTemplateConstant, trimmedPath, lookupError)
			continue
		}

		message := options.Message
		if len(strings.TrimSpace(message)) == 0 {
			message = fmt.Sprintf(defaultDeletionMessageTemplateConstant, trimmedPath)
		}
		deleteError := service.client.DeleteFile(executionContext, options.Repository, githubcli.FileDeletion{
			Path:    trimmedPath,
			Branch:  options.Branch,
			Message: message,
			SHA:     existing.SHA,
		})
		if deleteError != nil {
			failures++
			service.logger.Warn(fileDeletionFailedMessageConstant, append(fileFields, zap.Error(deleteError))...)
			fmt.Fprintf(service.output, fileDeletionFailedTemplateConstant, trimmedPath, deleteError)
			continue
		}
		service.logger.Info(fileDeletedMessageConstant, fileFields...)
		fmt.Fprintf(service.output, fileDeletedTemplateConstant, trimmedPath)
	}
	if failures > 0 {
		return PartialFailureError{Noun: fileDeletionsNounConstant, Failed: failures, Total: len(options.Paths)}
	}
	return nil
}
