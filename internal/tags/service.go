package tags

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
	loggerNotConfiguredMessageConstant   = "tags logger not configured"
	clientNotConfiguredMessageConstant   = "tags GitHub client not configured"
	prompterNotConfiguredMessageConstant = "tags prompter not configured"
	outputNotConfiguredMessageConstant   = "tags output not configured"
	tagDeletionErrorTemplateConstant     = "delete tag %s: %s"
	tagsHeaderTemplateConstant           = "Tags in %s: %d\n"
	tagLineTemplateConstant              = "Tag: %s, Commit: %s\n"
	tagNotFoundTemplateConstant          = "Tag %s not found.\n"
	confirmationPromptTemplateConstant   = "Delete %d tags from %s? [y/N] "
	deletionCancelledMessageConstant     = "Deletion cancelled.\n"
	deletedLineTemplateConstant          = "Deleted tag: %s\n"
	deletionFailedLineTemplateConstant   = "Failed to delete tag %s: %s\n"
	tagsListedMessageConstant            = "Listed repository tags"
	tagDeletedMessageConstant            = "Deleted tag"
	tagDeletionFailedMessageConstant     = "Failed to delete tag"
	logFieldRepositoryConstant           = "repository"
	logFieldTagConstant                  = "tag"
	logFieldCountConstant                = "count"
	shortCommitLengthConstant            = 7
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

// GitHubClient is the subset of githubcli.Client used by the tags command.
type GitHubClient interface {
	ListTags(executionContext context.Context, repository string) ([]githubcli.Tag, error)
	DeleteTag(executionContext context.Context, repository string, tagName string) error
}

// Options configures one tags run. An empty Delete list only lists tags.
type Options struct {
	Repository string
	Delete     []string
}

// TagDeletionError records a tag that could not be deleted.
type TagDeletionError struct {
	Tag   string
	Cause error
}

// Error describes the failed deletion.
func (deletionError TagDeletionError) Error() string {
	return fmt.Sprintf(tagDeletionErrorTemplateConstant, deletionError.Tag, deletionError.Cause)
}

// Unwrap exposes the underlying cause.
func (deletionError TagDeletionError) Unwrap() error {
	return deletionError.Cause
}

// Result summarizes a tags run.
type Result struct {
	Tags      []githubcli.Tag
	Missing   []string
	Deleted   []string
	Failed    []TagDeletionError
	Cancelled bool
}

// Service lists and deletes repository tags.
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

// Run prints the repository's tags and deletes the requested ones after confirmation.
// Names absent from the repository are reported and skipped; a failed deletion does not stop the rest.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	remoteTags, listError := service.client.ListTags(executionContext, options.Repository)
	if listError != nil {
		return Result{}, listError
	}
	service.logger.Info(tagsListedMessageConstant, zap.String(logFieldRepositoryConstant, options.Repository), zap.Int(logFieldCountConstant, len(remoteTags)))

	result := Result{Tags: remoteTags}
	fmt.Fprintf(service.output, tagsHeaderTemplateConstant, options.Repository, len(remoteTags))
	knownTags := make(map[string]struct{}, len(remoteTags))
	for _, remoteTag := range remoteTags {
		knownTags[remoteTag.Name] = struct{}{}
		fmt.Fprintf(service.output, tagLineTemplateConstant, remoteTag.Name, shortCommit(remoteTag.CommitSHA))
	}

	deletable := make([]string, 0, len(options.Delete))
	seen := make(map[string]struct{}, len(options.Delete))
	for _, requestedName := range options.Delete {
		trimmedName := strings.TrimSpace(requestedName)
		if len(trimmedName) == 0 {
			continue
		}
		if _, duplicate := seen[trimmedName]; duplicate {
			continue
		}
		seen[trimmedName] = struct{}{}
		if _, known := knownTags[trimmedName]; !known {
			result.Missing = append(result.Missing, trimmedName)
			fmt.Fprintf(service.output, tagNotFoundTemplateConstant, trimmedName)
			continue
		}
		deletable = append(deletable, trimmedName)
	}

	if len(deletable) == 0 {
		return result, nil
	}

	confirmed, promptError := service.prompter.Confirm(fmt.Sprintf(confirmationPromptTemplateConstant, len(deletable), options.Repository))
	if promptError != nil {
		return result, promptError
	}
	if !confirmed {
		result.Cancelled = true
		fmt.Fprint(service.output, deletionCancelledMessageConstant)
		return result, nil
	}

	for _, tagName := range deletable {
		if executionContext.Err() != nil {
			return result, executionContext.Err()
		}
		if deleteError := service.client.DeleteTag(executionContext, options.Repository, tagName); deleteError != nil {
			service.logger.Warn(tagDeletionFailedMessageConstant, zap.String(logFieldTagConstant, tagName), zap.Error(deleteError))
			result.Failed = append(result.Failed, TagDeletionError{Tag: tagName, Cause: deleteError})
			fmt.Fprintf(service.output, deletionFailedLineTemplateConstant, tagName, deleteError)
			continue
		}
		service.logger.Info(tagDeletedMessageConstant, zap.String(logFieldTagConstant, tagName))
		result.Deleted = append(result.Deleted, tagName)
		fmt.Fprintf(service.output, deletedLineTemplateConstant, tagName)
	}
	return result, nil
}

func shortCommit(commitSHA string) string {
	if len(commitSHA) <= shortCommitLengthConstant {
		return commitSHA
	}
	return commitSHA[:shortCommitLengthConstant]
}
