package branches

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/githubcli"
	"github.com/temirov/repo-cleaner/internal/prompt"
)

const (
	loggerNotConfiguredMessageConstant    = "branch cleanup logger not configured"
	clientNotConfiguredMessageConstant    = "branch cleanup GitHub client not configured"
	prompterNotConfiguredMessageConstant  = "branch cleanup prompter not configured"
	outputNotConfiguredMessageConstant    = "branch cleanup output not configured"
	invalidStaleAfterDaysTemplateConstant = "%w: %d"
	invalidStaleAfterDaysMessageConstant  = "stale_after_days must be positive"
	branchDeletionErrorTemplateConstant   = "delete branch %s: %s"
	commitDateLayoutConstant              = "2006-01-02"
	staleHeaderTemplateConstant           = "Stale branches in %s (no commits in the last %d days): %d\n"
	staleLineTemplateConstant             = "Branch: %s, Last Commit Date: %s\n"
	noStaleBranchesMessageConstant        = "No stale branches found.\n"
	unresolvedLineTemplateConstant        = "Skipped branch %s: last commit date unavailable\n"
	confirmationPromptTemplateConstant    = "Delete %d stale branches from %s? [y/N] "
	deletionCancelledMessageConstant      = "Deletion cancelled.\n"
	deletedLineTemplateConstant           = "Deleted branch: %s\n"
	deletionFailedLineTemplateConstant    = "Failed to delete branch %s: %s\n"
	deletionDryRunMessageTemplateConstant = "%d stale branches can be deleted with --delete.\n"
	branchExemptMessageConstant           = "Branch exempt from cleanup"
	commitDateUnavailableMessageConstant  = "Skipping branch; last commit date unavailable"
	branchDeletedMessageConstant          = "Deleted stale branch"
	branchDeletionFailedMessageConstant   = "Failed to delete stale branch"
	cleanupCompletedMessageConstant       = "Stale branch scan completed"
	logFieldRepositoryConstant            = "repository"
	logFieldBranchConstant                = "branch"
	logFieldReasonConstant                = "reason"
	logFieldStaleConstant                 = "stale"
	logFieldCutoffConstant                = "cutoff"
	exemptReasonDefaultConstant           = "default branch"
	exemptReasonProtectedConstant         = "protected on GitHub"
	exemptReasonConfiguredConstant        = "listed in configuration"
	hoursPerDayConstant                   = 24
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
	// ErrInvalidStaleAfterDays indicates a non-positive inactivity window.
	ErrInvalidStaleAfterDays = errors.New(invalidStaleAfterDaysMessageConstant)
)

// GitHubClient is the subset of githubcli.Client used for branch cleanup.
type GitHubClient interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	ListBranches(executionContext context.Context, repository string) ([]githubcli.Branch, error)
	ResolveCommitDate(executionContext context.Context, repository string, commitReference string) (time.Time, error)
	DeleteBranch(executionContext context.Context, repository string, branchName string) error
}

// Clock returns the current time.
type Clock func() time.Time

// CleanupOptions configures one cleanup run.
type CleanupOptions struct {
	Repository     string
	StaleAfterDays int
	Delete         bool
	Protected      []string
}

// StaleBranch is a branch whose head commit predates the cutoff.
type StaleBranch struct {
	Name           string
	LastCommitDate time.Time
}

// BranchDeletionError records a stale branch that could not be deleted.
type BranchDeletionError struct {
	Branch string
	Cause  error
}

// Error describes the failed deletion.
func (deletionError BranchDeletionError) Error() string {
	return fmt.Sprintf(branchDeletionErrorTemplateConstant, deletionError.Branch, deletionError.Cause)
}

// Unwrap exposes the underlying cause.
func (deletionError BranchDeletionError) Unwrap() error {
	return deletionError.Cause
}

// CleanupResult summarizes a cleanup run.
type CleanupResult struct {
	Stale      []StaleBranch
	Unresolved []string
	Deleted    []string
	Failed     []BranchDeletionError
	Cancelled  bool
}

// Service finds and deletes stale branches.
type Service struct {
	logger   *zap.Logger
	client   GitHubClient
	prompter prompt.ConfirmationPrompter
	output   io.Writer
	clock    Clock
}

// NewService constructs a Service. A nil clock means time.Now.
func NewService(logger *zap.Logger, client GitHubClient, prompter prompt.ConfirmationPrompter, output io.Writer, clock Clock) (*Service, error) {
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
	if clock == nil {
		clock = time.Now
	}
	return &Service{logger: logger, client: client, prompter: prompter, output: output, clock: clock}, nil
}

// Cleanup reports stale branches and, when requested and confirmed, deletes them. A failed
// deletion is reported and the remaining deletions still run.
func (service *Service) Cleanup(executionContext context.Context, options CleanupOptions) (CleanupResult, error) {
	if options.StaleAfterDays <= 0 {
		return CleanupResult{}, fmt.Errorf(invalidStaleAfterDaysTemplateConstant, ErrInvalidStaleAfterDays, options.StaleAfterDays)
	}

	metadata, metadataError := service.client.ResolveRepoMetadata(executionContext, options.Repository)
	if metadataError != nil {
		return CleanupResult{}, metadataError
	}

	remoteBranches, listError := service.client.ListBranches(executionContext, options.Repository)
	if listError != nil {
		return CleanupResult{}, listError
	}

	cutoff := service.clock().Add(-time.Duration(options.StaleAfterDays) * hoursPerDayConstant * time.Hour)
	configuredProtected := make(map[string]struct{}, len(options.Protected))
	for _, branchName := range options.Protected {
		configuredProtected[branchName] = struct{}{}
	}

	result := CleanupResult{}
	for _, remoteBranch := range remoteBranches {
		if exemptReason, exempt := exemptionReason(remoteBranch, metadata.DefaultBranch, configuredProtected); exempt {
			service.logger.Debug(branchExemptMessageConstant, zap.String(logFieldBranchConstant, remoteBranch.Name), zap.String(logFieldReasonConstant, exemptReason))
			continue
		}

		commitDate, dateError := service.client.ResolveCommitDate(executionContext, options.Repository, remoteBranch.CommitSHA)
		if dateError != nil {
			service.logger.Warn(commitDateUnavailableMessageConstant, zap.String(logFieldBranchConstant, remoteBranch.Name), zap.Error(dateError))
			result.Unresolved = append(result.Unresolved, remoteBranch.Name)
			continue
		}

		if commitDate.Before(cutoff) {
			result.Stale = append(result.Stale, StaleBranch{Name: remoteBranch.Name, LastCommitDate: commitDate})
		}
	}

	service.logger.Info(cleanupCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, options.Repository),
		zap.Int(logFieldStaleConstant, len(result.Stale)),
		zap.Time(logFieldCutoffConstant, cutoff),
	)

	service.printStale(options, result)

	if len(result.Stale) == 0 {
		return result, nil
	}
	if !options.Delete {
		service.printf(deletionDryRunMessageTemplateConstant, len(result.Stale))
		return result, nil
	}

	confirmed, promptError := service.prompter.Confirm(fmt.Sprintf(confirmationPromptTemplateConstant, len(result.Stale), options.Repository))
	if promptError != nil {
		return result, promptError
	}
	if !confirmed {
		result.Cancelled = true
		service.printf(deletionCancelledMessageConstant)
		return result, nil
	}

	for _, staleBranch := range result.Stale {
		if executionContext.Err() != nil {
			return result, executionContext.Err()
		}
		if deleteError := service.client.DeleteBranch(executionContext, options.Repository, staleBranch.Name); deleteError != nil {
			service.logger.Warn(branchDeletionFailedMessageConstant, zap.String(logFieldBranchConstant, staleBranch.Name), zap.Error(deleteError))
			result.Failed = append(result.Failed, BranchDeletionError{Branch: staleBranch.Name, Cause: deleteError})
			service.printf(deletionFailedLineTemplateConstant, staleBranch.Name, deleteError)
			continue
		}
		service.logger.Info(branchDeletedMessageConstant, zap.String(logFieldBranchConstant, staleBranch.Name))
		result.Deleted = append(result.Deleted, staleBranch.Name)
		service.printf(deletedLineTemplateConstant, staleBranch.Name)
	}

	return result, nil
}

func (service *Service) printStale(options CleanupOptions, result CleanupResult) {
	service.printf(staleHeaderTemplateConstant, options.Repository, options.StaleAfterDays, len(result.Stale))
	if len(result.Stale) == 0 {
		service.printf(noStaleBranchesMessageConstant)
	}
	for _, staleBranch := range result.Stale {
		service.printf(staleLineTemplateConstant, staleBranch.Name, staleBranch.LastCommitDate.UTC().Format(commitDateLayoutConstant))
	}
	for _, branchName := range result.Unresolved {
		service.printf(unresolvedLineTemplateConstant, branchName)
	}
}

func (service *Service) printf(template string, arguments ...any) {
	fmt.Fprintf(service.output, template, arguments...)
}

func exemptionReason(remoteBranch githubcli.Branch, defaultBranch string, configuredProtected map[string]struct{}) (string, bool) {
	if remoteBranch.Name == defaultBranch {
		return exemptReasonDefaultConstant, true
	}
	if remoteBranch.Protected {
		return exemptReasonProtectedConstant, true
	}
	if _, listed := configuredProtected[remoteBranch.Name]; listed {
		return exemptReasonConfiguredConstant, true
	}
	return "", false
}
