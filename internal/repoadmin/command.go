package repoadmin

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/dependencies"
	"github.com/temirov/repo-cleaner/internal/githubcli"
	"github.com/temirov/repo-cleaner/internal/prompt"
	"github.com/temirov/repo-cleaner/internal/utils/flags"
)

const (
	closePullRequestUseConstant              = "close-pr NUMBER..."
	closePullRequestShortDescriptionConstant = "Close pull requests without merging"
	archiveUseConstant                       = "archive"
	archiveShortDescriptionConstant          = "Archive the repository"
	archiveLongDescriptionConstant           = "archive marks the repository read-only on GitHub. It asks for confirmation unless --yes is given."
	deleteFileUseConstant                    = "delete-remote-file PATH..."
	deleteFileShortDescriptionConstant       = "Delete files from a branch through the GitHub contents API"
	deleteFileLongDescriptionConstant        = "delete-remote-file commits one deletion per path to --branch (the default branch when omitted). Paths that do not exist are reported as not found."
	closePullRequestErrorTemplateConstant    = "close-pr failed: %w"
	archiveErrorTemplateConstant             = "archive failed: %w"
	deleteFileErrorTemplateConstant          = "delete-remote-file failed: %w"
	invalidPullRequestNumberTemplateConstant = "invalid pull request number %q"
	flagBranchDescriptionConstant            = "Branch to delete the files from"
	flagMessageNameConstant                  = "message"
	flagMessageDescriptionConstant           = "Commit message for each deletion (defaults to \"Remove PATH\")"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded administration configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the close-pr, archive and delete-remote-file commands, which share their collaborators.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	RepositoryProvider    dependencies.RepositoryContextProvider
	Executor              githubcli.GitHubCommandExecutor
	Prompter              prompt.ConfirmationPrompter
	WorkingDirectory      string
}

// BuildClosePullRequest constructs the close-pr command.
func (builder *CommandBuilder) BuildClosePullRequest() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   closePullRequestUseConstant,
		Short: closePullRequestShortDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.runClosePullRequest,
	}
	flags.ApplyNameNormalization(command)
	return command, nil
}

// BuildArchive constructs the archive command.
func (builder *CommandBuilder) BuildArchive() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   archiveUseConstant,
		Short: archiveShortDescriptionConstant,
		Long:  archiveLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runArchive,
	}
	flags.ApplyNameNormalization(command)
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.ExecutionFlagDefinitions{
		AssumeYes: flags.ExecutionFlagDefinition{Name: flags.AssumeYesFlagName, Shorthand: flags.AssumeYesFlagShorthand, Usage: flags.AssumeYesFlagUsage, Enabled: true},
	})
	return command, nil
}

// BuildDeleteRemoteFile constructs the delete-remote-file command.
func (builder *CommandBuilder) BuildDeleteRemoteFile() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   deleteFileUseConstant,
		Short: deleteFileShortDescriptionConstant,
		Long:  deleteFileLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.runDeleteRemoteFile,
	}
	flags.ApplyNameNormalization(command)
	flags.BindBranchFlag(command, DefaultCommandConfiguration().Branch, flagBranchDescriptionConstant)
	command.Flags().String(flagMessageNameConstant, DefaultCommandConfiguration().Message, flagMessageDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) runClosePullRequest(command *cobra.Command, arguments []string) error {
	pullRequestNumbers := make([]int, 0, len(arguments))
	for _, argument := range arguments {
		pullRequestNumber, parseError := strconv.Atoi(argument)
		if parseError != nil || pullRequestNumber <= 0 {
			return fmt.Errorf(invalidPullRequestNumberTemplateConstant, argument)
		}
		pullRequestNumbers = append(pullRequestNumbers, pullRequestNumber)
	}

	service, repository, setupError := builder.prepare(command, builder.resolveConfiguration(command))
	if setupError != nil {
		return setupError
	}
	if closeError := service.ClosePullRequests(command.Context(), repository, pullRequestNumbers); closeError != nil {
		return fmt.Errorf(closePullRequestErrorTemplateConstant, closeError)
	}
	return nil
}

func (builder *CommandBuilder) runArchive(command *cobra.Command, _ []string) error {
	service, repository, setupError := builder.prepare(command, builder.resolveConfiguration(command))
	if setupError != nil {
		return setupError
	}
	if archiveError := service.Archive(command.Context(), repository); archiveError != nil {
		return fmt.Errorf(archiveErrorTemplateConstant, archiveError)
	}
	return nil
}

func (builder *CommandBuilder) runDeleteRemoteFile(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command)
	service, repository, setupError := builder.prepare(command, configuration)
	if setupError != nil {
		return setupError
	}
	deletionError := service.DeleteFiles(command.Context(), FileDeletionOptions{
		Repository: repository,
		Paths:      arguments,
		Branch:     configuration.Branch,
		Message:    configuration.Message,
	})
	if deletionError != nil {
		return fmt.Errorf(deleteFileErrorTemplateConstant, deletionError)
	}
	return nil
}

func (builder *CommandBuilder) prepare(command *cobra.Command, configuration CommandConfiguration) (*Service, string, error) {
	repositoryContext := dependencies.ResolveRepositoryContext(builder.RepositoryProvider)
	repository, repositoryError := dependencies.ResolveRepository(repositoryContext.Repository, builder.WorkingDirectory)
	if repositoryError != nil {
		return nil, "", repositoryError
	}

	logger := builder.resolveLogger()
	client, clientError := dependencies.ResolveGitHubClient(builder.Executor, logger, repositoryContext.Token)
	if clientError != nil {
		return nil, "", clientError
	}

	prompter := prompt.Resolve(builder.Prompter, configuration.AssumeYes, command.InOrStdin(), command.ErrOrStderr())
	service, serviceError := NewService(logger, client, prompter, command.OutOrStdout())
	if serviceError != nil {
		return nil, "", serviceError
	}
	return service, repository, nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(flags.AssumeYesFlagName) {
		configuration.AssumeYes, _ = commandFlags.GetBool(flags.AssumeYesFlagName)
	}
	if commandFlags.Changed(flags.BranchFlagName) {
		configuration.Branch, _ = commandFlags.GetString(flags.BranchFlagName)
	}
	if commandFlags.Changed(flagMessageNameConstant) {
		configuration.Message, _ = commandFlags.GetString(flagMessageNameConstant)
	}
	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
