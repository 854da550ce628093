package tags

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/dependencies"
	"github.com/temirov/repo-cleaner/internal/githubcli"
	"github.com/temirov/repo-cleaner/internal/prompt"
	"github.com/temirov/repo-cleaner/internal/utils/flags"
)

const (
	commandUseConstant                    = "tags"
	commandShortDescriptionConstant       = "List repository tags and delete named ones"
	commandLongDescriptionConstant        = "tags prints every tag of the repository with its commit. Each --delete NAME removes that tag reference after confirmation."
	commandExecutionErrorTemplateConstant = "tags failed: %w"
	unexpectedArgumentsMessageConstant    = "tags does not accept positional arguments; use --delete NAME"
	flagDeleteNameConstant                = "delete"
	flagDeleteDescriptionConstant         = "Tag to delete (repeatable)"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded tags configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for tag management.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	RepositoryProvider    dependencies.RepositoryContextProvider
	Executor              githubcli.GitHubCommandExecutor
	Prompter              prompt.ConfirmationPrompter
	WorkingDirectory      string
}

// Build constructs the tags command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}
	flags.ApplyNameNormalization(command)

	command.Flags().StringArray(flagDeleteNameConstant, nil, flagDeleteDescriptionConstant)
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{AssumeYes: DefaultCommandConfiguration().AssumeYes}, flags.ExecutionFlagDefinitions{
		AssumeYes: flags.ExecutionFlagDefinition{Name: flags.AssumeYesFlagName, Shorthand: flags.AssumeYesFlagShorthand, Usage: flags.AssumeYesFlagUsage, Enabled: true},
	})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if command.Flags().Changed(flags.AssumeYesFlagName) {
		configuration.AssumeYes, _ = command.Flags().GetBool(flags.AssumeYesFlagName)
	}
	deleteNames, _ := command.Flags().GetStringArray(flagDeleteNameConstant)

	repositoryContext := dependencies.ResolveRepositoryContext(builder.RepositoryProvider)
	repository, repositoryError := dependencies.ResolveRepository(repositoryContext.Repository, builder.WorkingDirectory)
	if repositoryError != nil {
		return repositoryError
	}

	logger := builder.resolveLogger()
	client, clientError := dependencies.ResolveGitHubClient(builder.Executor, logger, repositoryContext.Token)
	if clientError != nil {
		return clientError
	}

	service, serviceError := NewService(logger, client, prompt.Resolve(builder.Prompter, configuration.AssumeYes, command.InOrStdin(), command.ErrOrStderr()), command.OutOrStdout())
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(command.Context(), Options{Repository: repository, Delete: deleteNames}); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
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
