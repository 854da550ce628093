package branches

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
	commandUseConstant                    = "branches"
	commandShortDescriptionConstant       = "Report and delete branches without recent commits"
	commandLongDescriptionConstant        = "branches lists remote branches whose last commit is older than --stale-after-days (180 by default). With --delete the stale branches are removed after confirmation. The default branch, protected branches and configured names are never touched."
	commandExecutionErrorTemplateConstant = "branch cleanup failed: %w"
	unexpectedArgumentsMessageConstant    = "branches does not accept positional arguments"
	flagStaleAfterDaysNameConstant        = "stale-after-days"
	flagStaleAfterDaysDescriptionConstant = "Days without commits after which a branch is stale"
	flagDeleteNameConstant                = "delete"
	flagDeleteDescriptionConstant         = "Delete the stale branches"
	flagProtectedNameConstant             = "protected"
	flagProtectedDescriptionConstant      = "Branch name that is never deleted (repeatable)"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded branches configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for stale branch cleanup.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	RepositoryProvider    dependencies.RepositoryContextProvider
	Executor              githubcli.GitHubCommandExecutor
	Prompter              prompt.ConfirmationPrompter
	Clock                 Clock
	WorkingDirectory      string
}

// Build constructs the branches command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}
	flags.ApplyNameNormalization(command)

	defaults := DefaultCommandConfiguration()
	command.Flags().Int(flagStaleAfterDaysNameConstant, defaults.StaleAfterDays, flagStaleAfterDaysDescriptionConstant)
	command.Flags().StringSlice(flagProtectedNameConstant, nil, flagProtectedDescriptionConstant)
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{Delete: defaults.Delete, AssumeYes: defaults.AssumeYes}, flags.ExecutionFlagDefinitions{
		Delete:    flags.ExecutionFlagDefinition{Name: flagDeleteNameConstant, Usage: flagDeleteDescriptionConstant, Enabled: true},
		AssumeYes: flags.ExecutionFlagDefinition{Name: flags.AssumeYesFlagName, Shorthand: flags.AssumeYesFlagShorthand, Usage: flags.AssumeYesFlagUsage, Enabled: true},
	})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
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

	prompter := prompt.Resolve(builder.Prompter, configuration.AssumeYes, command.InOrStdin(), command.ErrOrStderr())
	service, serviceError := NewService(logger, client, prompter, command.OutOrStdout(), builder.Clock)
	if serviceError != nil {
		return serviceError
	}

	_, cleanupError := service.Cleanup(command.Context(), CleanupOptions{
		Repository:     repository,
		StaleAfterDays: configuration.StaleAfterDays,
		Delete:         configuration.Delete,
		Protected:      configuration.Protected,
	})
	if cleanupError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, cleanupError)
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(flagStaleAfterDaysNameConstant) {
		configuration.StaleAfterDays, _ = commandFlags.GetInt(flagStaleAfterDaysNameConstant)
	}
	if commandFlags.Changed(flagDeleteNameConstant) {
		configuration.Delete, _ = commandFlags.GetBool(flagDeleteNameConstant)
	}
	if commandFlags.Changed(flags.AssumeYesFlagName) {
		configuration.AssumeYes, _ = commandFlags.GetBool(flags.AssumeYesFlagName)
	}
	if commandFlags.Changed(flagProtectedNameConstant) {
		additionalProtected, _ := commandFlags.GetStringSlice(flagProtectedNameConstant)
		configuration.Protected = append(append([]string{}, configuration.Protected...), additionalProtected...)
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
