package gitignore

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/dependencies"
	"github.com/temirov/repo-cleaner/internal/githubcli"
	"github.com/temirov/repo-cleaner/internal/utils/flags"
	pathutils "github.com/temirov/repo-cleaner/internal/utils/path"
)

const (
	commandUseConstant                    = "gitignore"
	commandShortDescriptionConstant       = "Add recommended patterns missing from .gitignore"
	commandLongDescriptionConstant        = "gitignore appends OS, IDE, Python, Node.js and temporary-file patterns that .gitignore lacks. By default it edits the .gitignore under --root; with --remote it commits the change to the repository through the GitHub contents API."
	commandExecutionErrorTemplateConstant = "gitignore optimization failed: %w"
	unexpectedArgumentsMessageConstant    = "gitignore does not accept positional arguments"
	flagRootDescriptionConstant           = "Local checkout whose .gitignore is updated"
	flagPatternNameConstant               = "pattern"
	flagPatternDescriptionConstant        = "Pattern to ensure (repeatable); replaces the recommended list"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Update .gitignore on GitHub instead of the local checkout"
	flagBranchDescriptionConstant         = "Branch to update in remote mode (default branch when omitted)"
	flagMessageNameConstant               = "message"
	flagMessageDescriptionConstant        = "Commit message in remote mode"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded gitignore configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the gitignore command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	RepositoryProvider    dependencies.RepositoryContextProvider
	Executor              githubcli.GitHubCommandExecutor
	FileSystem            afero.Fs
	RootResolver          *pathutils.RootResolver
	WorkingDirectory      string
}

// Build constructs the gitignore command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}
	flags.ApplyNameNormalization(command)

	defaults := DefaultCommandConfiguration()
	flags.BindRootFlag(command, defaults.Root, flagRootDescriptionConstant)
	flags.BindBranchFlag(command, defaults.Branch, flagBranchDescriptionConstant)
	command.Flags().StringArray(flagPatternNameConstant, nil, flagPatternDescriptionConstant)
	command.Flags().Bool(flagRemoteNameConstant, defaults.Remote, flagRemoteDescriptionConstant)
	command.Flags().String(flagMessageNameConstant, defaults.Message, flagMessageDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	logger := builder.resolveLogger()

	if !configuration.Remote {
		service, serviceError := NewService(logger, dependencies.ResolveFileSystem(builder.FileSystem), nil, command.OutOrStdout())
		if serviceError != nil {
			return serviceError
		}
		if _, optimizeError := service.OptimizeLocal(builder.resolveRoot(configuration.Root), configuration.Patterns); optimizeError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, optimizeError)
		}
		return nil
	}

	repositoryContext := dependencies.ResolveRepositoryContext(builder.RepositoryProvider)
	repository, repositoryError := dependencies.ResolveRepository(repositoryContext.Repository, builder.WorkingDirectory)
	if repositoryError != nil {
		return repositoryError
	}
	client, clientError := dependencies.ResolveGitHubClient(builder.Executor, logger, repositoryContext.Token)
	if clientError != nil {
		return clientError
	}
	service, serviceError := NewService(logger, nil, client, command.OutOrStdout())
	if serviceError != nil {
		return serviceError
	}

	_, optimizeError := service.OptimizeRemote(command.Context(), RemoteOptions{
		Repository: repository,
		Branch:     configuration.Branch,
		Message:    configuration.Message,
		Patterns:   configuration.Patterns,
	})
	if optimizeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, optimizeError)
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(flags.RootFlagName) {
		configuration.Root, _ = commandFlags.GetString(flags.RootFlagName)
	}
	if commandFlags.Changed(flagPatternNameConstant) {
		configuration.Patterns, _ = commandFlags.GetStringArray(flagPatternNameConstant)
	}
	if commandFlags.Changed(flagRemoteNameConstant) {
		configuration.Remote, _ = commandFlags.GetBool(flagRemoteNameConstant)
	}
	if commandFlags.Changed(flags.BranchFlagName) {
		configuration.Branch, _ = commandFlags.GetString(flags.BranchFlagName)
	}
	if commandFlags.Changed(flagMessageNameConstant) {
		configuration.Message, _ = commandFlags.GetString(flagMessageNameConstant)
	}
	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveRoot(root string) string {
	resolver := builder.RootResolver
	if resolver == nil {
		resolver = pathutils.NewRootResolver()
	}
	return resolver.Resolve(root)
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
