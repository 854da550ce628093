package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/branches"
	"github.com/temirov/repo-cleaner/internal/dependencies"
	"github.com/temirov/repo-cleaner/internal/files"
	"github.com/temirov/repo-cleaner/internal/gitignore"
	"github.com/temirov/repo-cleaner/internal/repoadmin"
	"github.com/temirov/repo-cleaner/internal/tags"
	"github.com/temirov/repo-cleaner/internal/utils"
	"github.com/temirov/repo-cleaner/internal/utils/flags"
)

const (
	applicationNameConstant                 = "repo-cleaner"
	applicationShortDescriptionConstant     = "Find duplicate and oversized files and tidy up GitHub repositories"
	applicationLongDescriptionConstant      = "repo-cleaner reports duplicate and large files in a local tree, removes redundant copies on request, and cleans up stale branches, tags, pull requests and files of a GitHub repository through the gh CLI."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	versionFlagNameConstant                 = "version"
	versionFlagUsageConstant                = "Print the repo-cleaner version and exit."
	versionFlagArgumentConstant             = "--" + versionFlagNameConstant
	versionOutputTemplateConstant           = "%s version: %s\n"
	unknownVersionConstant                  = "(devel)"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	githubConfigurationKeyConstant          = "github"
	githubRepositoryConfigKeyConstant       = githubConfigurationKeyConstant + ".repository"
	githubTokenConfigKeyConstant            = githubConfigurationKeyConstant + ".token"
	environmentPrefixConstant               = "REPOCLEANER"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationRepositoryFieldConstant    = "repository"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "repo-cleaner CLI executed"
	rootCommandDebugMessageConstant         = "repo-cleaner CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	toolsConfigurationKeyConstant           = "tools"
	filesConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".files"
	branchesConfigurationKeyConstant        = toolsConfigurationKeyConstant + ".branches"
	tagsConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".tags"
	repoAdminConfigurationKeyConstant       = toolsConfigurationKeyConstant + ".repoadmin"
	gitignoreConfigurationKeyConstant       = toolsConfigurationKeyConstant + ".gitignore"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	GitHub dependencies.RepositoryContext `mapstructure:"github"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands.
type ApplicationToolsConfiguration struct {
	Files     files.CommandConfiguration     `mapstructure:"files"`
	Branches  branches.CommandConfiguration  `mapstructure:"branches"`
	Tags      tags.CommandConfiguration      `mapstructure:"tags"`
	RepoAdmin repoadmin.CommandConfiguration `mapstructure:"repoadmin"`
	Gitignore gitignore.CommandConfiguration `mapstructure:"gitignore"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	repositoryFlagValues  *flags.RepositoryFlagValues
	versionResolver       func(context.Context) string
	exitFunction          func(int)
	versionOutput         io.Writer
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		versionResolver:     resolveBuildVersion,
		exitFunction:        os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	flags.ApplyNameNormalization(cobraCommand)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flags.FormatChoiceUsage(string(utils.LogLevelInfo), utils.SupportedLogLevels(), logLevelFlagUsageConstant))
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flags.FormatChoiceUsage(string(utils.LogFormatStructured), utils.SupportedLogFormats(), logFormatFlagUsageConstant))
	cobraCommand.PersistentFlags().Bool(versionFlagNameConstant, false, versionFlagUsageConstant)
	application.repositoryFlagValues = flags.BindRepositoryFlags(cobraCommand, flags.RepositoryFlagValues{})

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	repositoryProvider := func() dependencies.RepositoryContext {
		return application.configuration.GitHub
	}
	workingDirectory, _ := os.Getwd()

	filesBuilder := files.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() files.CommandConfiguration {
			return application.configuration.Tools.Files
		},
	}
	application.registerCommand(cobraCommand, filesBuilder.Build)

	branchesBuilder := branches.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() branches.CommandConfiguration {
			return application.configuration.Tools.Branches
		},
		RepositoryProvider: repositoryProvider,
		WorkingDirectory:   workingDirectory,
	}
	application.registerCommand(cobraCommand, branchesBuilder.Build)

	tagsBuilder := tags.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() tags.CommandConfiguration {
			return application.configuration.Tools.Tags
		},
		RepositoryProvider: repositoryProvider,
		WorkingDirectory:   workingDirectory,
	}
	application.registerCommand(cobraCommand, tagsBuilder.Build)

	repoAdminBuilder := repoadmin.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() repoadmin.CommandConfiguration {
			return application.configuration.Tools.RepoAdmin
		},
		RepositoryProvider: repositoryProvider,
		WorkingDirectory:   workingDirectory,
	}
	application.registerCommand(cobraCommand, repoAdminBuilder.BuildClosePullRequest)
	application.registerCommand(cobraCommand, repoAdminBuilder.BuildArchive)
	application.registerCommand(cobraCommand, repoAdminBuilder.BuildDeleteRemoteFile)

	gitignoreBuilder := gitignore.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() gitignore.CommandConfiguration {
			return application.configuration.Tools.Gitignore
		},
		RepositoryProvider: repositoryProvider,
		WorkingDirectory:   workingDirectory,
	}
	application.registerCommand(cobraCommand, gitignoreBuilder.Build)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	if application.versionRequested(os.Args[1:]) {
		application.printVersion()
		application.exitFunction(0)
		return nil
	}

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) registerCommand(rootCommand *cobra.Command, build func() (*cobra.Command, error)) {
	subcommand, buildError := build()
	if buildError != nil {
		return
	}
	rootCommand.AddCommand(subcommand)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:   string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:  string(utils.LogFormatStructured),
		githubRepositoryConfigKeyConstant: "",
		githubTokenConfigKeyConstant:      "",
	}
	defaultSources := []map[string]any{
		files.DefaultConfigurationValues(filesConfigurationKeyConstant),
		branches.DefaultConfigurationValues(branchesConfigurationKeyConstant),
		tags.DefaultConfigurationValues(tagsConfigurationKeyConstant),
		repoadmin.DefaultConfigurationValues(repoAdminConfigurationKeyConstant),
		gitignore.DefaultConfigurationValues(gitignoreConfigurationKeyConstant),
	}
	for _, defaultSource := range defaultSources {
		for configurationKey, configurationValue := range defaultSource {
			defaultValues[configurationKey] = configurationValue
		}
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, flags.RepositoryFlagName) {
		application.configuration.GitHub.Repository = application.repositoryFlagValues.Repository
	}
	if application.persistentFlagChanged(command, flags.TokenFlagName) {
		application.configuration.GitHub.Token = application.repositoryFlagValues.Token
	}

	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logFormatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(logLevel)),
		zap.String(configurationLogFormatFieldConstant, string(logFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationRepositoryFieldConstant, application.configuration.GitHub.Repository),
	)

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) versionRequested(arguments []string) bool {
	for _, argument := range arguments {
		if argument == versionFlagArgumentConstant {
			return true
		}
	}
	return false
}

func (application *Application) printVersion() {
	output := application.versionOutput
	if output == nil {
		output = os.Stdout
	}
	fmt.Fprintf(output, versionOutputTemplateConstant, applicationNameConstant, application.versionResolver(application.rootCommand.Context()))
}

func resolveBuildVersion(context.Context) string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersionConstant
	}
	version := strings.TrimSpace(buildInformation.Main.Version)
	if len(version) == 0 {
		return unknownVersionConstant
	}
	return version
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
