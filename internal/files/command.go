package files

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/dependencies"
	"github.com/temirov/repo-cleaner/internal/history"
	"github.com/temirov/repo-cleaner/internal/report"
	"github.com/temirov/repo-cleaner/internal/scanner"
	"github.com/temirov/repo-cleaner/internal/utils/flags"
	pathutils "github.com/temirov/repo-cleaner/internal/utils/path"
)

const (
	commandUseConstant                    = "files"
	commandShortDescriptionConstant       = "Report duplicate and large files in a local tree"
	commandLongDescriptionConstant        = "files hashes every regular file beneath --root, lists groups of identical files and files above --size-threshold, and with --delete-duplicates removes all but the lexicographically first file of each group."
	commandExecutionErrorTemplateConstant = "files report failed: %w"
	unexpectedArgumentsMessageConstant    = "files does not accept positional arguments"
	flagRootDescriptionConstant           = "Directory to scan"
	flagSizeThresholdNameConstant         = "size-threshold"
	flagSizeThresholdDescriptionConstant  = "Report files larger than this many megabytes"
	flagDeleteDuplicatesNameConstant      = "delete-duplicates"
	flagDeleteDuplicatesDescription       = "Delete all but one file of every duplicate group"
	flagExcludeNameConstant               = "exclude"
	flagExcludeDescriptionConstant        = "Glob pattern to exclude (repeatable); a pattern without a slash matches any base name"
	flagAlgorithmNameConstant             = "algorithm"
	flagAlgorithmDescriptionConstant      = "Content digest algorithm"
	flagWorkersNameConstant               = "workers"
	flagWorkersDescriptionConstant        = "Number of files hashed concurrently"
	flagMaxFilesPerSecondNameConstant     = "max-files-per-second"
	flagMaxFilesPerSecondDescription      = "Limit how many files are opened per second (0 disables the limit)"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "Report format"
	flagProgressNameConstant              = "progress"
	flagProgressDescriptionConstant       = "Show a hashing progress bar on stderr"
	flagHistoryNameConstant               = "history"
	flagHistoryDescriptionConstant        = "Also report blobs above the threshold anywhere in the git history of --root"
	progressDescriptionConstant           = "hashing"
	progressThrottleDuration              = 100 * time.Millisecond
	progressUnknownTotalConstant          = -1
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded files configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the files command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            afero.Fs
	HistoryScanner        HistoryScanner
	RootResolver          *pathutils.RootResolver
}

// Build constructs the files command.
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
	command.Flags().Float64(flagSizeThresholdNameConstant, defaults.SizeThreshold, flagSizeThresholdDescriptionConstant)
	command.Flags().Bool(flagDeleteDuplicatesNameConstant, defaults.DeleteDuplicates, flagDeleteDuplicatesDescription)
	command.Flags().StringSlice(flagExcludeNameConstant, defaults.Exclude, flagExcludeDescriptionConstant)
	command.Flags().String(flagAlgorithmNameConstant, defaults.Algorithm, flags.FormatChoiceUsage(defaults.Algorithm, scanner.SupportedAlgorithms(), flagAlgorithmDescriptionConstant))
	command.Flags().Int(flagWorkersNameConstant, defaults.Workers, flagWorkersDescriptionConstant)
	command.Flags().Float64(flagMaxFilesPerSecondNameConstant, defaults.MaxFilesPerSecond, flagMaxFilesPerSecondDescription)
	command.Flags().String(flagOutputNameConstant, defaults.Output, flags.FormatChoiceUsage(defaults.Output, report.SupportedFormats(), flagOutputDescriptionConstant))
	command.Flags().Bool(flagProgressNameConstant, defaults.Progress, flagProgressDescriptionConstant)
	command.Flags().Bool(flagHistoryNameConstant, defaults.History, flagHistoryDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	options, optionsError := builder.buildOptions(configuration, command.ErrOrStderr())
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	fileScanner, scannerError := scanner.NewScanner(fileSystem, logger)
	if scannerError != nil {
		return scannerError
	}
	duplicateRemover, removerError := report.NewDeleter(fileSystem, logger)
	if removerError != nil {
		return removerError
	}
	historyScanner, historyError := builder.resolveHistoryScanner(logger)
	if historyError != nil {
		return historyError
	}

	service, serviceError := NewService(logger, fileScanner, duplicateRemover, historyScanner, command.OutOrStdout())
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(command.Context(), options); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

// resolveConfiguration overlays explicitly set flags onto the configured values.
func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(flags.RootFlagName) {
		configuration.Root, _ = commandFlags.GetString(flags.RootFlagName)
	}
	if commandFlags.Changed(flagSizeThresholdNameConstant) {
		configuration.SizeThreshold, _ = commandFlags.GetFloat64(flagSizeThresholdNameConstant)
	}
	if commandFlags.Changed(flagDeleteDuplicatesNameConstant) {
		configuration.DeleteDuplicates, _ = commandFlags.GetBool(flagDeleteDuplicatesNameConstant)
	}
	if commandFlags.Changed(flagExcludeNameConstant) {
		configuration.Exclude, _ = commandFlags.GetStringSlice(flagExcludeNameConstant)
	}
	if commandFlags.Changed(flagAlgorithmNameConstant) {
		configuration.Algorithm, _ = commandFlags.GetString(flagAlgorithmNameConstant)
	}
	if commandFlags.Changed(flagWorkersNameConstant) {
		configuration.Workers, _ = commandFlags.GetInt(flagWorkersNameConstant)
	}
	if commandFlags.Changed(flagMaxFilesPerSecondNameConstant) {
		configuration.MaxFilesPerSecond, _ = commandFlags.GetFloat64(flagMaxFilesPerSecondNameConstant)
	}
	if commandFlags.Changed(flagOutputNameConstant) {
		configuration.Output, _ = commandFlags.GetString(flagOutputNameConstant)
	}
	if commandFlags.Changed(flagProgressNameConstant) {
		configuration.Progress, _ = commandFlags.GetBool(flagProgressNameConstant)
	}
	if commandFlags.Changed(flagHistoryNameConstant) {
		configuration.History, _ = commandFlags.GetBool(flagHistoryNameConstant)
	}

	return configuration.sanitize()
}

func (builder *CommandBuilder) buildOptions(configuration CommandConfiguration, progressOutput io.Writer) (Options, error) {
	thresholdBytes, thresholdError := report.ThresholdFromMegabytes(configuration.SizeThreshold)
	if thresholdError != nil {
		return Options{}, thresholdError
	}

	algorithmName, algorithmError := flags.ValidateChoice(flagAlgorithmNameConstant, configuration.Algorithm, scanner.SupportedAlgorithms())
	if algorithmError != nil {
		return Options{}, algorithmError
	}

	formatName, formatError := flags.ValidateChoice(flagOutputNameConstant, configuration.Output, report.SupportedFormats())
	if formatError != nil {
		return Options{}, formatError
	}

	rootResolver := builder.RootResolver
	if rootResolver == nil {
		rootResolver = pathutils.NewRootResolver()
	}

	options := Options{
		Root:              rootResolver.Resolve(configuration.Root),
		ThresholdBytes:    thresholdBytes,
		DeleteDuplicates:  configuration.DeleteDuplicates,
		Exclusions:        configuration.Exclude,
		Algorithm:         scanner.Algorithm(algorithmName),
		Workers:           configuration.Workers,
		MaxFilesPerSecond: configuration.MaxFilesPerSecond,
		Format:            report.Format(formatName),
		ScanHistory:       configuration.History,
	}
	if configuration.Progress {
		options.Progress = newProgressBar(progressOutput)
	}
	return options, nil
}

func newProgressBar(output io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(progressUnknownTotalConstant,
		progressbar.OptionSetWriter(output),
		progressbar.OptionSetDescription(progressDescriptionConstant),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(progressThrottleDuration),
		progressbar.OptionClearOnFinish(),
	)
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

func (builder *CommandBuilder) resolveHistoryScanner(logger *zap.Logger) (HistoryScanner, error) {
	if builder.HistoryScanner != nil {
		return builder.HistoryScanner, nil
	}
	return history.NewBlobScanner(logger)
}
