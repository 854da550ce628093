package files

import (
	"strings"

	"github.com/temirov/repo-cleaner/internal/report"
	"github.com/temirov/repo-cleaner/internal/scanner"
)

const (
	configurationRootKeyConstant              = "root"
	configurationSizeThresholdKeyConstant     = "size_threshold"
	configurationDeleteDuplicatesKeyConstant  = "delete_duplicates"
	configurationExcludeKeyConstant           = "exclude"
	configurationAlgorithmKeyConstant         = "algorithm"
	configurationWorkersKeyConstant           = "workers"
	configurationOutputKeyConstant            = "output"
	configurationProgressKeyConstant          = "progress"
	configurationMaxFilesPerSecondKeyConstant = "max_files_per_second"
	configurationHistoryKeyConstant           = "history"
	configurationKeySeparatorConstant         = "."
	defaultRootConstant                       = "."
	defaultWorkerCountConstant                = 1
)

// CommandConfiguration captures configuration values for the files command.
type CommandConfiguration struct {
	Root              string   `mapstructure:"root"`
	SizeThreshold     float64  `mapstructure:"size_threshold"`
	DeleteDuplicates  bool     `mapstructure:"delete_duplicates"`
	Exclude           []string `mapstructure:"exclude"`
	Algorithm         string   `mapstructure:"algorithm"`
	Workers           int      `mapstructure:"workers"`
	Output            string   `mapstructure:"output"`
	Progress          bool     `mapstructure:"progress"`
	MaxFilesPerSecond float64  `mapstructure:"max_files_per_second"`
	History           bool     `mapstructure:"history"`
}

// DefaultCommandConfiguration provides baseline configuration values for the files command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:              defaultRootConstant,
		SizeThreshold:     report.DefaultSizeThresholdMegabytes,
		DeleteDuplicates:  false,
		Exclude:           scanner.DefaultExclusions(),
		Algorithm:         string(scanner.DefaultAlgorithm),
		Workers:           defaultWorkerCountConstant,
		Output:            string(report.FormatText),
		Progress:          false,
		MaxFilesPerSecond: 0,
		History:           false,
	}
}

// DefaultConfigurationValues produces Viper defaults for the files command beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRootKeyConstant:              defaults.Root,
		prefix + configurationSizeThresholdKeyConstant:     defaults.SizeThreshold,
		prefix + configurationDeleteDuplicatesKeyConstant:  defaults.DeleteDuplicates,
		prefix + configurationExcludeKeyConstant:           defaults.Exclude,
		prefix + configurationAlgorithmKeyConstant:         defaults.Algorithm,
		prefix + configurationWorkersKeyConstant:           defaults.Workers,
		prefix + configurationOutputKeyConstant:            defaults.Output,
		prefix + configurationProgressKeyConstant:          defaults.Progress,
		prefix + configurationMaxFilesPerSecondKeyConstant: defaults.MaxFilesPerSecond,
		prefix + configurationHistoryKeyConstant:           defaults.History,
	}
}

// sanitize trims textual values and drops blank exclusion patterns.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Root = strings.TrimSpace(configuration.Root)
	sanitized.Algorithm = strings.TrimSpace(configuration.Algorithm)
	sanitized.Output = strings.TrimSpace(configuration.Output)

	if configuration.Exclude != nil {
		sanitized.Exclude = make([]string, 0, len(configuration.Exclude))
		for _, pattern := range configuration.Exclude {
			trimmedPattern := strings.TrimSpace(pattern)
			if len(trimmedPattern) == 0 {
				continue
			}
			sanitized.Exclude = append(sanitized.Exclude, trimmedPattern)
		}
	}
	return sanitized
}
