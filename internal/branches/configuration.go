package branches

import "strings"

const (
	// DefaultStaleAfterDays is the inactivity window after which a branch counts as stale.
	DefaultStaleAfterDays                  = 180
	configurationStaleAfterDaysKeyConstant = "stale_after_days"
	configurationDeleteKeyConstant         = "delete"
	configurationAssumeYesKeyConstant      = "assume_yes"
	configurationProtectedKeyConstant      = "protected"
	configurationKeySeparatorConstant      = "."
)

// CommandConfiguration captures configuration values for the branches command.
type CommandConfiguration struct {
	StaleAfterDays int      `mapstructure:"stale_after_days"`
	Delete         bool     `mapstructure:"delete"`
	AssumeYes      bool     `mapstructure:"assume_yes"`
	Protected      []string `mapstructure:"protected"`
}

// DefaultCommandConfiguration provides baseline configuration values for stale branch cleanup.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		StaleAfterDays: DefaultStaleAfterDays,
		Delete:         false,
		AssumeYes:      false,
		Protected:      []string{},
	}
}

// DefaultConfigurationValues produces Viper defaults for the branches command beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationStaleAfterDaysKeyConstant: defaults.StaleAfterDays,
		prefix + configurationDeleteKeyConstant:         defaults.Delete,
		prefix + configurationAssumeYesKeyConstant:      defaults.AssumeYes,
		prefix + configurationProtectedKeyConstant:      defaults.Protected,
	}
}

// sanitize trims protected branch names without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Protected = make([]string, 0, len(configuration.Protected))
	for _, branchName := range configuration.Protected {
		trimmedName := strings.TrimSpace(branchName)
		if len(trimmedName) == 0 {
			continue
		}
		sanitized.Protected = append(sanitized.Protected, trimmedName)
	}
	return sanitized
}
