package repoadmin

import "strings"

const (
	configurationAssumeYesKeyConstant = "assume_yes"
	configurationBranchKeyConstant    = "branch"
	configurationMessageKeyConstant   = "message"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures configuration shared by the administration commands.
type CommandConfiguration struct {
	AssumeYes bool   `mapstructure:"assume_yes"`
	Branch    string `mapstructure:"branch"`
	Message   string `mapstructure:"message"`
}

// DefaultCommandConfiguration provides baseline configuration values. An empty branch targets the default branch.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues produces Viper defaults for the administration commands beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationAssumeYesKeyConstant: defaults.AssumeYes,
		prefix + configurationBranchKeyConstant:    defaults.Branch,
		prefix + configurationMessageKeyConstant:   defaults.Message,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Branch = strings.TrimSpace(configuration.Branch)
	sanitized.Message = strings.TrimSpace(configuration.Message)
	return sanitized
}
