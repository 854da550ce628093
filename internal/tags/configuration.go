package tags

const (
	configurationAssumeYesKeyConstant = "assume_yes"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures configuration values for the tags command.
type CommandConfiguration struct {
	AssumeYes bool `mapstructure:"assume_yes"`
}

// DefaultCommandConfiguration provides baseline configuration values for the tags command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{AssumeYes: false}
}

// DefaultConfigurationValues produces Viper defaults for the tags command beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationAssumeYesKeyConstant: DefaultCommandConfiguration().AssumeYes,
	}
}
