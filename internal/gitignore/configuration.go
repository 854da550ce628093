package gitignore

import "strings"

const (
	defaultCommitMessageConstant      = "Optimize .gitignore"
	configurationRootKeyConstant      = "root"
	configurationPatternsKeyConstant  = "patterns"
	configurationRemoteKeyConstant    = "remote"
	configurationBranchKeyConstant    = "branch"
	configurationMessageKeyConstant   = "message"
	configurationKeySeparatorConstant = "."
	defaultRootConstant               = "."
)

// CommandConfiguration captures configuration values for the gitignore command.
type CommandConfiguration struct {
	Root     string   `mapstructure:"root"`
	Patterns []string `mapstructure:"patterns"`
	Remote   bool     `mapstructure:"remote"`
	Branch   string   `mapstructure:"branch"`
	Message  string   `mapstructure:"message"`
}

// DefaultCommandConfiguration provides baseline configuration values for the gitignore command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:     defaultRootConstant,
		Patterns: RecommendedPatterns(),
		Remote:   false,
		Branch:   "",
		Message:  defaultCommitMessageConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the gitignore command beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRootKeyConstant:     defaults.Root,
		prefix + configurationPatternsKeyConstant: defaults.Patterns,
		prefix + configurationRemoteKeyConstant:   defaults.Remote,
		prefix + configurationBranchKeyConstant:   defaults.Branch,
		prefix + configurationMessageKeyConstant:  defaults.Message,
	}
}

// sanitize fills blank values with defaults. An explicitly empty pattern list falls back to the recommended one.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Root = strings.TrimSpace(configuration.Root)
	if len(sanitized.Root) == 0 {
		sanitized.Root = defaultRootConstant
	}
	if len(configuration.Patterns) == 0 {
		sanitized.Patterns = RecommendedPatterns()
	}
	sanitized.Branch = strings.TrimSpace(configuration.Branch)
	sanitized.Message = strings.TrimSpace(configuration.Message)
	if len(sanitized.Message) == 0 {
		sanitized.Message = defaultCommitMessageConstant
	}
	return sanitized
}
