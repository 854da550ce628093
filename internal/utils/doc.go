// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers the embedded defaults, an optional YAML file and
// REPOCLEANER_ environment variables through Viper. LoggerFactory builds the
// zap logger shared by every subcommand.
package utils
