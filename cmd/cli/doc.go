// Package cli constructs the repo-cleaner command-line interface: the Cobra
// command hierarchy, the layered configuration loader and the zap logger
// shared by every subcommand.
package cli
