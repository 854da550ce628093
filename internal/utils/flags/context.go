package flags

import "github.com/spf13/cobra"

const (
	// RepositoryFlagName exposes the shared target repository flag name.
	RepositoryFlagName     = "repo"
	// RepositoryFlagUsage describes the shared target repository flag purpose.
	RepositoryFlagUsage    = "GitHub repository in owner/name form"
	// TokenFlagName exposes the shared GitHub token flag name.
	TokenFlagName          = "token"
	// TokenFlagUsage describes the shared GitHub token flag purpose.
	TokenFlagUsage         = "GitHub token passed to gh (defaults to GH_TOKEN, GITHUB_TOKEN or GITHUB_API_TOKEN)"
	// BranchFlagName exposes the shared branch flag name.
	BranchFlagName         = "branch"
	// RootFlagName exposes the shared local directory flag name.
	RootFlagName           = "root"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName      = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage     = "Automatically confirm prompts"
)

// RepositoryFlagValues stores the remote repository context.
type RepositoryFlagValues struct {
	Repository string
	Token      string
}

// BindRepositoryFlags attaches --repo and --token as persistent flags so every subcommand shares them.
func BindRepositoryFlags(command *cobra.Command, defaults RepositoryFlagValues) *RepositoryFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(RepositoryFlagName) == nil {
		persistentFlagSet.StringVar(&values.Repository, RepositoryFlagName, defaults.Repository, RepositoryFlagUsage)
	}
	if persistentFlagSet.Lookup(TokenFlagName) == nil {
		persistentFlagSet.StringVar(&values.Token, TokenFlagName, defaults.Token, TokenFlagUsage)
	}
	return &values
}

// BindBranchFlag attaches a --branch flag with the provided default and usage.
func BindBranchFlag(command *cobra.Command, defaultValue string, usage string) {
	if command == nil {
		return
	}
	if command.Flags().Lookup(BranchFlagName) == nil {
		command.Flags().String(BranchFlagName, defaultValue, usage)
	}
}

// BindRootFlag attaches a --root flag naming a local directory.
func BindRootFlag(command *cobra.Command, defaultValue string, usage string) {
	if command == nil {
		return
	}
	if command.Flags().Lookup(RootFlagName) == nil {
		command.Flags().String(RootFlagName, defaultValue, usage)
	}
}
