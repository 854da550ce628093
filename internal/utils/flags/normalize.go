package flags

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagNameUnderscoreLiteral = "_"
	flagNameHyphenLiteral     = "-"
)

// NormalizeFlagName maps underscore spellings onto the hyphenated flag names.
func NormalizeFlagName(flagSet *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, flagNameUnderscoreLiteral, flagNameHyphenLiteral))
}

// ApplyNameNormalization installs NormalizeFlagName on the command and every subcommand added to it.
func ApplyNameNormalization(command *cobra.Command) {
	if command == nil {
		return
	}
	command.SetGlobalNormalizationFunc(NormalizeFlagName)
}
