package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestApplyNameNormalizationAcceptsBothSpellings(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "Hyphenated", arguments: []string{"--size-threshold", "7.5"}},
		{name: "Underscored", arguments: []string{"--size_threshold", "7.5"}},
		{name: "UnderscoredWithEquals", arguments: []string{"--size_threshold=7.5"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			rootCommand := &cobra.Command{Use: "root"}
			ApplyNameNormalization(rootCommand)

			childCommand := &cobra.Command{Use: "child", RunE: func(*cobra.Command, []string) error { return nil }}
			rootCommand.AddCommand(childCommand)

			var threshold float64
			childCommand.Flags().Float64Var(&threshold, "size_threshold", 5, "Threshold")

			require.NoError(t, childCommand.ParseFlags(testCase.arguments))
			require.InDelta(t, 7.5, threshold, 0.0001)
			require.NotNil(t, childCommand.Flags().Lookup("size-threshold"))
			require.True(t, childCommand.Flags().Changed("size_threshold"))
		})
	}
}
