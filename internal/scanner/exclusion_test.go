package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repo-cleaner/internal/scanner"
)

func TestExclusionMatcher(testInstance *testing.T) {
	matcher, creationError := scanner.NewExclusionMatcher([]string{".git", "node_modules/", "*.tmp", "vendor/**/testdata", " "})
	require.NoError(testInstance, creationError)

	testCases := []struct {
		path     string
		excluded bool
	}{
		{path: ".git", excluded: true},
		{path: "sub/.git", excluded: true},
		{path: "node_modules", excluded: true},
		{path: "web/node_modules", excluded: true},
		{path: "cache/file.tmp", excluded: true},
		{path: "vendor/lib/testdata", excluded: true},
		{path: "testdata", excluded: false},
		{path: ".gitignore", excluded: false},
		{path: "src/main.go", excluded: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.path, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.excluded, matcher.Matches(testCase.path))
		})
	}
}

func TestExclusionMatcherRejectsInvalidPattern(testInstance *testing.T) {
	_, creationError := scanner.NewExclusionMatcher([]string{"a[b"})
	require.ErrorIs(testInstance, creationError, scanner.ErrInvalidExclusionPattern)
}
