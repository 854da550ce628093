package gitignore

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMissingPatterns(testInstance *testing.T) {
	testCases := []struct {
		name     string
		existing string
		patterns []string
		expected []string
	}{
		{name: "empty_file", existing: "", patterns: []string{"*.log", "node_modules/"}, expected: []string{"*.log", "node_modules/"}},
		{name: "trimmed_lines_match", existing: "  *.log  \r\nnode_modules/\n", patterns: []string{"*.log", "node_modules/", "*.tmp"}, expected: []string{"*.tmp"}},
		{name: "repeated_patterns_once", existing: "", patterns: []string{"*.bak", " *.bak ", ""}, expected: []string{"*.bak"}},
		{name: "all_present", existing: "*.swp\n*.swo\n", patterns: []string{"*.swo", "*.swp"}, expected: []string{}},
		{name: "comment_does_not_count", existing: "# *.log\n", patterns: []string{"*.log"}, expected: []string{"*.log"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expected, MissingPatterns([]byte(testCase.existing), testCase.patterns))
		})
	}
}

func TestAppendPatterns(testInstance *testing.T) {
	testCases := []struct {
		name     string
		existing string
		expected string
	}{
		{name: "new_file", existing: "", expected: "# Optimized entries added by repo-cleaner\n*.log\n*.tmp\n"},
		{name: "terminated_file", existing: "bin/\n", expected: "bin/\n\n# Optimized entries added by repo-cleaner\n*.log\n*.tmp\n"},
		{name: "unterminated_file", existing: "bin/", expected: "bin/\n\n# Optimized entries added by repo-cleaner\n*.log\n*.tmp\n"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expected, string(AppendPatterns([]byte(testCase.existing), []string{"*.log", "*.tmp"})))
		})
	}
}

func TestSanitizeRestoresDefaults(testInstance *testing.T) {
	sanitized := CommandConfiguration{Root: "  ", Message: " "}.sanitize()
	require.Equal(testInstance, ".", sanitized.Root)
	require.Equal(testInstance, RecommendedPatterns(), sanitized.Patterns)
	require.Equal(testInstance, "Optimize .gitignore", sanitized.Message)
}

func TestOptimizeLocalRootFailures(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, "/repo/README.md", []byte("readme"), 0o644))

	testCases := []struct {
		name            string
		root            string
		expectedMessage string
		expectNotExist  bool
	}{
		{name: "missing_root", root: "/absent", expectedMessage: "inspect root /absent", expectNotExist: true},
		{name: "file_root", root: "/repo/README.md", expectedMessage: "/repo/README.md is not a directory"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			service, serviceError := NewService(zap.NewNop(), fileSystem, nil, &bytes.Buffer{})
			require.NoError(subTest, serviceError)

			added, optimizeError := service.OptimizeLocal(testCase.root, []string{"*.log"})
			require.Error(subTest, optimizeError)
			require.Nil(subTest, added)
			require.Contains(subTest, optimizeError.Error(), testCase.expectedMessage)
			if testCase.expectNotExist {
				require.ErrorIs(subTest, optimizeError, fs.ErrNotExist)
			}
		})
	}
}
