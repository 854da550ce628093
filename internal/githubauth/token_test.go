package githubauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repo-cleaner/internal/githubauth"
)

func TestResolveTokenPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name            string
		configuredToken string
		environment     map[string]string
		processToken    string
		expectedToken   string
		expectedFound   bool
	}{
		{
			name:            "configured_token_wins",
			configuredToken: " configured ",
			environment:     map[string]string{githubauth.EnvGitHubCLIToken: "cli"},
			expectedToken:   "configured",
			expectedFound:   true,
		},
		{
			name:          "cli_token_before_github_token",
			environment:   map[string]string{githubauth.EnvGitHubToken: "github", githubauth.EnvGitHubCLIToken: "cli"},
			expectedToken: "cli",
			expectedFound: true,
		},
		{
			name:          "api_token_fallback",
			environment:   map[string]string{githubauth.EnvGitHubToken: "  ", githubauth.EnvGitHubAPIToken: "api"},
			expectedToken: "api",
			expectedFound: true,
		},
		{
			name:          "process_environment_fallback",
			processToken:  "process",
			expectedToken: "process",
			expectedFound: true,
		},
		{
			name:          "no_token",
			expectedFound: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			testInstance.Setenv(githubauth.EnvGitHubCLIToken, "")
			testInstance.Setenv(githubauth.EnvGitHubToken, "")
			testInstance.Setenv(githubauth.EnvGitHubAPIToken, testCase.processToken)

			token, found := githubauth.ResolveToken(testCase.configuredToken, testCase.environment)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}
