package gitignore_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/dependencies"
	"github.com/temirov/repo-cleaner/internal/execshell"
	"github.com/temirov/repo-cleaner/internal/gitignore"
	pathutils "github.com/temirov/repo-cleaner/internal/utils/path"
)

const (
	testRootConstant          = "/workspace"
	testGitignorePathConstant = "/workspace/.gitignore"
	testRepositoryConstant    = "octo/cleaner"
	testContentsEndpoint      = "repos/octo/cleaner/contents/.gitignore"
	testHeaderConstant        = "# Optimized entries added by repo-cleaner\n"
	testNotFoundStandardError = "gh: Not Found (HTTP 404)"
)

type stubGitHubExecutor struct {
	contentResponse string
	readFailure     string
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if len(details.Arguments) > 2 {
		return execshell.ExecutionResult{}, nil
	}
	if len(executor.readFailure) > 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGitHub, Details: details},
			Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: executor.readFailure},
		}
	}
	return execshell.ExecutionResult{StandardOutput: executor.contentResponse}, nil
}

func executeGitignoreCommand(testInstance *testing.T, builder gitignore.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	command.SetContext(context.Background())
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func newLocalBuilder(fileSystem afero.Fs) gitignore.CommandBuilder {
	return gitignore.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		FileSystem:     fileSystem,
		RootResolver:   pathutils.NewRootResolver(),
	}
}

func TestGitignoreCommandLocalMode(testInstance *testing.T) {
	testInstance.Run("appends_missing_patterns", func(subTest *testing.T) {
		fileSystem := afero.NewMemMapFs()
		require.NoError(subTest, fileSystem.MkdirAll(testRootConstant, 0o755))
		require.NoError(subTest, afero.WriteFile(fileSystem, testGitignorePathConstant, []byte("bin/\n*.log\n"), 0o644))

		output, executionError := executeGitignoreCommand(subTest, newLocalBuilder(fileSystem), "--root", testRootConstant, "--pattern", "*.log", "--pattern", "*.tmp")
		require.NoError(subTest, executionError)
		require.Equal(subTest, "Added '*.tmp' to .gitignore\n", output)

		updated, readError := afero.ReadFile(fileSystem, testGitignorePathConstant)
		require.NoError(subTest, readError)
		require.Equal(subTest, "bin/\n*.log\n\n"+testHeaderConstant+"*.tmp\n", string(updated))

		secondOutput, secondError := executeGitignoreCommand(subTest, newLocalBuilder(fileSystem), "--root", testRootConstant, "--pattern", "*.log", "--pattern", "*.tmp")
		require.NoError(subTest, secondError)
		require.Equal(subTest, "/workspace/.gitignore already contains every recommended pattern.\n", secondOutput)

		unchanged, _ := afero.ReadFile(fileSystem, testGitignorePathConstant)
		require.Equal(subTest, updated, unchanged)
	})

	testInstance.Run("creates_file_with_recommended_patterns", func(subTest *testing.T) {
		fileSystem := afero.NewMemMapFs()
		require.NoError(subTest, fileSystem.MkdirAll(testRootConstant, 0o755))

		builder := newLocalBuilder(fileSystem)
		builder.ConfigurationProvider = func() gitignore.CommandConfiguration {
			configuration := gitignore.DefaultCommandConfiguration()
			configuration.Root = testRootConstant
			return configuration
		}
		_, executionError := executeGitignoreCommand(subTest, builder)
		require.NoError(subTest, executionError)

		created, readError := afero.ReadFile(fileSystem, testGitignorePathConstant)
		require.NoError(subTest, readError)
		expected := testHeaderConstant + strings.Join(gitignore.RecommendedPatterns(), "\n") + "\n"
		require.Equal(subTest, expected, string(created))
	})

	testInstance.Run("missing_root_fails", func(subTest *testing.T) {
		_, executionError := executeGitignoreCommand(subTest, newLocalBuilder(afero.NewMemMapFs()), "--root", "/absent")
		require.Error(subTest, executionError)
		require.Contains(subTest, executionError.Error(), "gitignore optimization failed")
	})

	testInstance.Run("positional_arguments_rejected", func(subTest *testing.T) {
		_, executionError := executeGitignoreCommand(subTest, newLocalBuilder(afero.NewMemMapFs()), "extra")
		require.EqualError(subTest, executionError, "gitignore does not accept positional arguments")
	})
}

func TestGitignoreCommandRemoteMode(testInstance *testing.T) {
	existingContent := base64.StdEncoding.EncodeToString([]byte("bin/\n*.log\n"))
	testCases := []struct {
		name              string
		executor          *stubGitHubExecutor
		arguments         []string
		expectedOutput    string
		expectedContent   string
		expectedSHA       string
		expectedBranch    string
		expectedReadRoute string
	}{
		{
			name:              "updates_existing_file",
			executor:          &stubGitHubExecutor{contentResponse: `{"path":".gitignore","sha":"old-sha","content":"` + existingContent + `"}`},
			arguments:         []string{"--remote", "--pattern", "*.log", "--pattern", "*.tmp"},
			expectedOutput:    "Updating .gitignore in octo/cleaner\nAdded '*.tmp' to .gitignore\n",
			expectedContent:   "bin/\n*.log\n\n" + testHeaderConstant + "*.tmp\n",
			expectedSHA:       "old-sha",
			expectedReadRoute: testContentsEndpoint,
		},
		{
			name:              "creates_missing_file_on_branch",
			executor:          &stubGitHubExecutor{readFailure: testNotFoundStandardError},
			arguments:         []string{"--remote", "--branch", "dev", "--pattern", "*.tmp"},
			expectedOutput:    "Creating .gitignore in octo/cleaner\nAdded '*.tmp' to .gitignore\n",
			expectedContent:   testHeaderConstant + "*.tmp\n",
			expectedBranch:    "dev",
			expectedReadRoute: testContentsEndpoint + "?ref=dev",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			builder := gitignore.CommandBuilder{
				RepositoryProvider: func() dependencies.RepositoryContext {
					return dependencies.RepositoryContext{Repository: testRepositoryConstant, Token: "token"}
				},
				Executor: testCase.executor,
			}

			output, executionError := executeGitignoreCommand(subTest, builder, testCase.arguments...)
			require.NoError(subTest, executionError)
			require.Equal(subTest, testCase.expectedOutput, output)

			require.Len(subTest, testCase.executor.recordedDetails, 2)
			require.Equal(subTest, []string{"api", testCase.expectedReadRoute}, testCase.executor.recordedDetails[0].Arguments)

			writeDetails := testCase.executor.recordedDetails[1]
			require.Equal(subTest, testContentsEndpoint, writeDetails.Arguments[1])
			require.Equal(subTest, "PUT", writeDetails.Arguments[3])

			var payload struct {
				Message string `json:"message"`
				Content string `json:"content"`
				SHA     string `json:"sha"`
				Branch  string `json:"branch"`
			}
			require.NoError(subTest, json.Unmarshal(writeDetails.StandardInput, &payload))
			decodedContent, decodeError := base64.StdEncoding.DecodeString(payload.Content)
			require.NoError(subTest, decodeError)
			require.Equal(subTest, testCase.expectedContent, string(decodedContent))
			require.Equal(subTest, testCase.expectedSHA, payload.SHA)
			require.Equal(subTest, testCase.expectedBranch, payload.Branch)
			require.Equal(subTest, "Optimize .gitignore", payload.Message)
		})
	}
}

func TestGitignoreCommandRemoteUpToDate(testInstance *testing.T) {
	content := base64.StdEncoding.EncodeToString([]byte("*.tmp\n"))
	executor := &stubGitHubExecutor{contentResponse: `{"path":".gitignore","sha":"sha","content":"` + content + `"}`}
	builder := gitignore.CommandBuilder{
		RepositoryProvider: func() dependencies.RepositoryContext {
			return dependencies.RepositoryContext{Repository: testRepositoryConstant}
		},
		Executor: executor,
	}

	output, executionError := executeGitignoreCommand(testInstance, builder, "--remote", "--pattern", "*.tmp")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "octo/cleaner:.gitignore already contains every recommended pattern.\n", output)
	require.Len(testInstance, executor.recordedDetails, 1)
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	values := gitignore.DefaultConfigurationValues("tools.gitignore")
	require.Equal(testInstance, ".", values["tools.gitignore.root"])
	require.Equal(testInstance, gitignore.RecommendedPatterns(), values["tools.gitignore.patterns"])
	require.Equal(testInstance, false, values["tools.gitignore.remote"])
	require.Equal(testInstance, "", values["tools.gitignore.branch"])
	require.Equal(testInstance, "Optimize .gitignore", values["tools.gitignore.message"])
}
