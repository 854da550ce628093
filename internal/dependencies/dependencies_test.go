package dependencies_test

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/dependencies"
	"github.com/temirov/repo-cleaner/internal/execshell"
)

type recordingExecutor struct {
	details []execshell.CommandDetails
}

func (executor *recordingExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.details = append(executor.details, details)
	return execshell.ExecutionResult{StandardOutput: `{"full_name":"octo/cleaner","default_branch":"main"}`}, nil
}

func TestResolveFileSystem(testInstance *testing.T) {
	memoryFileSystem := afero.NewMemMapFs()
	require.Same(testInstance, memoryFileSystem, dependencies.ResolveFileSystem(memoryFileSystem))
	require.IsType(testInstance, &afero.OsFs{}, dependencies.ResolveFileSystem(nil))
}

func TestResolveGitHubClientPassesConfiguredToken(testInstance *testing.T) {
	executor := &recordingExecutor{}
	client, clientError := dependencies.ResolveGitHubClient(executor, zap.NewNop(), "configured-token")
	require.NoError(testInstance, clientError)

	metadata, metadataError := client.ResolveRepoMetadata(context.Background(), "octo/cleaner")
	require.NoError(testInstance, metadataError)
	require.Equal(testInstance, "main", metadata.DefaultBranch)
	require.Len(testInstance, executor.details, 1)
	require.Equal(testInstance, "configured-token", executor.details[0].EnvironmentVariables["GH_TOKEN"])
}

func TestResolveGitHubExecutorRequiresLogger(testInstance *testing.T) {
	_, executorError := dependencies.ResolveGitHubExecutor(nil, nil)
	require.ErrorIs(testInstance, executorError, execshell.ErrLoggerNotConfigured)
}

func TestResolveRepository(testInstance *testing.T) {
	configured, configuredError := dependencies.ResolveRepository("  octo/explicit ", "")
	require.NoError(testInstance, configuredError)
	require.Equal(testInstance, "octo/explicit", configured)

	repositoryPath := testInstance.TempDir()
	repository, initError := git.PlainInit(repositoryPath, false)
	require.NoError(testInstance, initError)
	_, remoteError := repository.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"https://github.com/octo/detected.git"}})
	require.NoError(testInstance, remoteError)

	detected, detectedError := dependencies.ResolveRepository("", repositoryPath)
	require.NoError(testInstance, detectedError)
	require.Equal(testInstance, "octo/detected", detected)

	_, missingError := dependencies.ResolveRepository("", testInstance.TempDir())
	require.ErrorIs(testInstance, missingError, dependencies.ErrRepositoryNotSpecified)
}

func TestResolveRepositoryContext(testInstance *testing.T) {
	require.Equal(testInstance, dependencies.RepositoryContext{}, dependencies.ResolveRepositoryContext(nil))

	provided := dependencies.RepositoryContext{Repository: "octo/cleaner", Token: "secret"}
	require.Equal(testInstance, provided, dependencies.ResolveRepositoryContext(func() dependencies.RepositoryContext { return provided }))
}
