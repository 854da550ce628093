// Package dependencies resolves the collaborators shared by repo-cleaner commands, substituting production defaults for anything a caller left unset.
package dependencies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/execshell"
	"github.com/temirov/repo-cleaner/internal/githubauth"
	"github.com/temirov/repo-cleaner/internal/githubcli"
	"github.com/temirov/repo-cleaner/internal/gitrepo"
)

const (
	repositoryNotSpecifiedMessageConstant = "repository not specified; pass --repo owner/name or run inside a checkout with an origin remote"
	repositoryDetectionTemplateConstant   = "%w: %w"
)

// RepositoryContext identifies the remote repository and credentials a GitHub command operates on.
type RepositoryContext struct {
	Repository string `mapstructure:"repository"`
	Token      string `mapstructure:"token"`
}

// RepositoryContextProvider supplies the repository context resolved from flags and configuration.
type RepositoryContextProvider func() RepositoryContext

// ResolveRepositoryContext invokes provider, tolerating a nil provider.
func ResolveRepositoryContext(provider RepositoryContextProvider) RepositoryContext {
	if provider == nil {
		return RepositoryContext{}
	}
	return provider()
}

// ErrRepositoryNotSpecified indicates neither --repo nor the local checkout identified a GitHub repository.
var ErrRepositoryNotSpecified = errors.New(repositoryNotSpecifiedMessageConstant)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveGitHubExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitHubExecutor(existing githubcli.GitHubCommandExecutor, logger *zap.Logger) (githubcli.GitHubCommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveGitHubClient builds a GitHub CLI client authenticated with the configured token or the first token found in the environment.
func ResolveGitHubClient(existing githubcli.GitHubCommandExecutor, logger *zap.Logger, configuredToken string) (*githubcli.Client, error) {
	executor, executorError := ResolveGitHubExecutor(existing, logger)
	if executorError != nil {
		return nil, executorError
	}

	token, _ := githubauth.ResolveToken(configuredToken, nil)
	return githubcli.NewClient(executor, token)
}

// ResolveRepository returns the configured owner/name or, when blank, the origin remote of the checkout enclosing workingDirectory.
func ResolveRepository(configuredRepository string, workingDirectory string) (string, error) {
	trimmedRepository := strings.TrimSpace(configuredRepository)
	if len(trimmedRepository) > 0 {
		return trimmedRepository, nil
	}

	detectedRepository, detectionError := gitrepo.ResolveGitHubRepository(workingDirectory, gitrepo.DefaultRemoteName)
	if detectionError != nil {
		return "", fmt.Errorf(repositoryDetectionTemplateConstant, ErrRepositoryNotSpecified, detectionError)
	}
	return detectedRepository, nil
}
