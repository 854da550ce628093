package gitrepo

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
)

const (
	// DefaultRemoteName is the remote consulted when none is configured.
	DefaultRemoteName                   = "origin"
	openRepositoryErrorTemplateConstant = "open repository %s: %w"
	readRemoteErrorTemplateConstant     = "read remote %s: %w"
	remoteWithoutURLTemplateConstant    = "remote %s has no url"
)

// ErrNotRepository indicates the directory is not inside a Git working tree.
var ErrNotRepository = git.ErrRepositoryNotExists

// ResolveGitHubRepository reads the named remote of the repository enclosing directory and returns its owner/name.
func ResolveGitHubRepository(directory string, remoteName string) (string, error) {
	resolvedRemoteName := strings.TrimSpace(remoteName)
	if len(resolvedRemoteName) == 0 {
		resolvedRemoteName = DefaultRemoteName
	}

	repository, openError := git.PlainOpenWithOptions(directory, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return "", fmt.Errorf(openRepositoryErrorTemplateConstant, directory, openError)
	}

	remote, remoteError := repository.Remote(resolvedRemoteName)
	if remoteError != nil {
		return "", fmt.Errorf(readRemoteErrorTemplateConstant, resolvedRemoteName, remoteError)
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return "", fmt.Errorf(remoteWithoutURLTemplateConstant, resolvedRemoteName)
	}

	parsedRemote, parseError := ParseRemoteURL(remoteURLs[0])
	if parseError != nil {
		return "", parseError
	}
	return parsedRemote.FullName(), nil
}
