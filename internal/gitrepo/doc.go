// Package gitrepo identifies the GitHub repository behind a local checkout.
//
// ParseRemoteURL understands ssh, scp-style and https remotes, and
// ResolveGitHubRepository reads a remote from the local .git configuration
// through go-git so commands can default --repo to the current checkout.
package gitrepo
