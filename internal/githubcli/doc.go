// Package githubcli wraps the GitHub CLI REST access used by repo-cleaner.
//
// Every operation is a gh api call issued through execshell, so branch, tag,
// pull request, repository and contents requests can be stubbed in tests.
package githubcli
