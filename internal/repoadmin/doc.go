// Package repoadmin provides one-shot administrative commands against a GitHub repository:
// closing pull requests, archiving the repository and deleting files through the contents API.
package repoadmin
