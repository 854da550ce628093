// Package gitignore appends recommended ignore patterns that a .gitignore file lacks,
// either in a local checkout or on a GitHub branch through the contents API.
package gitignore
