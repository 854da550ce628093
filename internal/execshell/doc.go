// Package execshell runs external command-line tools for repo-cleaner.
//
// ShellExecutor logs the lifecycle of each invocation with humanized
// messages and converts non-zero exit codes into CommandFailedError.
// OSCommandRunner is the production CommandRunner; tests substitute
// recording runners.
package execshell
