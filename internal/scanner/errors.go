package scanner

import (
	"errors"
	"fmt"
)

const (
	rootNotFoundMessageConstant            = "scan root not found"
	rootPermissionDeniedMessageConstant    = "scan root permission denied"
	rootNotDirectoryMessageConstant        = "scan root is not a directory"
	unsupportedAlgorithmMessageConstant    = "unsupported digest algorithm"
	invalidExclusionMessageConstant        = "invalid exclusion pattern"
	fileSystemNotConfiguredMessageConstant = "scanner file system not configured"
	loggerNotConfiguredMessageConstant     = "scanner logger not configured"
	rootAccessErrorTemplateConstant        = "%s: %s"
	fileReadErrorTemplateConstant          = "read %s: %s"
	wrappedSentinelErrorTemplateConstant   = "%w: %w"
)

var (
	// ErrRootNotFound indicates the scan root does not exist.
	ErrRootNotFound            = errors.New(rootNotFoundMessageConstant)
	// ErrRootPermissionDenied indicates the scan root exists but cannot be read.
	ErrRootPermissionDenied    = errors.New(rootPermissionDeniedMessageConstant)
	// ErrRootNotDirectory indicates the scan root is not a directory.
	ErrRootNotDirectory        = errors.New(rootNotDirectoryMessageConstant)
	// ErrUnsupportedAlgorithm indicates an unknown digest algorithm was requested.
	ErrUnsupportedAlgorithm    = errors.New(unsupportedAlgorithmMessageConstant)
	// ErrInvalidExclusionPattern indicates an exclusion pattern failed to parse.
	ErrInvalidExclusionPattern = errors.New(invalidExclusionMessageConstant)
	// ErrFileSystemNotConfigured indicates the scanner was constructed without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates the scanner was constructed without a logger.
	ErrLoggerNotConfigured     = errors.New(loggerNotConfiguredMessageConstant)
)

// RootAccessError reports a scan root that cannot be used. Cause wraps one of
// ErrRootNotFound, ErrRootPermissionDenied or ErrRootNotDirectory.
type RootAccessError struct {
	Root  string
	Cause error
}

// Error describes the root failure.
func (accessError RootAccessError) Error() string {
	return fmt.Sprintf(rootAccessErrorTemplateConstant, accessError.Root, accessError.Cause)
}

// Unwrap exposes the underlying cause.
func (accessError RootAccessError) Unwrap() error {
	return accessError.Cause
}

// FileReadError records a file or directory skipped during a scan.
type FileReadError struct {
	Path  string
	Cause error
}

// Error describes the read failure.
func (readError FileReadError) Error() string {
	return fmt.Sprintf(fileReadErrorTemplateConstant, readError.Path, readError.Cause)
}

// Unwrap exposes the underlying cause.
func (readError FileReadError) Unwrap() error {
	return readError.Cause
}

func newRootAccessError(root string, sentinel error, cause error) RootAccessError {
	if cause == nil {
		return RootAccessError{Root: root, Cause: sentinel}
	}
	return RootAccessError{Root: root, Cause: fmt.Errorf(wrappedSentinelErrorTemplateConstant, sentinel, cause)}
}
