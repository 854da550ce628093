package report

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	fileDeleteErrorTemplateConstant         = "delete %s: %s"
	deleterFileSystemMissingMessageConstant = "deleter file system not configured"
	deleterLoggerMissingMessageConstant     = "deleter logger not configured"
	duplicateDeletedMessageConstant         = "Deleted duplicate file"
	duplicateDeletionFailedMessageConstant  = "Failed to delete duplicate file"
	logFieldPathConstant                    = "path"
	logFieldRetainedConstant                = "retained"
)

// FileStatus describes what happened to a member of a duplicate group.
type FileStatus string

// File status values.
const (
	FileStatusRetained  FileStatus = FileStatus("retained")
	FileStatusDuplicate FileStatus = FileStatus("duplicate")
	FileStatusDeleted   FileStatus = FileStatus("deleted")
	FileStatusFailed    FileStatus = FileStatus("failed")
)

var (
	// ErrDeleterFileSystemNotConfigured indicates the deleter was constructed without a file system.
	ErrDeleterFileSystemNotConfigured = errors.New(deleterFileSystemMissingMessageConstant)
	// ErrDeleterLoggerNotConfigured indicates the deleter was constructed without a logger.
	ErrDeleterLoggerNotConfigured     = errors.New(deleterLoggerMissingMessageConstant)
)

// FileDeleteError reports a duplicate that could not be removed.
type FileDeleteError struct {
	Path  string
	Cause error
}

// Error describes the deletion failure.
func (deleteError FileDeleteError) Error() string {
	return fmt.Sprintf(fileDeleteErrorTemplateConstant, deleteError.Path, deleteError.Cause)
}

// Unwrap exposes the underlying cause.
func (deleteError FileDeleteError) Unwrap() error {
	return deleteError.Cause
}

// DeletionOutcome records the result of removing one redundant duplicate.
type DeletionOutcome struct {
	Path    string
	Status  FileStatus
	Failure error
}

// Deleter removes redundant duplicates beneath a root directory.
type Deleter struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewDeleter constructs a Deleter.
func NewDeleter(fileSystem afero.Fs, logger *zap.Logger) (*Deleter, error) {
	if fileSystem == nil {
		return nil, ErrDeleterFileSystemNotConfigured
	}
	if logger == nil {
		return nil, ErrDeleterLoggerNotConfigured
	}
	return &Deleter{fileSystem: fileSystem, logger: logger}, nil
}

// RemoveDuplicates keeps the first path of every group and removes the rest. A failed removal is
// recorded as a FileDeleteError and the remaining removals still run.
func (deleter *Deleter) RemoveDuplicates(root string, groups []DuplicateGroup) []DeletionOutcome {
	outcomes := make([]DeletionOutcome, 0)
	for _, group := range groups {
		for _, redundantPath := range group.Redundant() {
			absolutePath := filepath.Join(root, filepath.FromSlash(redundantPath))
			if removeError := deleter.fileSystem.Remove(absolutePath); removeError != nil {
				deleteError := FileDeleteError{Path: redundantPath, Cause: removeError}
				deleter.logger.Warn(duplicateDeletionFailedMessageConstant, zap.String(logFieldPathConstant, redundantPath), zap.Error(removeError))
				outcomes = append(outcomes, DeletionOutcome{Path: redundantPath, Status: FileStatusFailed, Failure: deleteError})
				continue
			}
			deleter.logger.Info(duplicateDeletedMessageConstant, zap.String(logFieldPathConstant, redundantPath), zap.String(logFieldRetainedConstant, group.Retained()))
			outcomes = append(outcomes, DeletionOutcome{Path: redundantPath, Status: FileStatusDeleted})
		}
	}
	return outcomes
}
