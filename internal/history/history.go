// Package history finds oversized blobs anywhere in a local repository's commit history.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

const (
	notRepositoryMessageConstant       = "not a git repository"
	loggerNotConfiguredMessageConstant = "history logger not configured"
	repositoryErrorTemplateConstant    = "%w: %s"
	historyOperationTemplateConstant   = "%s: %w"
	openRepositoryOperationConstant    = "open repository"
	readLogOperationConstant           = "read commit log"
	readTreeOperationConstant          = "read commit tree"
	historyScannedMessageConstant      = "Scanned history for large blobs"
	logFieldRepositoryConstant         = "repository"
	logFieldCommitsConstant            = "commits"
	logFieldBlobsConstant              = "blobs"
)

var (
	// ErrNotRepository indicates the path is not inside a git repository.
	ErrNotRepository       = errors.New(notRepositoryMessageConstant)
	// ErrLoggerNotConfigured indicates the scanner was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
)

// LargeBlob is a distinct blob above the size threshold together with the first path and commit it was seen at.
type LargeBlob struct {
	Path       string
	BlobHash   string
	CommitHash string
	SizeBytes  int64
}

// BlobScanner walks every commit reachable from any reference.
type BlobScanner struct {
	logger *zap.Logger
}

// NewBlobScanner constructs a BlobScanner.
func NewBlobScanner(logger *zap.Logger) (*BlobScanner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return &BlobScanner{logger: logger}, nil
}

// FindLargeBlobs reports each blob larger than thresholdBytes once, largest first and ties by path.
func (blobScanner *BlobScanner) FindLargeBlobs(executionContext context.Context, repositoryPath string, thresholdBytes int64) ([]LargeBlob, error) {
	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf(repositoryErrorTemplateConstant, ErrNotRepository, repositoryPath)
		}
		return nil, fmt.Errorf(historyOperationTemplateConstant, openRepositoryOperationConstant, openError)
	}

	commitIterator, logError := repository.Log(&git.LogOptions{All: true})
	if logError != nil {
		if errors.Is(logError, plumbing.ErrReferenceNotFound) {
			return []LargeBlob{}, nil
		}
		return nil, fmt.Errorf(historyOperationTemplateConstant, readLogOperationConstant, logError)
	}
	defer commitIterator.Close()

	blobsByHash := make(map[plumbing.Hash]LargeBlob)
	visitedTrees := make(map[plumbing.Hash]struct{})
	commitCount := 0

	iterationError := commitIterator.ForEach(func(commit *object.Commit) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		commitCount++
		if _, visited := visitedTrees[commit.TreeHash]; visited {
			return nil
		}
		visitedTrees[commit.TreeHash] = struct{}{}

		tree, treeError := commit.Tree()
		if treeError != nil {
			return fmt.Errorf(historyOperationTemplateConstant, readTreeOperationConstant, treeError)
		}
		return tree.Files().ForEach(func(file *object.File) error {
			if file.Size <= thresholdBytes {
				return nil
			}
			if _, seen := blobsByHash[file.Hash]; seen {
				return nil
			}
			blobsByHash[file.Hash] = LargeBlob{
				Path:       file.Name,
				BlobHash:   file.Hash.String(),
				CommitHash: commit.Hash.String(),
				SizeBytes:  file.Size,
			}
			return nil
		})
	})
	if iterationError != nil {
		return nil, iterationError
	}

	largeBlobs := make([]LargeBlob, 0, len(blobsByHash))
	for _, blob := range blobsByHash {
		largeBlobs = append(largeBlobs, blob)
	}
	sort.Slice(largeBlobs, func(leftIndex int, rightIndex int) bool {
		if largeBlobs[leftIndex].SizeBytes != largeBlobs[rightIndex].SizeBytes {
			return largeBlobs[leftIndex].SizeBytes > largeBlobs[rightIndex].SizeBytes
		}
		if largeBlobs[leftIndex].Path != largeBlobs[rightIndex].Path {
			return largeBlobs[leftIndex].Path < largeBlobs[rightIndex].Path
		}
		return largeBlobs[leftIndex].BlobHash < largeBlobs[rightIndex].BlobHash
	})

	blobScanner.logger.Debug(historyScannedMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.Int(logFieldCommitsConstant, commitCount),
		zap.Int(logFieldBlobsConstant, len(largeBlobs)),
	)
	return largeBlobs, nil
}
