package scanner

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	skippedEntryMessageConstant  = "Skipping unreadable entry"
	scanStartedMessageConstant   = "Scanning files"
	scanCompletedMessageConstant = "Scan completed"
	logFieldRootConstant         = "root"
	logFieldPathConstant         = "path"
	logFieldFilesConstant        = "files"
	logFieldSkippedConstant      = "skipped"
	logFieldWorkersConstant      = "workers"
	logFieldAlgorithmConstant    = "algorithm"
	rootRelativePathConstant     = "."
	defaultWorkerCountConstant   = 1
	rateLimiterBurstConstant     = 1
	maximumSymlinkDepthConstant  = 40
)

// FileRecord describes one regular file found during a scan.
type FileRecord struct {
	Path      string `json:"path" yaml:"path"`
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"`
	Digest    Digest `json:"digest" yaml:"digest"`
}

// ScanResult holds the records of a scan ordered by path together with the entries that were skipped.
type ScanResult struct {
	Root      string
	Algorithm Algorithm
	Records   []FileRecord
	Skipped   []FileReadError
}

// ProgressTracker receives hashing progress. github.com/schollz/progressbar/v3 satisfies it.
type ProgressTracker interface {
	ChangeMax(newMax int)
	Add(increment int) error
	Finish() error
}

// Options configures a scan.
type Options struct {
	Root              string
	Exclusions        []string
	Algorithm         Algorithm
	Workers           int
	MaxFilesPerSecond float64
	Progress          ProgressTracker
}

// Scanner walks a file system and hashes regular files.
type Scanner struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

type scanCandidate struct {
	relativePath string
	absolutePath string
}

type hashSlot struct {
	record  FileRecord
	failure error
}

// NewScanner constructs a Scanner over the provided file system.
func NewScanner(fileSystem afero.Fs, logger *zap.Logger) (*Scanner, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return &Scanner{fileSystem: fileSystem, logger: logger}, nil
}

// Scan produces a ScanResult for options.Root. Root failures abort with RootAccessError; failures on
// individual entries are collected in ScanResult.Skipped. A cancelled context discards partial results.
func (scanner *Scanner) Scan(executionContext context.Context, options Options) (ScanResult, error) {
	algorithm, algorithmError := ParseAlgorithm(string(options.Algorithm))
	if algorithmError != nil {
		return ScanResult{}, algorithmError
	}

	exclusions := options.Exclusions
	if exclusions == nil {
		exclusions = DefaultExclusions()
	}
	matcher, matcherError := NewExclusionMatcher(exclusions)
	if matcherError != nil {
		return ScanResult{}, matcherError
	}

	root := filepath.Clean(options.Root)
	if rootError := scanner.verifyRoot(root); rootError != nil {
		return ScanResult{}, rootError
	}

	workerCount := options.Workers
	if workerCount < defaultWorkerCountConstant {
		workerCount = defaultWorkerCountConstant
	}

	scanner.logger.Debug(scanStartedMessageConstant,
		zap.String(logFieldRootConstant, root),
		zap.String(logFieldAlgorithmConstant, string(algorithm)),
		zap.Int(logFieldWorkersConstant, workerCount),
	)

	candidates, skipped, walkError := scanner.collectCandidates(executionContext, scanner.resolveWalkRoot(root), matcher)
	if walkError != nil {
		return ScanResult{}, walkError
	}

	if options.Progress != nil {
		options.Progress.ChangeMax(len(candidates))
	}

	slots, hashError := scanner.hashCandidates(executionContext, candidates, algorithm, workerCount, options)
	if hashError != nil {
		return ScanResult{}, hashError
	}

	if options.Progress != nil {
		_ = options.Progress.Finish()
	}

	records := make([]FileRecord, 0, len(slots))
	for slotIndex, slot := range slots {
		if slot.failure != nil {
			skipped = append(skipped, scanner.recordSkip(candidates[slotIndex].relativePath, slot.failure))
			continue
		}
		records = append(records, slot.record)
	}

	sort.Slice(records, func(leftIndex int, rightIndex int) bool {
		return records[leftIndex].Path < records[rightIndex].Path
	})
	sort.SliceStable(skipped, func(leftIndex int, rightIndex int) bool {
		return skipped[leftIndex].Path < skipped[rightIndex].Path
	})

	scanner.logger.Debug(scanCompletedMessageConstant,
		zap.String(logFieldRootConstant, root),
		zap.Int(logFieldFilesConstant, len(records)),
		zap.Int(logFieldSkippedConstant, len(skipped)),
	)

	return ScanResult{Root: root, Algorithm: algorithm, Records: records, Skipped: skipped}, nil
}

func (scanner *Scanner) verifyRoot(root string) error {
	rootInfo, statError := scanner.fileSystem.Stat(root)
	if statError != nil {
		return classifyRootError(root, statError)
	}
	if !rootInfo.IsDir() {
		return newRootAccessError(root, ErrRootNotDirectory, nil)
	}

	rootDirectory, openError := scanner.fileSystem.Open(root)
	if openError != nil {
		return classifyRootError(root, openError)
	}
	defer rootDirectory.Close()

	if _, readError := rootDirectory.Readdirnames(1); readError != nil && !errors.Is(readError, io.EOF) {
		return classifyRootError(root, readError)
	}
	return nil
}

// resolveWalkRoot follows symbolic links on the root itself so the walk descends into the target directory.
func (scanner *Scanner) resolveWalkRoot(root string) string {
	lstater, supportsLstat := scanner.fileSystem.(afero.Lstater)
	linkReader, supportsReadlink := scanner.fileSystem.(afero.LinkReader)
	if !supportsLstat || !supportsReadlink {
		return root
	}

	currentPath := root
	for depth := 0; depth < maximumSymlinkDepthConstant; depth++ {
		info, lstatCalled, lstatError := lstater.LstatIfPossible(currentPath)
		if lstatError != nil || !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			return currentPath
		}
		linkTarget, readlinkError := linkReader.ReadlinkIfPossible(currentPath)
		if readlinkError != nil {
			return currentPath
		}
		if !filepath.IsAbs(linkTarget) {
			linkTarget = filepath.Join(filepath.Dir(currentPath), linkTarget)
		}
		currentPath = filepath.Clean(linkTarget)
	}
	return currentPath
}

func classifyRootError(root string, cause error) error {
	if errors.Is(cause, fs.ErrNotExist) {
		return newRootAccessError(root, ErrRootNotFound, cause)
	}
	return newRootAccessError(root, ErrRootPermissionDenied, cause)
}

// collectCandidates walks the tree sequentially and returns the regular files to hash.
func (scanner *Scanner) collectCandidates(executionContext context.Context, root string, matcher *ExclusionMatcher) ([]scanCandidate, []FileReadError, error) {
	candidates := make([]scanCandidate, 0)
	skipped := make([]FileReadError, 0)

	walkError := afero.Walk(scanner.fileSystem, root, func(currentPath string, info os.FileInfo, visitError error) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		relativePath, relativeError := filepath.Rel(root, currentPath)
		if relativeError != nil {
			return relativeError
		}
		relativePath = filepath.ToSlash(relativePath)

		if visitError != nil {
			if relativePath == rootRelativePathConstant {
				return classifyRootError(root, visitError)
			}
			skipped = append(skipped, scanner.recordSkip(relativePath, visitError))
			return nil
		}

		if relativePath == rootRelativePathConstant {
			return nil
		}

		if matcher.Matches(relativePath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		candidates = append(candidates, scanCandidate{relativePath: relativePath, absolutePath: currentPath})
		return nil
	})
	if walkError != nil {
		return nil, nil, walkError
	}
	return candidates, skipped, nil
}

// hashCandidates digests every candidate on a bounded worker pool; each worker writes only its own slot.
func (scanner *Scanner) hashCandidates(executionContext context.Context, candidates []scanCandidate, algorithm Algorithm, workerCount int, options Options) ([]hashSlot, error) {
	slots := make([]hashSlot, len(candidates))

	var limiter *rate.Limiter
	if options.MaxFilesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.MaxFilesPerSecond), rateLimiterBurstConstant)
	}

	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(workerCount)

	for candidateIndex := range candidates {
		if groupContext.Err() != nil {
			break
		}
		group.Go(func() error {
			if limiter != nil {
				if waitError := limiter.Wait(groupContext); waitError != nil {
					return waitError
				}
			}
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}

			slots[candidateIndex] = scanner.hashFile(candidates[candidateIndex], algorithm)
			if options.Progress != nil {
				_ = options.Progress.Add(1)
			}
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}
	return slots, nil
}

func (scanner *Scanner) hashFile(candidate scanCandidate, algorithm Algorithm) hashSlot {
	file, openError := scanner.fileSystem.Open(candidate.absolutePath)
	if openError != nil {
		return hashSlot{failure: openError}
	}
	defer file.Close()

	digest, sizeBytes, digestError := ComputeDigest(file, algorithm)
	if digestError != nil {
		return hashSlot{failure: digestError}
	}
	return hashSlot{record: FileRecord{Path: candidate.relativePath, SizeBytes: sizeBytes, Digest: digest}}
}

func (scanner *Scanner) recordSkip(relativePath string, cause error) FileReadError {
	scanner.logger.Warn(skippedEntryMessageConstant, zap.String(logFieldPathConstant, relativePath), zap.Error(cause))
	return FileReadError{Path: relativePath, Cause: cause}
}
