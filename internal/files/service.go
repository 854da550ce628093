package files

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/repo-cleaner/internal/history"
	"github.com/temirov/repo-cleaner/internal/report"
	"github.com/temirov/repo-cleaner/internal/scanner"
)

const (
	loggerNotConfiguredMessageConstant      = "files service logger not configured"
	fileScannerNotConfiguredMessageConstant = "files service scanner not configured"
	duplicateRemoverNotConfiguredMessage    = "files service duplicate remover not configured"
	outputNotConfiguredMessageConstant      = "files service output not configured"
	historyUnavailableMessageConstant       = "Skipping history scan; root is not inside a git repository"
	filesReportCompletedMessageConstant     = "Files report completed"
	logFieldRootConstant                    = "root"
	logFieldFilesConstant                   = "files"
	logFieldDuplicateGroupsConstant         = "duplicate_groups"
	logFieldLargeFilesConstant              = "large_files"
	logFieldDeletedConstant                 = "deleted"
	logFieldFailedConstant                  = "failed"
)

var (
	// ErrLoggerNotConfigured indicates the service was constructed without a logger.
	ErrLoggerNotConfigured           = errors.New(loggerNotConfiguredMessageConstant)
	// ErrFileScannerNotConfigured indicates the service was constructed without a scanner.
	ErrFileScannerNotConfigured      = errors.New(fileScannerNotConfiguredMessageConstant)
	// ErrDuplicateRemoverNotConfigured indicates the service was constructed without a deleter.
	ErrDuplicateRemoverNotConfigured = errors.New(duplicateRemoverNotConfiguredMessage)
	// ErrOutputNotConfigured indicates the service was constructed without an output writer.
	ErrOutputNotConfigured           = errors.New(outputNotConfiguredMessageConstant)
)

// FileScanner produces the records of a local tree.
type FileScanner interface {
	Scan(executionContext context.Context, options scanner.Options) (scanner.ScanResult, error)
}

// DuplicateRemover deletes the redundant members of duplicate groups.
type DuplicateRemover interface {
	RemoveDuplicates(root string, groups []report.DuplicateGroup) []report.DeletionOutcome
}

// HistoryScanner finds large blobs in the commit history of a repository.
type HistoryScanner interface {
	FindLargeBlobs(executionContext context.Context, repositoryPath string, thresholdBytes int64) ([]history.LargeBlob, error)
}

// Options configures one files run.
type Options struct {
	Root              string
	ThresholdBytes    int64
	DeleteDuplicates  bool
	Exclusions        []string
	Algorithm         scanner.Algorithm
	Workers           int
	MaxFilesPerSecond float64
	Format            report.Format
	ScanHistory       bool
	Progress          scanner.ProgressTracker
}

// Service coordinates scanning, reporting and duplicate deletion.
type Service struct {
	logger           *zap.Logger
	fileScanner      FileScanner
	duplicateRemover DuplicateRemover
	historyScanner   HistoryScanner
	output           io.Writer
}

// NewService constructs a Service. historyScanner may be nil when history scans are never requested.
func NewService(logger *zap.Logger, fileScanner FileScanner, duplicateRemover DuplicateRemover, historyScanner HistoryScanner, output io.Writer) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if fileScanner == nil {
		return nil, ErrFileScannerNotConfigured
	}
	if duplicateRemover == nil {
		return nil, ErrDuplicateRemoverNotConfigured
	}
	if output == nil {
		return nil, ErrOutputNotConfigured
	}
	return &Service{
		logger:           logger,
		fileScanner:      fileScanner,
		duplicateRemover: duplicateRemover,
		historyScanner:   historyScanner,
		output:           output,
	}, nil
}

// Run scans the root, builds the report, deletes duplicates when requested and renders the report.
func (service *Service) Run(executionContext context.Context, options Options) (report.Report, error) {
	scanResult, scanError := service.fileScanner.Scan(executionContext, scanner.Options{
		Root:              options.Root,
		Exclusions:        options.Exclusions,
		Algorithm:         options.Algorithm,
		Workers:           options.Workers,
		MaxFilesPerSecond: options.MaxFilesPerSecond,
		Progress:          options.Progress,
	})
	if scanError != nil {
		return report.Report{}, scanError
	}

	groups := report.FindDuplicates(scanResult.Records)
	largeFiles := report.FindLargeFiles(scanResult.Records, options.ThresholdBytes)

	var outcomes []report.DeletionOutcome
	if options.DeleteDuplicates {
		outcomes = service.duplicateRemover.RemoveDuplicates(scanResult.Root, groups)
	}

	historyScanned, historyBlobs, historyError := service.scanHistory(executionContext, scanResult.Root, options)
	if historyError != nil {
		return report.Report{}, historyError
	}

	builtReport := report.Build(report.Input{
		Result:            scanResult,
		ThresholdBytes:    options.ThresholdBytes,
		Groups:            groups,
		LargeFiles:        largeFiles,
		DeletionRequested: options.DeleteDuplicates,
		Outcomes:          outcomes,
		HistoryScanned:    historyScanned,
		HistoryBlobs:      historyBlobs,
	})

	service.logger.Info(filesReportCompletedMessageConstant,
		zap.String(logFieldRootConstant, builtReport.Root),
		zap.Int(logFieldFilesConstant, builtReport.Summary.FilesScanned),
		zap.Int(logFieldDuplicateGroupsConstant, builtReport.Summary.DuplicateGroups),
		zap.Int(logFieldLargeFilesConstant, builtReport.Summary.LargeFiles),
		zap.Int(logFieldDeletedConstant, builtReport.Summary.DeletedFiles),
		zap.Int(logFieldFailedConstant, builtReport.Summary.FailedDeletions),
	)

	if renderError := report.Render(service.output, builtReport, options.Format); renderError != nil {
		return report.Report{}, renderError
	}
	return builtReport, nil
}

func (service *Service) scanHistory(executionContext context.Context, root string, options Options) (bool, []report.HistoryBlob, error) {
	if !options.ScanHistory || service.historyScanner == nil {
		return false, nil, nil
	}

	largeBlobs, historyError := service.historyScanner.FindLargeBlobs(executionContext, root, options.ThresholdBytes)
	if errors.Is(historyError, history.ErrNotRepository) {
		service.logger.Warn(historyUnavailableMessageConstant, zap.String(logFieldRootConstant, root))
		return false, nil, nil
	}
	if historyError != nil {
		return false, nil, historyError
	}

	historyBlobs := make([]report.HistoryBlob, 0, len(largeBlobs))
	for _, largeBlob := range largeBlobs {
		historyBlobs = append(historyBlobs, report.HistoryBlob{Path: largeBlob.Path, BlobHash: largeBlob.BlobHash, SizeBytes: largeBlob.SizeBytes})
	}
	return true, historyBlobs, nil
}
