package report

import (
	"github.com/temirov/repo-cleaner/internal/scanner"
)

// FileEntry is one member of a duplicate group as it appears in a report.
type FileEntry struct {
	Path   string     `json:"path" yaml:"path"`
	Status FileStatus `json:"status" yaml:"status"`
	Error  string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// GroupEntry is a duplicate group as it appears in a report.
type GroupEntry struct {
	Digest    scanner.Digest `json:"digest" yaml:"digest"`
	SizeBytes int64          `json:"size_bytes" yaml:"size_bytes"`
	Files     []FileEntry    `json:"files" yaml:"files"`
}

// LargeFileEntry is a file above the size threshold.
type LargeFileEntry struct {
	Path      string `json:"path" yaml:"path"`
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"`
}

// HistoryBlob is a large blob found in the commit history.
type HistoryBlob struct {
	Path      string `json:"path" yaml:"path"`
	BlobHash  string `json:"blob_hash" yaml:"blob_hash"`
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"`
}

// SkippedEntry is a file or directory the scan could not read.
type SkippedEntry struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Summary aggregates report counters.
type Summary struct {
	FilesScanned    int `json:"files_scanned" yaml:"files_scanned"`
	DuplicateGroups int `json:"duplicate_groups" yaml:"duplicate_groups"`
	RedundantFiles  int `json:"redundant_files" yaml:"redundant_files"`
	DeletedFiles    int `json:"deleted_files" yaml:"deleted_files"`
	FailedDeletions int `json:"failed_deletions" yaml:"failed_deletions"`
	LargeFiles      int `json:"large_files" yaml:"large_files"`
	SkippedEntries  int `json:"skipped_entries" yaml:"skipped_entries"`
}

// Report is the rendered outcome of a files run.
type Report struct {
	Root              string           `json:"root" yaml:"root"`
	Algorithm         string           `json:"algorithm" yaml:"algorithm"`
	ThresholdBytes    int64            `json:"threshold_bytes" yaml:"threshold_bytes"`
	DeletionRequested bool             `json:"deletion_requested" yaml:"deletion_requested"`
	Summary           Summary          `json:"summary" yaml:"summary"`
	DuplicateGroups   []GroupEntry     `json:"duplicate_groups" yaml:"duplicate_groups"`
	LargeFiles        []LargeFileEntry `json:"large_files" yaml:"large_files"`
	HistoryScanned    bool             `json:"history_scanned" yaml:"history_scanned"`
	HistoryBlobs      []HistoryBlob    `json:"history_blobs,omitempty" yaml:"history_blobs,omitempty"`
	Skipped           []SkippedEntry   `json:"skipped" yaml:"skipped"`
}

// Input collects everything a report is built from.
type Input struct {
	Result            scanner.ScanResult
	ThresholdBytes    int64
	Groups            []DuplicateGroup
	LargeFiles        []scanner.FileRecord
	DeletionRequested bool
	Outcomes          []DeletionOutcome
	HistoryScanned    bool
	HistoryBlobs      []HistoryBlob
}

// Build assembles a Report. Without deletion, redundant members are marked as duplicates.
func Build(input Input) Report {
	sizeByPath := make(map[string]int64, len(input.Result.Records))
	for _, record := range input.Result.Records {
		sizeByPath[record.Path] = record.SizeBytes
	}

	outcomeByPath := make(map[string]DeletionOutcome, len(input.Outcomes))
	for _, outcome := range input.Outcomes {
		outcomeByPath[outcome.Path] = outcome
	}

	builtReport := Report{
		Root:              input.Result.Root,
		Algorithm:         string(input.Result.Algorithm),
		ThresholdBytes:    input.ThresholdBytes,
		DeletionRequested: input.DeletionRequested,
		DuplicateGroups:   make([]GroupEntry, 0, len(input.Groups)),
		LargeFiles:        make([]LargeFileEntry, 0, len(input.LargeFiles)),
		HistoryScanned:    input.HistoryScanned,
		HistoryBlobs:      input.HistoryBlobs,
		Skipped:           make([]SkippedEntry, 0, len(input.Result.Skipped)),
	}

	for _, group := range input.Groups {
		groupEntry := GroupEntry{Digest: group.Digest, SizeBytes: sizeByPath[group.Retained()]}
		groupEntry.Files = append(groupEntry.Files, FileEntry{Path: group.Retained(), Status: FileStatusRetained})
		for _, redundantPath := range group.Redundant() {
			builtReport.Summary.RedundantFiles++
			fileEntry := FileEntry{Path: redundantPath, Status: FileStatusDuplicate}
			if outcome, found := outcomeByPath[redundantPath]; found {
				fileEntry.Status = outcome.Status
				if outcome.Failure != nil {
					fileEntry.Error = outcome.Failure.Error()
				}
			}
			switch fileEntry.Status {
			case FileStatusDeleted:
				builtReport.Summary.DeletedFiles++
			case FileStatusFailed:
				builtReport.Summary.FailedDeletions++
			}
			groupEntry.Files = append(groupEntry.Files, fileEntry)
		}
		builtReport.DuplicateGroups = append(builtReport.DuplicateGroups, groupEntry)
	}

	for _, largeFile := range input.LargeFiles {
		builtReport.LargeFiles = append(builtReport.LargeFiles, LargeFileEntry{Path: largeFile.Path, SizeBytes: largeFile.SizeBytes})
	}

	for _, skippedEntry := range input.Result.Skipped {
		reason := ""
		if skippedEntry.Cause != nil {
			reason = skippedEntry.Cause.Error()
		}
		builtReport.Skipped = append(builtReport.Skipped, SkippedEntry{Path: skippedEntry.Path, Reason: reason})
	}

	builtReport.Summary.FilesScanned = len(input.Result.Records)
	builtReport.Summary.DuplicateGroups = len(builtReport.DuplicateGroups)
	builtReport.Summary.LargeFiles = len(builtReport.LargeFiles)
	builtReport.Summary.SkippedEntries = len(builtReport.Skipped)
	return builtReport
}
