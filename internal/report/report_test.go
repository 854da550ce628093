package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repo-cleaner/internal/report"
	"github.com/temirov/repo-cleaner/internal/scanner"
)

const (
	testRootConstant         = "/repo"
	testMegabyteConstant     = 1024 * 1024
	testDeleteFailedMessage  = "Failed to delete duplicate file"
	testLogFieldPathConstant = "path"
)

type deniedRemoveFs struct {
	afero.Fs
	deniedPath string
}

func (fileSystem deniedRemoveFs) Remove(name string) error {
	if filepath.Clean(name) == fileSystem.deniedPath {
		return &os.PathError{Op: "remove", Path: name, Err: fs.ErrPermission}
	}
	return fileSystem.Fs.Remove(name)
}

func writeFixture(testInstance *testing.T, fileSystem afero.Fs, files map[string][]byte) {
	testInstance.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(testRootConstant, relativePath)
		require.NoError(testInstance, fileSystem.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testInstance, afero.WriteFile(fileSystem, absolutePath, content, 0o644))
	}
}

func scanFixture(testInstance *testing.T, fileSystem afero.Fs) scanner.ScanResult {
	testInstance.Helper()
	fileScanner, creationError := scanner.NewScanner(fileSystem, zap.NewNop())
	require.NoError(testInstance, creationError)
	result, scanError := fileScanner.Scan(context.Background(), scanner.Options{Root: testRootConstant})
	require.NoError(testInstance, scanError)
	return result
}

func TestDuplicateAndLargeFileScenario(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(testInstance, fileSystem, map[string][]byte{
		"a.txt": []byte("hello"),
		"b.txt": []byte("hello"),
		"c.txt": bytes.Repeat([]byte("world"), 2*testMegabyteConstant),
	})

	result := scanFixture(testInstance, fileSystem)
	thresholdBytes, thresholdError := report.ThresholdFromMegabytes(report.DefaultSizeThresholdMegabytes)
	require.NoError(testInstance, thresholdError)

	groups := report.FindDuplicates(result.Records)
	require.Len(testInstance, groups, 1)
	require.Equal(testInstance, []string{"a.txt", "b.txt"}, groups[0].Paths)
	require.Equal(testInstance, "a.txt", groups[0].Retained())
	require.Equal(testInstance, []string{"b.txt"}, groups[0].Redundant())

	largeFiles := report.FindLargeFiles(result.Records, thresholdBytes)
	require.Len(testInstance, largeFiles, 1)
	require.Equal(testInstance, "c.txt", largeFiles[0].Path)

	deleter, deleterError := report.NewDeleter(fileSystem, zap.NewNop())
	require.NoError(testInstance, deleterError)
	outcomes := deleter.RemoveDuplicates(testRootConstant, groups)
	require.Equal(testInstance, []report.DeletionOutcome{{Path: "b.txt", Status: report.FileStatusDeleted}}, outcomes)

	retainedExists, _ := afero.Exists(fileSystem, "/repo/a.txt")
	removedExists, _ := afero.Exists(fileSystem, "/repo/b.txt")
	require.True(testInstance, retainedExists)
	require.False(testInstance, removedExists)

	builtReport := report.Build(report.Input{
		Result:            result,
		ThresholdBytes:    thresholdBytes,
		Groups:            groups,
		LargeFiles:        largeFiles,
		DeletionRequested: true,
		Outcomes:          outcomes,
	})
	require.Equal(testInstance, report.Summary{FilesScanned: 3, DuplicateGroups: 1, RedundantFiles: 1, DeletedFiles: 1, LargeFiles: 1}, builtReport.Summary)

	var output bytes.Buffer
	require.NoError(testInstance, report.Render(&output, builtReport, report.FormatText))
	renderedText := output.String()
	require.Contains(testInstance, renderedText, "Duplicate groups: 1")
	require.Contains(testInstance, renderedText, "    a.txt  retained\n")
	require.Contains(testInstance, renderedText, "    b.txt  deleted\n")
	require.Contains(testInstance, renderedText, "Large files over 5.00 MB: 1")
	require.Contains(testInstance, renderedText, "10.00 MB  c.txt")
	require.Contains(testInstance, renderedText, "Deleted 1 of 1 redundant files, 0 failed.")
}

func TestUniqueFilesReportNoDuplicates(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeFixture(testInstance, fileSystem, map[string][]byte{"one.txt": []byte("1"), "two.txt": []byte("2")})

	result := scanFixture(testInstance, fileSystem)
	groups := report.FindDuplicates(result.Records)
	require.Empty(testInstance, groups)

	var output bytes.Buffer
	require.NoError(testInstance, report.Render(&output, report.Build(report.Input{Result: result, ThresholdBytes: 5 * testMegabyteConstant, Groups: groups}), report.FormatText))
	require.Contains(testInstance, output.String(), "No duplicates found.")
	require.Contains(testInstance, output.String(), "No files larger than 5.00 MB.")
	require.NotContains(testInstance, output.String(), "redundant")
}

func TestFindDuplicatesOrdering(testInstance *testing.T) {
	records := []scanner.FileRecord{
		{Path: "z/one", Digest: "bbbb"},
		{Path: "a/one", Digest: "bbbb"},
		{Path: "triple/3", Digest: "cccc"},
		{Path: "triple/1", Digest: "cccc"},
		{Path: "triple/2", Digest: "cccc"},
		{Path: "pair/b", Digest: "aaaa"},
		{Path: "pair/a", Digest: "aaaa"},
		{Path: "unique", Digest: "dddd"},
	}

	groups := report.FindDuplicates(records)
	require.Equal(testInstance, []report.DuplicateGroup{
		{Digest: "cccc", Paths: []string{"triple/1", "triple/2", "triple/3"}},
		{Digest: "aaaa", Paths: []string{"pair/a", "pair/b"}},
		{Digest: "bbbb", Paths: []string{"a/one", "z/one"}},
	}, groups)
}

func TestFindLargeFilesThresholdBoundary(testInstance *testing.T) {
	const thresholdBytes = int64(1000)
	records := []scanner.FileRecord{
		{Path: "exact", SizeBytes: thresholdBytes},
		{Path: "b-over", SizeBytes: thresholdBytes + 1},
		{Path: "a-over", SizeBytes: thresholdBytes + 1},
		{Path: "huge", SizeBytes: thresholdBytes * 10},
		{Path: "small", SizeBytes: 1},
	}

	largeFiles := report.FindLargeFiles(records, thresholdBytes)
	paths := make([]string, 0, len(largeFiles))
	for _, largeFile := range largeFiles {
		paths = append(paths, largeFile.Path)
	}
	require.Equal(testInstance, []string{"huge", "a-over", "b-over"}, paths)
}

func TestThresholdFromMegabytes(testInstance *testing.T) {
	testCases := []struct {
		name          string
		megabytes     float64
		expectedBytes int64
		expectError   bool
	}{
		{name: "default", megabytes: 5, expectedBytes: 5 * testMegabyteConstant},
		{name: "fractional", megabytes: 0.5, expectedBytes: testMegabyteConstant / 2},
		{name: "zero", megabytes: 0, expectedBytes: 0},
		{name: "negative", megabytes: -1, expectError: true},
		{name: "largest representable", megabytes: math.MaxInt64 / testMegabyteConstant, expectedBytes: (math.MaxInt64 / testMegabyteConstant) * testMegabyteConstant},
		{name: "overflowing", megabytes: 1e13, expectError: true},
		{name: "infinite", megabytes: math.Inf(1), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			thresholdBytes, thresholdError := report.ThresholdFromMegabytes(testCase.megabytes)
			if testCase.expectError {
				require.ErrorIs(testInstance, thresholdError, report.ErrInvalidThreshold)
				return
			}
			require.NoError(testInstance, thresholdError)
			require.Equal(testInstance, testCase.expectedBytes, thresholdBytes)
		})
	}
}

func TestFindLargeFilesRejectsOverflowingThreshold(testInstance *testing.T) {
	records := []scanner.FileRecord{{Path: "tiny.txt", SizeBytes: 1}}

	thresholdBytes, thresholdError := report.ThresholdFromMegabytes(1e13)
	require.ErrorIs(testInstance, thresholdError, report.ErrInvalidThreshold)
	require.Zero(testInstance, thresholdBytes)

	maximumBytes, maximumError := report.ThresholdFromMegabytes(math.MaxInt64 / testMegabyteConstant)
	require.NoError(testInstance, maximumError)
	require.Empty(testInstance, report.FindLargeFiles(records, maximumBytes))
}

func TestRemoveDuplicatesContinuesAfterFailure(testInstance *testing.T) {
	baseFileSystem := afero.NewMemMapFs()
	writeFixture(testInstance, baseFileSystem, map[string][]byte{
		"a.txt":   []byte("same"),
		"b.txt":   []byte("same"),
		"c.txt":   []byte("same"),
		"x/1.bin": []byte("other"),
		"x/2.bin": []byte("other"),
	})
	fileSystem := deniedRemoveFs{Fs: baseFileSystem, deniedPath: "/repo/b.txt"}
	observerCore, observedLogs := observer.New(zapcore.WarnLevel)

	result := scanFixture(testInstance, fileSystem)
	groups := report.FindDuplicates(result.Records)
	deleter, deleterError := report.NewDeleter(fileSystem, zap.New(observerCore))
	require.NoError(testInstance, deleterError)

	outcomes := deleter.RemoveDuplicates(testRootConstant, groups)
	require.Len(testInstance, outcomes, 3)
	require.Equal(testInstance, "b.txt", outcomes[0].Path)
	require.Equal(testInstance, report.FileStatusFailed, outcomes[0].Status)
	var deleteError report.FileDeleteError
	require.ErrorAs(testInstance, outcomes[0].Failure, &deleteError)
	require.ErrorIs(testInstance, outcomes[0].Failure, fs.ErrPermission)
	require.Equal(testInstance, report.DeletionOutcome{Path: "c.txt", Status: report.FileStatusDeleted}, outcomes[1])
	require.Equal(testInstance, report.DeletionOutcome{Path: "x/2.bin", Status: report.FileStatusDeleted}, outcomes[2])

	warnings := observedLogs.FilterMessage(testDeleteFailedMessage).All()
	require.Len(testInstance, warnings, 1)
	require.Equal(testInstance, "b.txt", warnings[0].ContextMap()[testLogFieldPathConstant])

	builtReport := report.Build(report.Input{Result: result, Groups: groups, DeletionRequested: true, Outcomes: outcomes})
	require.Equal(testInstance, 1, builtReport.Summary.FailedDeletions)
	require.Equal(testInstance, 2, builtReport.Summary.DeletedFiles)

	var output bytes.Buffer
	require.NoError(testInstance, report.Render(&output, builtReport, report.FormatText))
	require.Contains(testInstance, output.String(), "    b.txt  failed: delete b.txt: remove /repo/b.txt: permission denied\n")
	require.Contains(testInstance, output.String(), "Deleted 2 of 3 redundant files, 1 failed.")
}

func TestNewDeleterValidation(testInstance *testing.T) {
	_, fileSystemError := report.NewDeleter(nil, zap.NewNop())
	require.ErrorIs(testInstance, fileSystemError, report.ErrDeleterFileSystemNotConfigured)

	_, loggerError := report.NewDeleter(afero.NewMemMapFs(), nil)
	require.ErrorIs(testInstance, loggerError, report.ErrDeleterLoggerNotConfigured)
}

func TestRenderStructuredFormats(testInstance *testing.T) {
	builtReport := report.Build(report.Input{
		Result: scanner.ScanResult{
			Root:      testRootConstant,
			Algorithm: scanner.AlgorithmXXHash,
			Records: []scanner.FileRecord{
				{Path: "a.txt", SizeBytes: 4, Digest: "d1"},
				{Path: "b.txt", SizeBytes: 4, Digest: "d1"},
			},
			Skipped: []scanner.FileReadError{{Path: "locked", Cause: fs.ErrPermission}},
		},
		ThresholdBytes: 2,
		Groups:         []report.DuplicateGroup{{Digest: "d1", Paths: []string{"a.txt", "b.txt"}}},
		LargeFiles:     []scanner.FileRecord{{Path: "a.txt", SizeBytes: 4}, {Path: "b.txt", SizeBytes: 4}},
		HistoryScanned: true,
		HistoryBlobs:   []report.HistoryBlob{{Path: "old.iso", BlobHash: "abc", SizeBytes: 9}},
	})

	testInstance.Run("json", func(testInstance *testing.T) {
		var output bytes.Buffer
		require.NoError(testInstance, report.Render(&output, builtReport, report.FormatJSON))

		var decoded report.Report
		require.NoError(testInstance, json.Unmarshal(output.Bytes(), &decoded))
		require.Equal(testInstance, builtReport, decoded)
	})

	testInstance.Run("yaml", func(testInstance *testing.T) {
		var output bytes.Buffer
		require.NoError(testInstance, report.Render(&output, builtReport, report.FormatYAML))

		var decoded map[string]any
		require.NoError(testInstance, yaml.Unmarshal(output.Bytes(), &decoded))
		require.Equal(testInstance, "xxhash", decoded["algorithm"])
		require.Equal(testInstance, true, decoded["history_scanned"])
	})

	testInstance.Run("csv", func(testInstance *testing.T) {
		var output bytes.Buffer
		require.NoError(testInstance, report.Render(&output, builtReport, report.FormatCSV))

		rows, readError := csv.NewReader(strings.NewReader(output.String())).ReadAll()
		require.NoError(testInstance, readError)
		require.Equal(testInstance, []string{"section", "path", "digest", "size_bytes", "status", "detail"}, rows[0])
		require.Equal(testInstance, []string{"duplicate", "b.txt", "d1", "4", "duplicate", ""}, rows[2])
		require.Equal(testInstance, []string{"history_blob", "old.iso", "abc", "9", "", ""}, rows[5])
		require.Equal(testInstance, []string{"skipped", "locked", "", "", "", "permission denied"}, rows[6])
	})

	testInstance.Run("text_dry_run", func(testInstance *testing.T) {
		var output bytes.Buffer
		require.NoError(testInstance, report.Render(&output, builtReport, report.FormatText))
		require.Contains(testInstance, output.String(), "    b.txt  duplicate\n")
		require.Contains(testInstance, output.String(), "Large blobs in history over 0.00 MB: 1")
		require.Contains(testInstance, output.String(), "    locked: permission denied\n")
		require.Contains(testInstance, output.String(), "1 redundant files can be removed with --delete-duplicates.")
	})
}

func TestParseFormat(testInstance *testing.T) {
	format, parseError := report.ParseFormat(" YAML ")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, report.FormatYAML, format)

	defaultFormat, defaultError := report.ParseFormat("")
	require.NoError(testInstance, defaultError)
	require.Equal(testInstance, report.FormatText, defaultFormat)

	_, unsupportedError := report.ParseFormat("xml")
	require.ErrorIs(testInstance, unsupportedError, report.ErrUnsupportedFormat)
}
