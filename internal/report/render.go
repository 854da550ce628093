package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a report encoding.
type Format string

// Supported report formats.
const (
	FormatText Format = Format("text")
	FormatJSON Format = Format("json")
	FormatYAML Format = Format("yaml")
	FormatCSV  Format = Format("csv")
)

const (
	unsupportedFormatMessageConstant  = "unsupported report format"
	unsupportedFormatTemplateConstant = "%w: %s"
	jsonIndentConstant                = "  "
	yamlIndentConstant                = 2
	scanRootTemplateConstant          = "Scan root: %s\n"
	filesScannedTemplateConstant      = "Files scanned: %d (%s)\n"
	duplicatesHeaderTemplateConstant  = "\nDuplicate groups: %d\n"
	noDuplicatesMessageConstant       = "No duplicates found.\n"
	groupHeaderTemplateConstant       = "[%d] %s (%d bytes each, %d files)\n"
	groupMemberTemplateConstant       = "    %s  %s\n"
	groupFailedMemberTemplateConstant = "    %s  %s: %s\n"
	largeFilesHeaderTemplateConstant  = "\nLarge files over %s: %d\n"
	noLargeFilesTemplateConstant      = "No files larger than %s.\n"
	largeFileLineTemplateConstant     = "    %10s  %s\n"
	historyHeaderTemplateConstant     = "\nLarge blobs in history over %s: %d\n"
	historyLineTemplateConstant       = "    %10s  %s  %s\n"
	skippedHeaderTemplateConstant     = "\nSkipped entries: %d\n"
	skippedLineTemplateConstant       = "    %s: %s\n"
	deletionSummaryTemplateConstant   = "\nDeleted %d of %d redundant files, %d failed.\n"
	dryRunSummaryTemplateConstant     = "\n%d redundant files can be removed with --delete-duplicates.\n"
	csvSectionDuplicateConstant       = "duplicate"
	csvSectionLargeFileConstant       = "large_file"
	csvSectionHistoryBlobConstant     = "history_blob"
	csvSectionSkippedConstant         = "skipped"
	csvHeaderSectionConstant          = "section"
	csvHeaderPathConstant             = "path"
	csvHeaderIdentifierConstant       = "digest"
	csvHeaderSizeConstant             = "size_bytes"
	csvHeaderStatusConstant           = "status"
	csvHeaderDetailConstant           = "detail"
)

// ErrUnsupportedFormat indicates an unknown report format was requested.
var ErrUnsupportedFormat = errors.New(unsupportedFormatMessageConstant)

// SupportedFormats lists the accepted format names in display order.
func SupportedFormats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML), string(FormatCSV)}
}

// ParseFormat normalizes a format name, defaulting blank input to text.
func ParseFormat(value string) (Format, error) {
	normalizedValue := Format(strings.ToLower(strings.TrimSpace(value)))
	switch normalizedValue {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatCSV:
		return normalizedValue, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, value)
	}
}

// Render writes the report to writer in the requested format.
func Render(writer io.Writer, report Report, format Format) error {
	switch format {
	case FormatText, "":
		return renderText(writer, report)
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		return encoder.Encode(report)
	case FormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(report); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	case FormatCSV:
		return renderCSV(writer, report)
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, format)
	}
}

type textWriter struct {
	writer     io.Writer
	firstError error
}

func (output *textWriter) printf(template string, arguments ...any) {
	if output.firstError != nil {
		return
	}
	_, output.firstError = fmt.Fprintf(output.writer, template, arguments...)
}

func renderText(writer io.Writer, report Report) error {
	output := &textWriter{writer: writer}
	threshold := formatMegabytes(report.ThresholdBytes)

	output.printf(scanRootTemplateConstant, report.Root)
	output.printf(filesScannedTemplateConstant, report.Summary.FilesScanned, report.Algorithm)

	output.printf(duplicatesHeaderTemplateConstant, len(report.DuplicateGroups))
	if len(report.DuplicateGroups) == 0 {
		output.printf(noDuplicatesMessageConstant)
	}
	for groupIndex, group := range report.DuplicateGroups {
		output.printf(groupHeaderTemplateConstant, groupIndex+1, group.Digest, group.SizeBytes, len(group.Files))
		for _, file := range group.Files {
			if len(file.Error) > 0 {
				output.printf(groupFailedMemberTemplateConstant, file.Path, file.Status, file.Error)
				continue
			}
			output.printf(groupMemberTemplateConstant, file.Path, file.Status)
		}
	}

	output.printf(largeFilesHeaderTemplateConstant, threshold, len(report.LargeFiles))
	if len(report.LargeFiles) == 0 {
		output.printf(noLargeFilesTemplateConstant, threshold)
	}
	for _, largeFile := range report.LargeFiles {
		output.printf(largeFileLineTemplateConstant, formatMegabytes(largeFile.SizeBytes), largeFile.Path)
	}

	if report.HistoryScanned {
		output.printf(historyHeaderTemplateConstant, threshold, len(report.HistoryBlobs))
		for _, blob := range report.HistoryBlobs {
			output.printf(historyLineTemplateConstant, formatMegabytes(blob.SizeBytes), blob.BlobHash, blob.Path)
		}
	}

	if len(report.Skipped) > 0 {
		output.printf(skippedHeaderTemplateConstant, len(report.Skipped))
		for _, skippedEntry := range report.Skipped {
			output.printf(skippedLineTemplateConstant, skippedEntry.Path, skippedEntry.Reason)
		}
	}

	switch {
	case report.DeletionRequested:
		output.printf(deletionSummaryTemplateConstant, report.Summary.DeletedFiles, report.Summary.RedundantFiles, report.Summary.FailedDeletions)
	case report.Summary.RedundantFiles > 0:
		output.printf(dryRunSummaryTemplateConstant, report.Summary.RedundantFiles)
	}

	return output.firstError
}

func renderCSV(writer io.Writer, report Report) error {
	csvWriter := csv.NewWriter(writer)
	records := [][]string{{
		csvHeaderSectionConstant,
		csvHeaderPathConstant,
		csvHeaderIdentifierConstant,
		csvHeaderSizeConstant,
		csvHeaderStatusConstant,
		csvHeaderDetailConstant,
	}}

	for _, group := range report.DuplicateGroups {
		for _, file := range group.Files {
			records = append(records, []string{csvSectionDuplicateConstant, file.Path, string(group.Digest), strconv.FormatInt(group.SizeBytes, 10), string(file.Status), file.Error})
		}
	}
	for _, largeFile := range report.LargeFiles {
		records = append(records, []string{csvSectionLargeFileConstant, largeFile.Path, "", strconv.FormatInt(largeFile.SizeBytes, 10), "", ""})
	}
	for _, blob := range report.HistoryBlobs {
		records = append(records, []string{csvSectionHistoryBlobConstant, blob.Path, blob.BlobHash, strconv.FormatInt(blob.SizeBytes, 10), "", ""})
	}
	for _, skippedEntry := range report.Skipped {
		records = append(records, []string{csvSectionSkippedConstant, skippedEntry.Path, "", "", "", skippedEntry.Reason})
	}

	if writeError := csvWriter.WriteAll(records); writeError != nil {
		return writeError
	}
	return csvWriter.Error()
}
