package report

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/temirov/repo-cleaner/internal/scanner"
)

const (
	bytesPerMegabyteConstant          = 1024 * 1024
	maximumThresholdMegabytesConstant = math.MaxInt64 / bytesPerMegabyteConstant
	invalidThresholdMessageConstant   = "size threshold must be a non-negative number of megabytes"
	invalidThresholdTemplateConstant  = "%w: %v"
	megabytesTemplateConstant         = "%.2f MB"
)

// DefaultSizeThresholdMegabytes is the large file threshold used when none is configured.
const DefaultSizeThresholdMegabytes = 5.0

// ErrInvalidThreshold indicates a negative or non-finite size threshold.
var ErrInvalidThreshold = errors.New(invalidThresholdMessageConstant)

// ThresholdFromMegabytes converts a megabyte threshold (1 MB = 1 MiB) into bytes. Values whose byte count
// does not fit in an int64 are rejected.
func ThresholdFromMegabytes(megabytes float64) (int64, error) {
	if megabytes < 0 || math.IsNaN(megabytes) || math.IsInf(megabytes, 0) || megabytes > maximumThresholdMegabytesConstant {
		return 0, fmt.Errorf(invalidThresholdTemplateConstant, ErrInvalidThreshold, megabytes)
	}
	return int64(megabytes * bytesPerMegabyteConstant), nil
}

// FindLargeFiles returns the records strictly larger than thresholdBytes, largest first and ties by path.
func FindLargeFiles(records []scanner.FileRecord, thresholdBytes int64) []scanner.FileRecord {
	largeFiles := make([]scanner.FileRecord, 0)
	for _, record := range records {
		if record.SizeBytes > thresholdBytes {
			largeFiles = append(largeFiles, record)
		}
	}

	sort.Slice(largeFiles, func(leftIndex int, rightIndex int) bool {
		if largeFiles[leftIndex].SizeBytes != largeFiles[rightIndex].SizeBytes {
			return largeFiles[leftIndex].SizeBytes > largeFiles[rightIndex].SizeBytes
		}
		return largeFiles[leftIndex].Path < largeFiles[rightIndex].Path
	})
	return largeFiles
}

func formatMegabytes(sizeBytes int64) string {
	return fmt.Sprintf(megabytesTemplateConstant, float64(sizeBytes)/bytesPerMegabyteConstant)
}
