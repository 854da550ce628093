package report

import (
	"sort"

	"github.com/temirov/repo-cleaner/internal/scanner"
)

const minimumDuplicateGroupSizeConstant = 2

// DuplicateGroup lists the paths sharing one content digest, sorted lexicographically.
type DuplicateGroup struct {
	Digest scanner.Digest
	Paths  []string
}

// Retained returns the path kept when duplicates are removed.
func (group DuplicateGroup) Retained() string {
	if len(group.Paths) == 0 {
		return ""
	}
	return group.Paths[0]
}

// Redundant returns the paths removed when duplicates are removed.
func (group DuplicateGroup) Redundant() []string {
	if len(group.Paths) < minimumDuplicateGroupSizeConstant {
		return nil
	}
	return append([]string{}, group.Paths[1:]...)
}

// FindDuplicates groups records by digest and returns the groups with at least two members,
// largest group first and ties ordered by digest.
func FindDuplicates(records []scanner.FileRecord) []DuplicateGroup {
	pathsByDigest := make(map[scanner.Digest][]string)
	for _, record := range records {
		pathsByDigest[record.Digest] = append(pathsByDigest[record.Digest], record.Path)
	}

	groups := make([]DuplicateGroup, 0)
	for digest, paths := range pathsByDigest {
		if len(paths) < minimumDuplicateGroupSizeConstant {
			continue
		}
		sortedPaths := append([]string{}, paths...)
		sort.Strings(sortedPaths)
		groups = append(groups, DuplicateGroup{Digest: digest, Paths: sortedPaths})
	}

	sort.Slice(groups, func(leftIndex int, rightIndex int) bool {
		leftGroup := groups[leftIndex]
		rightGroup := groups[rightIndex]
		if len(leftGroup.Paths) != len(rightGroup.Paths) {
			return len(leftGroup.Paths) > len(rightGroup.Paths)
		}
		return leftGroup.Digest < rightGroup.Digest
	})
	return groups
}
