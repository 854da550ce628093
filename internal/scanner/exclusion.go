package scanner

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	pathSeparatorConstant            = "/"
	invalidExclusionTemplateConstant = "%w: %q"
)

// DefaultExclusions lists the patterns skipped when none are configured.
func DefaultExclusions() []string {
	return []string{".git"}
}

// ExclusionMatcher decides whether a slash-separated path relative to the scan root is excluded.
// Patterns without a slash match any path segment's base name; patterns with a slash match the
// whole relative path.
type ExclusionMatcher struct {
	basenamePatterns []string
	pathPatterns     []string
}

// NewExclusionMatcher validates the doublestar patterns and builds a matcher.
func NewExclusionMatcher(patterns []string) (*ExclusionMatcher, error) {
	matcher := &ExclusionMatcher{}
	for _, pattern := range patterns {
		trimmedPattern := strings.Trim(strings.TrimSpace(pattern), pathSeparatorConstant)
		if len(trimmedPattern) == 0 {
			continue
		}
		if !doublestar.ValidatePattern(trimmedPattern) {
			return nil, fmt.Errorf(invalidExclusionTemplateConstant, ErrInvalidExclusionPattern, pattern)
		}
		if strings.Contains(trimmedPattern, pathSeparatorConstant) {
			matcher.pathPatterns = append(matcher.pathPatterns, trimmedPattern)
			continue
		}
		matcher.basenamePatterns = append(matcher.basenamePatterns, trimmedPattern)
	}
	return matcher, nil
}

// Matches reports whether relativePath is excluded.
func (matcher *ExclusionMatcher) Matches(relativePath string) bool {
	if matcher == nil {
		return false
	}
	baseName := path.Base(relativePath)
	for _, pattern := range matcher.basenamePatterns {
		if matched, _ := doublestar.Match(pattern, baseName); matched {
			return true
		}
	}
	for _, pattern := range matcher.pathPatterns {
		if matched, _ := doublestar.Match(pattern, relativePath); matched {
			return true
		}
	}
	return false
}
