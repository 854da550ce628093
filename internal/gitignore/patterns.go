package gitignore

import (
	"bytes"
	"strings"
)

const (
	// FileName is the ignore file maintained by the command.
	FileName                = ".gitignore"
	optimizedHeaderConstant = "# Optimized entries added by repo-cleaner"
	lineBreakConstant       = "\n"
	carriageReturnConstant  = "\r"
)

// RecommendedPatterns returns the default pattern list: OS metadata, IDE state, Python and Node.js
// build artifacts, and log or temporary files.
func RecommendedPatterns() []string {
	return []string{
		"*.DS_Store",
		"Thumbs.db",
		".vscode/",
		".idea/",
		"*.iml",
		"*.suo",
		"*.user",
		"*.sln.docstates",
		"*.pyc",
		"*.pyo",
		"__pycache__/",
		"*.pyd",
		"*.pdb",
		"*.egg-info/",
		"node_modules/",
		"npm-debug.log*",
		"yarn-debug.log*",
		"yarn-error.log*",
		"*.log",
		"*.tmp",
		"*.bak",
		"*.swp",
		"*.swo",
	}
}

// MissingPatterns returns the patterns, in their given order and without repeats, that no trimmed line of existing equals.
func MissingPatterns(existing []byte, patterns []string) []string {
	present := make(map[string]struct{})
	for _, line := range strings.Split(string(existing), lineBreakConstant) {
		trimmedLine := strings.TrimSpace(strings.TrimSuffix(line, carriageReturnConstant))
		if len(trimmedLine) > 0 {
			present[trimmedLine] = struct{}{}
		}
	}

	missing := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if len(trimmedPattern) == 0 {
			continue
		}
		if _, found := present[trimmedPattern]; found {
			continue
		}
		present[trimmedPattern] = struct{}{}
		missing = append(missing, trimmedPattern)
	}
	return missing
}

// AppendPatterns returns existing followed by the header comment and one pattern per line.
// A non-empty existing file is separated from the new block by a blank line.
func AppendPatterns(existing []byte, additions []string) []byte {
	var buffer bytes.Buffer
	buffer.Write(existing)
	if buffer.Len() > 0 {
		if !bytes.HasSuffix(existing, []byte(lineBreakConstant)) {
			buffer.WriteString(lineBreakConstant)
		}
		buffer.WriteString(lineBreakConstant)
	}
	buffer.WriteString(optimizedHeaderConstant)
	buffer.WriteString(lineBreakConstant)
	for _, pattern := range additions {
		buffer.WriteString(pattern)
		buffer.WriteString(lineBreakConstant)
	}
	return buffer.Bytes()
}
