// Package report derives duplicate groups and large file listings from a
// scanner.ScanResult, optionally removes redundant duplicates, and renders
// the outcome as text, JSON, YAML or CSV.
package report
