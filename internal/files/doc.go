// Package files implements the files command: it scans a local tree, reports
// duplicate groups and files above a size threshold, optionally deletes the
// redundant duplicates, and can extend the report with large blobs found in
// the repository history.
package files
