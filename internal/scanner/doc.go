// Package scanner walks a directory tree and records the size and content
// digest of every regular file beneath it.
//
// Traversal is sequential and honours doublestar exclusion patterns. Hashing
// runs on a bounded errgroup pool whose workers write into pre-allocated
// slots, so the resulting ScanResult is identical for any worker count.
// Unreadable files are reported in ScanResult.Skipped instead of aborting
// the scan.
package scanner
