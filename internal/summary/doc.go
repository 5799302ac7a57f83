// Package summary provides directory statistics collection and analysis.
//
// It walks directory trees using fastwalk for parallel traversal, aggregates
// file statistics by extension, and ranks the largest files or directories.
// The same exclusion rules as the treemap scan apply, and an existing scanned
// tree can be summarized without touching the disk again.
package summary
