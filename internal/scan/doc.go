// Package scan builds annotated trees from the filesystem.
//
// A Scanner walks one root depth-first, applying exclusion rules and recording
// unreadable entries instead of failing. A Session runs scans in the background
// under a generation counter: starting a scan or stopping one bumps the counter,
// in-flight walks notice at their next entry, and only the newest generation's
// tree is ever published.
package scan
