// Package exclude decides which scanned entries are left out of a tree.
//
// Rules come in three kinds. A path rule removes one absolute path and its
// subtree. A glob rule matches the basename or the full forward-slash path
// with shell wildcards, where '*' also crosses separators. A token rule
// matches the basename exactly. Any single matching rule excludes the entry.
//
// Matching is case-insensitive unless WithCaseSensitive(true) is given, so a
// rule list behaves the same on every platform.
package exclude
