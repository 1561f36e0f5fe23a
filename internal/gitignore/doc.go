// Package gitignore compiles .gitignore pattern files into a Matcher that
// internal/scanner consults, per directory, while walking a knowledge-base
// source tree for files to ingest. Pattern syntax follows git's own rules:
// wildcards (*, ?, **), rooted patterns (/build), negation (!kept.log), and
// directory-only patterns (build/). Thread-safe: a Matcher may be shared
// across concurrent scans.
//
// A nested .gitignore only governs the subtree it lives in, which is why
// AddFromFile takes a base directory:
//
//	m := gitignore.New()
//	m.AddFromFile("/repo/.gitignore", "")
//	m.AddFromFile("/repo/src/.gitignore", "src")
//
//	if m.Match("src/error.log", false) {
//	    // ignored
//	}
package gitignore
