package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/kbmcp/internal/gitignore"
)

// gitignoreCacheSize bounds the number of per-directory gitignore matchers
// held at once, so a deep repeat scan doesn't grow memory unbounded.
const gitignoreCacheSize = 256

// Scanner discovers ingestable files under a root directory.
type Scanner struct {
	gitignoreCache *lru.Cache[string, *gitignore.Matcher]
	cacheMu        sync.Mutex
}

// New creates a Scanner.
func New() *Scanner {
	cache, _ := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	return &Scanner{gitignoreCache: cache}
}

// Walk discovers every ingestable file under root, applying opts.
func (s *Scanner) Walk(root string, opts Options) ([]FileInfo, error) {
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	allowed := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		allowed[ext] = true
	}

	var matcher *gitignore.Matcher
	if opts.RespectGitignore {
		matcher = s.matcherFor(root)
	}

	var results []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && strings.HasPrefix(filepath.Base(rel), ".") {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher != nil && matcher.Match(rel, false) {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		ext := filepath.Ext(path)
		sourceType := DetectSourceType(ext)
		if sourceType == "" {
			return nil
		}
		if len(allowed) > 0 && !allowed[ext] {
			return nil
		}

		results = append(results, FileInfo{
			Path:       rel,
			AbsPath:    path,
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			SourceType: sourceType,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return results, nil
}

// matcherFor loads and caches a matcher for root that honors every nested
// .gitignore under it, not just the one at root itself: real git applies a
// directory's .gitignore to that directory and everything below it, which
// is why AddFromFile takes a base to scope a nested file's patterns to.
func (s *Scanner) matcherFor(root string) *gitignore.Matcher {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if m, ok := s.gitignoreCache.Get(root); ok {
		return m
	}

	m := gitignore.New()
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && strings.HasPrefix(filepath.Base(rel), ".") {
			return filepath.SkipDir
		}

		base := rel
		if rel == "." {
			base = ""
		}
		_ = m.AddFromFile(filepath.Join(path, ".gitignore"), base)
		return nil
	})
	s.gitignoreCache.Add(root, m)
	return m
}
