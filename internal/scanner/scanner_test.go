package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_DiscoversRecognizedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "# hi")
	writeFile(t, dir, "main.go", "package main")
	writeFile(t, dir, "image.png", "binary")

	s := New()
	files, err := s.Walk(dir, Options{})

	require.NoError(t, err)
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Contains(t, paths, "notes.md")
	assert.Contains(t, paths, "main.go")
	assert.NotContains(t, paths, "image.png")
}

func TestWalk_RespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "secret.md\n")
	writeFile(t, dir, "secret.md", "ignored")
	writeFile(t, dir, "public.md", "kept")

	s := New()
	files, err := s.Walk(dir, Options{RespectGitignore: true})

	require.NoError(t, err)
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Contains(t, paths, "public.md")
	assert.NotContains(t, paths, "secret.md")
}

func TestWalk_RespectsNestedGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "*.log\n")
	writeFile(t, dir, "top.log", "ignored by root")
	writeFile(t, dir, "sub/.gitignore", "private.md\n")
	writeFile(t, dir, "sub/private.md", "ignored by nested")
	writeFile(t, dir, "sub/public.md", "kept")

	s := New()
	files, err := s.Walk(dir, Options{RespectGitignore: true})

	require.NoError(t, err)
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Contains(t, paths, "sub/public.md")
	assert.NotContains(t, paths, "top.log")
	assert.NotContains(t, paths, "sub/private.md")
}

func TestWalk_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, dir, "readme.md", "hello")

	s := New()
	files, err := s.Walk(dir, Options{})

	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "readme.md", files[0].Path)
}

func TestWalk_SkipsFilesOverMaxSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.md", "0123456789")

	s := New()
	files, err := s.Walk(dir, Options{MaxFileSize: 5})

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDetectSourceType_KnownAndUnknownExtensions(t *testing.T) {
	assert.Equal(t, "document", DetectSourceType(".md"))
	assert.Equal(t, "code", DetectSourceType(".go"))
	assert.Equal(t, "", DetectSourceType(".png"))
}
