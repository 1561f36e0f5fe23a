package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// withTempConfigDir points the package-level configDir (and the storage env
// overrides openContext reads) at a fresh temp directory for the duration of
// the test, so subcommands that call openContext never touch a real home
// directory.
func withTempConfigDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()

	prevConfigDir := configDir
	configDir = dir
	t.Setenv("KBMCP_STORAGE_PATH", filepath.Join(dir, "kb.db"))
	t.Setenv("KBMCP_INDEX_DIR", dir)

	t.Cleanup(func() { configDir = prevConfigDir })
}

func TestRunRebuild_EmptyStoreSucceeds(t *testing.T) {
	withTempConfigDir(t)

	cmd := newRebuildCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetContext(context.Background())
	cmd.Flags().Set("plain", "true")

	err := runRebuild(cmd, true)

	require.NoError(t, err)
}
