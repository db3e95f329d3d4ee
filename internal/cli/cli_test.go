package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dircache/internal/cli"
	"github.com/rshade/dircache/internal/config"
	"github.com/rshade/dircache/internal/explorer"
)

// runCLI executes the root command against an isolated config directory.
func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvLogLevel, "error")

	var buf bytes.Buffer
	cmd := cli.NewRootCmd("0.1.0-dev")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--config-dir", configDir}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

// newTree creates a small directory tree and returns its root.
func newTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# readme"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x"), 0o600))
	return root
}

type exported struct {
	Config struct {
		MaxEntries   int   `json:"maxEntries"`
		DefaultTTLMs int64 `json:"defaultTtlMs"`
	} `json:"config"`
	Stats struct {
		Hits   uint64 `json:"hits"`
		Misses uint64 `json:"misses"`
	} `json:"stats"`
	Persisting bool `json:"persisting"`
}

func exportStats(t *testing.T, configDir string) exported {
	t.Helper()
	out, err := runCLI(t, configDir, "stats", "--json")
	require.NoError(t, err)

	var doc exported
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func TestLs(t *testing.T) {
	root := newTree(t)

	out, err := runCLI(t, t.TempDir(), "ls", root)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "src/")
	assert.Contains(t, string(lines[1]), "go.mod")
	assert.Contains(t, string(lines[2]), "README.md")
}

func TestLs_JSON(t *testing.T) {
	root := newTree(t)

	out, err := runCLI(t, t.TempDir(), "ls", root, "--json")
	require.NoError(t, err)

	var entries []explorer.FileEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, filepath.Join(root, "src"), entries[0].Path)
}

func TestLs_RepeatServedFromCache(t *testing.T) {
	root := newTree(t)

	out, err := runCLI(t, t.TempDir(), "ls", root, "--repeat", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "3 requests: 2 hits, 1 misses")
}

func TestLs_Errors(t *testing.T) {
	configDir := t.TempDir()
	root := newTree(t)

	_, err := runCLI(t, configDir, "ls", filepath.Join(root, "missing"))
	require.ErrorIs(t, err, explorer.ErrNotExist)

	_, err = runCLI(t, configDir, "ls", filepath.Join(root, "go.mod"))
	require.ErrorIs(t, err, explorer.ErrNotDirectory)

	_, err = runCLI(t, configDir, "ls", root, "--repeat", "0")
	require.Error(t, err)

	_, err = runCLI(t, configDir, "ls")
	require.Error(t, err)
}

func TestStat(t *testing.T) {
	root := newTree(t)
	configDir := t.TempDir()

	out, err := runCLI(t, configDir, "stat", filepath.Join(root, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, out, "Name:     go.mod")
	assert.Contains(t, out, "Type:     file")
	assert.Contains(t, out, "(8 bytes)")

	out, err = runCLI(t, configDir, "stat", filepath.Join(root, "src"), "--json")
	require.NoError(t, err)
	var entry explorer.FileEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	assert.True(t, entry.IsDir)
}

func TestDrives(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("drive letters depend on the host")
	}
	out, err := runCLI(t, t.TempDir(), "drives")
	require.NoError(t, err)
	assert.Equal(t, "/\n", out)
}

func TestHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	out, err := runCLI(t, t.TempDir(), "home")
	require.NoError(t, err)
	assert.Equal(t, home+"\n", out)
}

func TestStats_CountersSurviveRuns(t *testing.T) {
	root := newTree(t)
	configDir := t.TempDir()

	_, err := runCLI(t, configDir, "ls", root, "--repeat", "2")
	require.NoError(t, err)

	doc := exportStats(t, configDir)
	assert.True(t, doc.Persisting)
	assert.Equal(t, uint64(1), doc.Stats.Hits)
	assert.GreaterOrEqual(t, doc.Stats.Misses, uint64(1))

	_, err = runCLI(t, configDir, "clear")
	require.NoError(t, err)

	doc = exportStats(t, configDir)
	assert.Zero(t, doc.Stats.Hits)
	assert.Zero(t, doc.Stats.Misses)
}

func TestStats_Plain(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "NAMESPACE")
	for _, ns := range []string{"file", "folder", "drive", "recent", "metadata"} {
		assert.Contains(t, out, ns)
	}
	assert.Contains(t, out, "Persistence: true")
}

func TestStats_Namespace(t *testing.T) {
	configDir := t.TempDir()

	out, err := runCLI(t, configDir, "stats", "--namespace", "folders", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"namespace": "folder"`)

	_, err = runCLI(t, configDir, "stats", "--namespace", "bogus")
	require.Error(t, err)
}

func TestConfigSet_UpdatesPersistedState(t *testing.T) {
	configDir := t.TempDir()

	out, err := runCLI(t, configDir, "config", "set", "cache.max_entries", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Set cache.max_entries = 7")

	out, err = runCLI(t, configDir, "config", "get", "cache.max_entries")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	_, err = runCLI(t, configDir, "config", "set", "cache.default_ttl", "90")
	require.NoError(t, err)

	doc := exportStats(t, configDir)
	assert.Equal(t, 7, doc.Config.MaxEntries)
	assert.Equal(t, int64(90_000), doc.Config.DefaultTTLMs)
}

func TestConfigSet_Errors(t *testing.T) {
	configDir := t.TempDir()

	_, err := runCLI(t, configDir, "config", "set", "cache.colour", "blue")
	require.ErrorIs(t, err, config.ErrUnknownKey)

	_, err = runCLI(t, configDir, "config", "set", "cache.default_ttl", "forever")
	require.Error(t, err)
}

func TestConfigShow_MasksSecret(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.FileName), []byte(`
snapshot:
  backend: minio
  endpoint: localhost:9000
  bucket: dircache
  secret_key: hunter2
`), 0o600))

	out, err := runCLI(t, configDir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "backend: minio")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "********")
}

func TestLs_InvalidateReadsAgain(t *testing.T) {
	root := newTree(t)

	out, err := runCLI(t, t.TempDir(), "ls", root, "--repeat", "2", "--invalidate")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalidated "+root+" (1 cached entries removed)")
	assert.Contains(t, out, "3 requests: 1 hits, 2 misses")
	assert.Contains(t, out, "README.md")
}

func TestLs_InvalidateSeesNewFiles(t *testing.T) {
	root := newTree(t)

	out, err := runCLI(t, t.TempDir(), "ls", root, "--invalidate", "--json")
	require.NoError(t, err)

	var entries []explorer.FileEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 3)
}

func TestClear_RejectsArguments(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "clear", "folder")
	require.Error(t, err)
}

func TestCacheSettings_EnvOverridesPersistedState(t *testing.T) {
	root := newTree(t)
	configDir := t.TempDir()

	_, err := runCLI(t, configDir, "ls", root)
	require.NoError(t, err)
	assert.Equal(t, 10_000, exportStats(t, configDir).Config.MaxEntries)

	t.Setenv(config.EnvCacheMaxEntries, "7")
	assert.Equal(t, 7, exportStats(t, configDir).Config.MaxEntries)
}

func TestCacheSettings_FileOverridesPersistedState(t *testing.T) {
	root := newTree(t)
	configDir := t.TempDir()

	_, err := runCLI(t, configDir, "config", "set", "cache.max_entries", "7")
	require.NoError(t, err)
	_, err = runCLI(t, configDir, "ls", root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.FileName), []byte(`
cache:
  max_entries: 42
`), 0o600))

	doc := exportStats(t, configDir)
	assert.Equal(t, 42, doc.Config.MaxEntries)
	assert.Equal(t, int64(300_000), doc.Config.DefaultTTLMs)
}

func TestCacheTTLFlag(t *testing.T) {
	root := newTree(t)
	configDir := t.TempDir()

	_, err := runCLI(t, configDir, "--cache-ttl", "30", "ls", root)
	require.NoError(t, err)

	_, err = runCLI(t, configDir, "--cache-ttl", "-1", "ls", root)
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dircache 0.1.0-dev (development build)\n", out)
}
