package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/flatkd/index/kd"
	"github.com/viant/flatkd/internal/logging"
	"github.com/viant/flatkd/vector"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBenchCommand(t *testing.T) {
	out, err := run(t, "bench", "500", "5", "3", "--seed", "1", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "construct")
	assert.Contains(t, out, "search")
	assert.Contains(t, out, "mean:")
}

func TestIntegrityCommand(t *testing.T) {
	out, err := run(t, "integrity", "300", "7", "20", "--seed", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "integrity check passed")
}

func TestIntegrityCommand_KLargerThanCount(t *testing.T) {
	out, err := run(t, "integrity", "20", "50", "5", "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "integrity check passed")
}

func TestCommandArgs(t *testing.T) {
	testCases := []struct {
		description string
		args        []string
	}{
		{description: "non numeric count", args: []string{"bench", "abc", "5"}},
		{description: "negative k", args: []string{"integrity", "--", "10", "-3"}},
		{description: "missing k", args: []string{"bench", "10"}},
		{description: "too many args", args: []string{"integrity", "1", "2", "3", "4"}},
		{description: "bad coordinate", args: []string{"query", "--db", ":memory:", "x"}},
		{description: "bad log level", args: []string{"bench", "10", "1", "--log-level", "loud"}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, err := run(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flatkd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("iterations: 4\nseed: 11\nlog:\n  level: warn\n"), 0o644))

	out, err := run(t, "integrity", "100", "3", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "integrity check passed")

	_, err = run(t, "bench", "10", "1", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadAndQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "points.sqlite")

	out, err := run(t, "load", "64", "--db", db, "--dims", "3", "--seed", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "stored 64 points (3 dims)")

	out, err = run(t, "query", "--db", db, "--k", "4", "--verify", "0.5", "0.5", "0.5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))

	vtabOut, err := run(t, "query", "--db", db, "--k", "4", "--vtab", "--verify", "0.5", "0.5", "0.5")
	require.NoError(t, err)
	assert.Equal(t, out, vtabOut)

	_, err = run(t, "query", "--db", db, "--k", "4", "0.5", "0.5")
	assert.Error(t, err, "query dimension differs from the stored set")
}

func TestVerifyResult(t *testing.T) {
	ctx := context.Background()
	sqlDB, store, err := openStore(filepath.Join(t.TempDir(), "verify.sqlite"), logging.Nop(), false)
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = store.AddPoints(ctx, []vector.Point{
		{ID: "a", Vector: []float32{0, 0}},
		{ID: "b", Vector: []float32{3, 4}},
		{ID: "c", Vector: []float32{1, 1}},
	})
	require.NoError(t, err)
	ids, vectors, err := store.Points(ctx)
	require.NoError(t, err)
	tree := kd.New()
	require.NoError(t, tree.Build(ids, vectors))

	query := []float32{0.2, 0.1}
	gotIDs, distances, err := tree.Query(query, 2)
	require.NoError(t, err)
	require.NoError(t, verifyResult(ctx, store, tree, ids, vectors, query, 2, gotIDs, distances))

	err = verifyResult(ctx, store, tree, ids, vectors, query, 2, gotIDs, []float64{distances[0], distances[1] + 1})
	assert.ErrorContains(t, err, "verify: rank 1")

	err = verifyResult(ctx, store, tree, ids, vectors, query, 2, gotIDs[:1], distances[:1])
	assert.ErrorContains(t, err, "expected 2 results, got 1")
}
