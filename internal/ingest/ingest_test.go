package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mwiater/nvsbench/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeResult(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resultJSON(method, dataset, scene string, psnr float64) string {
	return fmt.Sprintf(`{"method_name":%q,"dataset_name":%q,"scene_name":%q,"psnr":%g,"ssim":0.8,"lpips":0.2,"time":1800,"max_gpu_memory":8192}`,
		method, dataset, scene, psnr)
}

func TestDiscoverFindsEveryMarkerInPathOrder(t *testing.T) {
	root := t.TempDir()
	writeResult(t, root, "h3dgs/mipnerf360/room/result.json", resultJSON("h3dgs", "mipnerf360", "room", 1))
	writeResult(t, root, "3dgut/mipnerf360/garden/result.json", resultJSON("3dgut", "mipnerf360", "garden", 1))
	writeResult(t, root, "h3dgs/mipnerf360/bicycle/result.json", resultJSON("h3dgs", "mipnerf360", "bicycle", 1))
	writeResult(t, root, "h3dgs/mipnerf360/bicycle/notes.json", `{}`)
	writeResult(t, root, "deep/a/b/c/d/e/f/result.json", resultJSON("deep", "x", "y", 1))

	paths, err := Discover(root, DefaultMarker)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "3dgut", "mipnerf360", "garden", "result.json"),
		filepath.Join(root, "deep", "a", "b", "c", "d", "e", "f", "result.json"),
		filepath.Join(root, "h3dgs", "mipnerf360", "bicycle", "result.json"),
		filepath.Join(root, "h3dgs", "mipnerf360", "room", "result.json"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("Discover mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverMissingRootIsFatal(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), DefaultMarker)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootNotFound))

	file := writeResult(t, t.TempDir(), "plain.txt", "x")
	_, err = Discover(file, DefaultMarker)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootNotFound))
}

func TestCollectSkipsInvalidFiles(t *testing.T) {
	root := t.TempDir()
	writeResult(t, root, "h3dgs/mipnerf360/bicycle/result.json", resultJSON("h3dgs", "mipnerf360", "bicycle", 25))
	bad := map[string]string{
		"broken/a/b/result.json":   `{"method_name": "broken",`,
		"nomethod/a/b/result.json": `{"dataset_name": "a", "scene_name": "b"}`,
		"blank/a/b/result.json":    `{"method_name": "  ", "dataset_name": "a", "scene_name": "b"}`,
		"negative/a/b/result.json": `{"method_name": "negative", "dataset_name": "a", "scene_name": "b", "psnr": -1}`,
		"notobject/a/b/result.json": `[1, 2, 3]`,
		"wrongtype/a/b/result.json": `{"method_name": "w", "dataset_name": "a", "scene_name": "b", "psnr": "high"}`,
	}
	for rel, content := range bad {
		writeResult(t, root, rel, content)
	}

	summary, err := Collect(Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, 1+len(bad), summary.Files)
	require.Len(t, summary.Records, 1)
	assert.Equal(t, "h3dgs", summary.Records[0].MethodName)
	assert.Len(t, summary.Rejected, len(bad))
	for _, rejection := range summary.Rejected {
		assert.NotEmpty(t, rejection.Reason, rejection.Path)
	}
	assert.NotEmpty(t, summary.RunID)
}

func TestCollectDuplicateLastWriteWins(t *testing.T) {
	root := t.TempDir()
	writeResult(t, root, "h3dgs/mipnerf360/bicycle/result.json", resultJSON("h3dgs", "mipnerf360", "bicycle", 24))
	first := writeResult(t, root, "h3dgs/mipnerf360/garden/result.json", resultJSON("h3dgs", "mipnerf360", "garden", 26))
	writeResult(t, root, "h3dgs/mipnerf360/room/result.json", resultJSON("h3dgs", "mipnerf360", "room", 30))
	second := writeResult(t, root, "zz-rerun/result.json", resultJSON("h3dgs", "mipnerf360", "garden", 27.5))

	summary, err := Collect(Options{Root: root})
	require.NoError(t, err)

	require.Len(t, summary.Records, 3)
	assert.Equal(t, "garden", summary.Records[1].SceneName, "replacement keeps the earlier slot")
	assert.InDelta(t, 27.5, summary.Records[1].PSNR, 1e-9)

	require.Len(t, summary.Duplicates, 1)
	assert.Equal(t, results.Key{Method: "h3dgs", Dataset: "mipnerf360", Scene: "garden"}, summary.Duplicates[0].Key)
	assert.Equal(t, second, summary.Duplicates[0].Kept)
	assert.Equal(t, first, summary.Duplicates[0].Replaced)
}

func TestRunWritesCanonicalDatasetIdempotently(t *testing.T) {
	root := t.TempDir()
	writeResult(t, root, "h3dgs/mipnerf360/bicycle/result.json", resultJSON("h3dgs", "mipnerf360", "bicycle", 25))
	writeResult(t, root, "h3dgs/mipnerf360/garden/result.json", resultJSON("h3dgs", "mipnerf360", "garden", 27))
	writeResult(t, root, "3dgut/tanksandtemples/truck/result.json",
		`{"method_name":"3dgut","dataset_name":"tanksandtemples","scene_name":"truck","psnr":25.1,"hasPaperPsnr":true}`)

	out := filepath.Join(t.TempDir(), "lib", "results.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	first, err := Run(Options{Root: root, Output: out})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Count())
	assert.Equal(t, out, first.Output)
	firstBytes, err := os.ReadFile(out)
	require.NoError(t, err)

	second, err := Run(Options{Root: root, Output: out})
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, string(firstBytes), string(secondBytes))
	assert.NotEqual(t, first.RunID, second.RunID)

	loaded, err := Load(out)
	require.NoError(t, err)
	if diff := cmp.Diff(first.Records, loaded); diff != "" {
		t.Fatalf("loaded dataset differs (-collected +loaded):\n%s", diff)
	}
	assert.True(t, loaded[0].HasPaperPSNR, "legacy paper flag survives the round trip")
	assert.Contains(t, string(firstBytes), `"has_paper_psnr": true`)
}

func TestRunMissingRootWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.json")
	_, err := Run(Options{Root: filepath.Join(t.TempDir(), "nope"), Output: out})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootNotFound))

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRunEmptyTreeWritesEmptyArray(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.json")
	summary, err := Run(Options{Root: t.TempDir(), Output: out})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestCustomMarker(t *testing.T) {
	root := t.TempDir()
	writeResult(t, root, "h3dgs/mipnerf360/bicycle/metrics.json", resultJSON("h3dgs", "mipnerf360", "bicycle", 25))
	writeResult(t, root, "h3dgs/mipnerf360/garden/result.json", resultJSON("h3dgs", "mipnerf360", "garden", 25))

	summary, err := Collect(Options{Root: root, Marker: "metrics.json"})
	require.NoError(t, err)
	require.Len(t, summary.Records, 1)
	assert.Equal(t, "bicycle", summary.Records[0].SceneName)
}

func TestWatchReingestsOnNewResults(t *testing.T) {
	root := t.TempDir()
	writeResult(t, root, "h3dgs/mipnerf360/bicycle/result.json", resultJSON("h3dgs", "mipnerf360", "bicycle", 25))
	out := filepath.Join(t.TempDir(), "results.json")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts := make(chan int, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Options{Root: root, Output: out}, 50*time.Millisecond, func(s Summary, err error) {
			if err == nil {
				counts <- s.Count()
			}
		})
	}()

	select {
	case n := <-counts:
		require.Equal(t, 1, n)
	case <-ctx.Done():
		t.Fatal("initial ingestion did not run")
	}

	writeResult(t, root, "h3dgs/mipnerf360/garden/result.json", resultJSON("h3dgs", "mipnerf360", "garden", 27))

	for {
		select {
		case n := <-counts:
			if n == 2 {
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-ctx.Done():
			t.Fatal("watch did not pick up the new result file")
		}
	}
}
