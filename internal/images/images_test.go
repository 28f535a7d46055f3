package images

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwiater/nvsbench/internal/registry"
	"github.com/mwiater/nvsbench/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatasets(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]registry.DatasetMeta{
		{DatasetName: "mipnerf360", Scenes: []string{"bicycle", "garden", "stump", "room"}},
	}, nil)
	require.NoError(t, err)
	return reg
}

func TestPathProviderSpecificScene(t *testing.T) {
	p := PathProvider{BaseURL: "https://cdn.example.org/", Datasets: testDatasets(t)}
	pairs, err := p.Pairs(context.Background(), results.Key{Method: "h3dgs", Dataset: "mipnerf360", Scene: "garden"})
	require.NoError(t, err)
	require.Len(t, pairs, PairsPerScene)

	assert.Equal(t, "https://cdn.example.org/results/h3dgs/mipnerf360/garden/website_images/render_0.png", pairs[0].Render.URL)
	assert.Equal(t, "https://cdn.example.org/results/h3dgs/mipnerf360/garden/website_images/gt_2.png", pairs[2].GroundTruth.URL)
	assert.Equal(t, "render_1.png", pairs[1].Render.Filename)
}

func TestPathProviderAllScenesSamplesFirstThree(t *testing.T) {
	p := PathProvider{Datasets: testDatasets(t)}
	pairs, err := p.Pairs(context.Background(), results.Key{Method: "h3dgs", Dataset: "mipnerf360", Scene: "all"})
	require.NoError(t, err)
	require.Len(t, pairs, ScenesPerDataset)

	var scenes []string
	for _, pair := range pairs {
		scenes = append(scenes, pair.Scene)
		assert.Equal(t, "render_0.png", pair.Render.Filename)
	}
	assert.Equal(t, []string{"bicycle", "garden", "stump"}, scenes)
	assert.Equal(t, "/results/h3dgs/mipnerf360/bicycle/website_images/render_0.png", pairs[0].Render.URL)
}

func TestPathProviderChecksPublicDir(t *testing.T) {
	public := t.TempDir()
	dir := filepath.Join(public, "results", "h3dgs", "mipnerf360", "garden", "website_images")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "render_1.png"), []byte("png"), 0o644))

	p := PathProvider{PublicDir: public, Datasets: testDatasets(t)}
	pairs, err := p.Pairs(context.Background(), results.Key{Method: "h3dgs", Dataset: "mipnerf360", Scene: "garden"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "render_1.png", pairs[0].Render.Filename)

	_, err = p.Pairs(context.Background(), results.Key{Method: "h3dgs", Dataset: "mipnerf360", Scene: "room"})
	assert.True(t, errors.Is(err, ErrNoImages))
}

func TestPathProviderErrors(t *testing.T) {
	p := PathProvider{Datasets: testDatasets(t)}

	_, err := p.Pairs(context.Background(), results.Key{Dataset: "mipnerf360", Scene: "garden"})
	assert.Error(t, err)

	_, err = p.Pairs(context.Background(), results.Key{Method: "h3dgs", Dataset: "unknown", Scene: "all"})
	assert.True(t, errors.Is(err, ErrNoImages))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Pairs(ctx, results.Key{Method: "h3dgs", Dataset: "mipnerf360", Scene: "garden"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPathProviderRejectsPathSegments(t *testing.T) {
	p := PathProvider{PublicDir: t.TempDir(), Datasets: testDatasets(t)}

	for _, key := range []results.Key{
		{Method: "../../x", Dataset: "mipnerf360", Scene: "garden"},
		{Method: "h3dgs", Dataset: "mipnerf360/..", Scene: "garden"},
		{Method: "h3dgs", Dataset: "mipnerf360", Scene: ".."},
		{Method: "h3dgs", Dataset: "mipnerf360", Scene: `a\b`},
		{Method: "a/b", Dataset: "mipnerf360", Scene: "all"},
	} {
		pairs, err := p.Pairs(context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %s", key)
		assert.Nil(t, pairs)
	}

	_, err := p.Pairs(context.Background(), results.Key{Method: "3dgs", Dataset: "mipnerf360", Scene: "garden"})
	assert.NotErrorIs(t, err, ErrInvalidKey)
}

func TestTrackerDiscardsStaleCompletions(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, StatusIdle, tr.Snapshot().Status)

	first := tr.Begin(results.Key{Method: "X", Dataset: "d", Scene: "s"})
	second := tr.Begin(results.Key{Method: "Y", Dataset: "d", Scene: "s"})

	assert.True(t, tr.Complete(second, []Pair{{Scene: "s"}}, nil))
	assert.False(t, tr.Complete(first, []Pair{{Scene: "stale"}}, nil))

	snap := tr.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, "Y", snap.Key.Method)
	require.Len(t, snap.Pairs, 1)
	assert.Equal(t, "s", snap.Pairs[0].Scene)
}

func TestTrackerOutOfOrderCompletion(t *testing.T) {
	tr := NewTracker()
	first := tr.Begin(results.Key{Method: "X"})
	second := tr.Begin(results.Key{Method: "Y"})

	assert.False(t, tr.Complete(first, nil, nil))
	assert.Equal(t, StatusLoading, tr.Snapshot().Status)
	assert.True(t, tr.Complete(second, nil, errors.New("boom")))

	snap := tr.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.EqualError(t, snap.Err, "boom")
	assert.False(t, tr.Complete(second, nil, nil), "a request completes once")
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	token := tr.Begin(results.Key{Method: "X"})
	tr.Reset()
	assert.False(t, tr.Complete(token, []Pair{{}}, nil))
	assert.Equal(t, StatusIdle, tr.Snapshot().Status)
}
