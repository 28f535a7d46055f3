package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mwiater/nvsbench/internal/images"
	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/registry"
	"github.com/mwiater/nvsbench/internal/report"
	"github.com/mwiater/nvsbench/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProvider struct {
	err error
}

func (p fakeProvider) Pairs(_ context.Context, key results.Key) ([]images.Pair, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []images.Pair{{Scene: key.Scene, Render: images.Image{URL: "/render_0.png", Filename: "render_0.png"}}}, nil
}

func newTestServer(t *testing.T, provider images.Provider) *Server {
	t.Helper()
	reg, err := registry.New(
		[]registry.DatasetMeta{{DatasetName: "mipnerf360", DatasetDisplayName: "Mip-NeRF 360", Scenes: []string{"bicycle", "garden"}}},
		[]registry.MethodMeta{
			{MethodName: "h3dgs", MethodDisplayName: "H3DGS", MethodURL: "https://example.org"},
			{MethodName: "pending", MethodDisplayName: "Pending"},
		},
	)
	require.NoError(t, err)
	board := leaderboard.NewBoard([]results.Result{
		{MethodName: "h3dgs", DatasetName: "mipnerf360", SceneName: "bicycle", PSNR: 25, SSIM: 0.7, LPIPS: 0.3, Time: 600},
		{MethodName: "h3dgs", DatasetName: "mipnerf360", SceneName: "garden", PSNR: 27, SSIM: 0.8, LPIPS: 0.2, Time: 1200},
		{MethodName: "3dgut", DatasetName: "mipnerf360", SceneName: "bicycle", PSNR: 24, SSIM: 0.75, LPIPS: 0.1, Time: 300},
		{MethodName: "3dgut", DatasetName: "zipnerf", SceneName: "alameda", PSNR: 22, SSIM: 0.6, LPIPS: 0.4, Time: 900},
	}, reg)
	return New(board, provider)
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newTestServer(t, nil), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","records":4}`, w.Body.String())
}

func TestDatasetsAndMethods(t *testing.T) {
	s := newTestServer(t, nil)

	var datasets []DatasetInfo
	w := get(t, s, "/api/datasets")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &datasets))
	require.Len(t, datasets, 2)
	assert.Equal(t, "Mip-NeRF 360", datasets[0].DisplayName)
	assert.Equal(t, []string{"bicycle", "garden"}, datasets[0].Scenes)
	assert.Equal(t, "zipnerf", datasets[1].Name)
	assert.Equal(t, "zipnerf", datasets[1].DisplayName)

	var methods []MethodInfo
	w = get(t, s, "/api/methods")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &methods))
	require.Len(t, methods, 3)
	assert.Equal(t, MethodInfo{Name: "h3dgs", DisplayName: "H3DGS", URL: "https://example.org", HasResults: true}, methods[0])
	assert.False(t, methods[1].HasResults)
	assert.Equal(t, "3dgut", methods[2].Name)
}

func TestRecords(t *testing.T) {
	var records []results.Result
	w := get(t, newTestServer(t, nil), "/api/records?dataset=mipnerf360&scene=bicycle")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestLeaderboard(t *testing.T) {
	s := newTestServer(t, nil)

	var lb report.Leaderboard
	w := get(t, s, "/api/leaderboard?dataset=mipnerf360&method=3dgut")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lb))
	require.Len(t, lb.Entries, 2)
	assert.Equal(t, "h3dgs", lb.Entries[0].Method)
	assert.InDelta(t, 26.0, lb.Entries[0].PSNR, 1e-9)
	assert.True(t, lb.Entries[1].Selected)

	w = get(t, s, "/api/leaderboard?dataset=mipnerf360&sort=lpips")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lb))
	assert.Equal(t, "asc", lb.SortOrder)
	assert.Equal(t, "3dgut", lb.Entries[0].Method)

	w = get(t, s, "/api/leaderboard?sort=lpips&order=desc")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lb))
	assert.Equal(t, "desc", lb.SortOrder)
}

func TestBadQueries(t *testing.T) {
	s := newTestServer(t, nil)
	for _, url := range []string{
		"/api/leaderboard?sort=fps",
		"/api/leaderboard?order=sideways",
		"/api/plot?metric=time",
		"/api/records?metric=nope",
		"/api/images?method=h3dgs",
	} {
		w := get(t, s, url)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		assert.Contains(t, w.Body.String(), `"error"`, url)
	}
}

func TestPlot(t *testing.T) {
	s := newTestServer(t, nil)

	var plot PlotResponse
	w := get(t, s, "/api/plot?dataset=mipnerf360&metric=ssim")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plot))
	assert.Equal(t, results.SSIM, plot.Metric)
	require.Len(t, plot.Points, 2)
	assert.Equal(t, "3dgut", plot.Points[0].Method)
	assert.InDelta(t, 5.0, plot.Points[0].Minutes, 1e-9)
	assert.Equal(t, "h3dgs", plot.Points[1].Method)
	assert.Equal(t, 2, plot.Points[1].Runs)
	assert.InDelta(t, 15.0, plot.Points[1].Minutes, 1e-9)
	assert.InDelta(t, 0.75, plot.Points[1].Value, 1e-9)

	w = get(t, s, "/api/plot?dataset=mipnerf360&format=html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "echarts")
}

func TestImagesRejectsTraversal(t *testing.T) {
	s := newTestServer(t, images.PathProvider{PublicDir: t.TempDir()})

	w := get(t, s, "/api/images?method=..%2F..%2Fx&dataset=mipnerf360&scene=garden")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid image selection")

	w = get(t, s, "/metrics")
	assert.NotContains(t, w.Body.String(), "nvsbench_image_failures_total 1")
}

func TestImages(t *testing.T) {
	var body ImagesResponse
	w := get(t, newTestServer(t, fakeProvider{}), "/api/images?method=h3dgs&dataset=mipnerf360&scene=garden")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, results.Key{Method: "h3dgs", Dataset: "mipnerf360", Scene: "garden"}, body.Key)
	assert.Len(t, body.Pairs, 1)

	failing := newTestServer(t, fakeProvider{err: errors.New("bucket unreachable")})
	w = get(t, failing, "/api/images?method=h3dgs&dataset=mipnerf360")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "bucket unreachable")

	w = get(t, failing, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nvsbench_image_failures_total 1")
	assert.Contains(t, w.Body.String(), `nvsbench_http_requests_total{code="502",route="/api/images"} 1`)
	assert.Contains(t, w.Body.String(), "nvsbench_records 4")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
