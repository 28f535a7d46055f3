package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mwiater/nvsbench/internal/images"
	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/logging"
	"github.com/mwiater/nvsbench/internal/report"
	"github.com/mwiater/nvsbench/internal/results"
)

// DatasetInfo is one entry of /api/datasets.
type DatasetInfo struct {
	Name         string   `json:"dataset_name"`
	DisplayName  string   `json:"dataset_display_name"`
	Description  string   `json:"dataset_description,omitempty"`
	SourceLink   string   `json:"dataset_source_link,omitempty"`
	DownloadLink string   `json:"dataset_download_link,omitempty"`
	Scenes       []string `json:"scenes"`
}

// MethodInfo is one entry of /api/methods.
type MethodInfo struct {
	Name        string `json:"method_name"`
	DisplayName string `json:"method_display_name"`
	URL         string `json:"method_url,omitempty"`
	HasResults  bool   `json:"has_results"`
}

// PlotResponse is the body of /api/plot.
type PlotResponse struct {
	Metric results.Metric          `json:"metric"`
	Label  string                  `json:"label"`
	Points []leaderboard.PlotPoint `json:"points"`
}

// ImagesResponse is the body of /api/images.
type ImagesResponse struct {
	Key   results.Key   `json:"key"`
	Pairs []images.Pair `json:"pairs"`
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "records": s.board.Len()})
}

func (s *Server) handleDatasets(c *gin.Context) {
	reg := s.board.Registry()
	out := make([]DatasetInfo, 0)
	for _, name := range s.board.Datasets() {
		info := DatasetInfo{Name: name, DisplayName: reg.DatasetDisplayName(name), Scenes: s.board.Scenes(name)}
		if meta, ok := reg.Dataset(name); ok {
			info.Description = meta.DatasetDescription
			info.SourceLink = meta.DatasetSourceLink
			info.DownloadLink = meta.DatasetDownloadLink
		}
		if info.Scenes == nil {
			info.Scenes = []string{}
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleMethods(c *gin.Context) {
	reg := s.board.Registry()
	withResults := make(map[string]bool)
	for _, name := range s.board.Methods() {
		withResults[name] = true
	}

	out := make([]MethodInfo, 0)
	seen := make(map[string]bool)
	for _, meta := range reg.Methods() {
		seen[meta.MethodName] = true
		out = append(out, MethodInfo{
			Name:        meta.MethodName,
			DisplayName: reg.MethodDisplayName(meta.MethodName),
			URL:         meta.MethodURL,
			HasResults:  withResults[meta.MethodName],
		})
	}
	for _, name := range s.board.Methods() {
		if !seen[name] {
			out = append(out, MethodInfo{Name: name, DisplayName: name, HasResults: true})
		}
	}
	c.JSON(http.StatusOK, out)
}

// stateFromQuery applies the dataset, scene, method and metric parameters
// to a fresh selection, in that order.
func stateFromQuery(c *gin.Context) (leaderboard.State, error) {
	state := leaderboard.NewState().
		WithDataset(c.Query("dataset")).
		WithScene(c.Query("scene")).
		ToggleMethod(c.Query("method"))

	if raw := c.Query("metric"); raw != "" {
		metric, err := results.ParseMetric(raw)
		if err != nil {
			return state, err
		}
		if !metric.Plottable() {
			return state, fmt.Errorf("metric %s cannot be plotted against time", metric)
		}
		state = state.WithMetric(metric)
	}
	return state, nil
}

func sortFromQuery(c *gin.Context) (leaderboard.SortState, error) {
	s := leaderboard.DefaultSort()
	if raw := c.Query("sort"); raw != "" {
		key, err := results.ParseMetric(raw)
		if err != nil {
			return s, err
		}
		s = leaderboard.SortState{Key: key, Order: leaderboard.BestFirst(key)}
	}
	if raw := c.Query("order"); raw != "" {
		order, err := leaderboard.ParseOrder(raw)
		if err != nil {
			return s, err
		}
		s.Order = order
	}
	return s, nil
}

func (s *Server) handleRecords(c *gin.Context) {
	state, err := stateFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.board.Records(state))
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	state, err := stateFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	sort, err := sortFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, report.NewLeaderboard(s.board.Rows(state, sort), state, sort))
}

func (s *Server) handlePlot(c *gin.Context) {
	state, err := stateFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	points := s.board.Points(state)

	if strings.EqualFold(c.Query("format"), "html") {
		subtitle := "dataset=" + state.Dataset + " scene=" + state.Scene
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := report.RenderScatter(c.Writer, points, state.Metric, subtitle); err != nil {
			logging.LogWarning("render plot: %v", err)
		}
		return
	}
	c.JSON(http.StatusOK, PlotResponse{Metric: state.Metric, Label: state.Metric.Label(), Points: points})
}

func (s *Server) handleImages(c *gin.Context) {
	state, err := stateFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	key, ok := state.ImageKey()
	if !ok {
		badRequest(c, errors.New("method and a specific dataset are required"))
		return
	}
	if s.provider == nil {
		s.metrics.imageFailures.Inc()
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "no image source configured"})
		return
	}

	pairs, err := s.provider.Pairs(c.Request.Context(), key)
	if errors.Is(err, images.ErrInvalidKey) {
		badRequest(c, err)
		return
	}
	if err != nil {
		s.metrics.imageFailures.Inc()
		logging.LogRecord("images", key.Method, key.Dataset, key.Scene, err.Error())
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ImagesResponse{Key: key, Pairs: pairs})
}
