// Package images resolves the render / ground-truth comparison pairs shown
// for a selected (method, dataset, scene) triple.
package images

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mwiater/nvsbench/internal/registry"
	"github.com/mwiater/nvsbench/internal/results"
)

const (
	// PairsPerScene is the number of comparisons shown for a single scene.
	PairsPerScene = 3
	// ScenesPerDataset is the number of scenes sampled when every scene of a
	// dataset is selected.
	ScenesPerDataset = 3

	allScenes = "all"
)

var (
	// ErrNoImages is returned when none of the expected renders exist.
	ErrNoImages = errors.New("no comparison images available")
	// ErrInvalidKey is returned for identifiers that are not a single path
	// segment.
	ErrInvalidKey = errors.New("invalid image selection")
)

// Image is one picture of a comparison.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Pair is a method render next to its ground truth.
type Pair struct {
	Scene       string `json:"scene"`
	Render      Image  `json:"render"`
	GroundTruth Image  `json:"ground_truth"`
}

// Provider resolves comparison pairs for a selection.
type Provider interface {
	Pairs(ctx context.Context, key results.Key) ([]Pair, error)
}

// PathProvider derives image locations from the published results layout:
// <base>/results/<method>/<dataset>/<scene>/website_images/{render,gt}_<i>.png.
// When PublicDir is set, pairs whose render is missing on disk are dropped.
type PathProvider struct {
	BaseURL   string
	PublicDir string
	Datasets  *registry.Registry
}

// Pairs returns PairsPerScene pairs for a specific scene, or the first pair
// of each of the dataset's first ScenesPerDataset scenes for all scenes.
func (p PathProvider) Pairs(ctx context.Context, key results.Key) ([]Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key.Method == "" || key.Dataset == "" || key.Dataset == allScenes {
		return nil, fmt.Errorf("incomplete selection %s", key)
	}
	for _, segment := range []string{key.Method, key.Dataset, key.Scene} {
		if !validSegment(segment) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, segment)
		}
	}

	var pairs []Pair
	if key.Scene == "" || key.Scene == allScenes {
		scenes := p.scenes(key.Dataset)
		if len(scenes) == 0 {
			return nil, fmt.Errorf("%w: dataset %q has no known scenes", ErrNoImages, key.Dataset)
		}
		if len(scenes) > ScenesPerDataset {
			scenes = scenes[:ScenesPerDataset]
		}
		for _, scene := range scenes {
			pairs = append(pairs, p.pair(key.Method, key.Dataset, scene, 0))
		}
	} else {
		for i := 0; i < PairsPerScene; i++ {
			pairs = append(pairs, p.pair(key.Method, key.Dataset, key.Scene, i))
		}
	}

	if p.PublicDir == "" {
		return pairs, nil
	}
	kept := pairs[:0]
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(p.localPath(key.Method, key.Dataset, pair.Scene, pair.Render.Filename)); err == nil {
			kept = append(kept, pair)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoImages, key)
	}
	return kept, nil
}

// validSegment reports whether s can be joined into an image path without
// leaving its directory. The empty string stands for all scenes.
func validSegment(s string) bool {
	if s == "" {
		return true
	}
	if s == "." || s == ".." || strings.Contains(s, "..") {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, filepath.Separator)
}

func (p PathProvider) scenes(dataset string) []string {
	if p.Datasets == nil {
		return nil
	}
	return p.Datasets.Scenes(dataset)
}

func (p PathProvider) pair(method, dataset, scene string, i int) Pair {
	render := fmt.Sprintf("render_%d.png", i)
	gt := fmt.Sprintf("gt_%d.png", i)
	return Pair{
		Scene:       scene,
		Render:      Image{URL: p.url(method, dataset, scene, render), Filename: render},
		GroundTruth: Image{URL: p.url(method, dataset, scene, gt), Filename: gt},
	}
}

func (p PathProvider) url(method, dataset, scene, file string) string {
	rel := path.Join("results", method, dataset, scene, "website_images", file)
	return strings.TrimRight(p.BaseURL, "/") + "/" + rel
}

func (p PathProvider) localPath(method, dataset, scene, file string) string {
	return filepath.Join(p.PublicDir, "results", method, dataset, scene, "website_images", file)
}
