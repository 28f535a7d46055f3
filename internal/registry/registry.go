// Package registry loads the hand-maintained dataset and method metadata and
// answers lookups by name.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DatasetMeta describes one benchmark dataset. Scenes are in display order.
type DatasetMeta struct {
	DatasetName         string   `json:"dataset_name" validate:"required"`
	DatasetDisplayName  string   `json:"dataset_display_name"`
	DatasetDescription  string   `json:"dataset_description"`
	DatasetSourceLink   string   `json:"dataset_source_link" validate:"omitempty,url"`
	DatasetDownloadLink string   `json:"dataset_download_link" validate:"omitempty,url"`
	Scenes              []string `json:"scenes" validate:"dive,required"`
}

// MethodMeta describes one benchmarked method.
type MethodMeta struct {
	MethodName        string `json:"method_name" validate:"required"`
	MethodDisplayName string `json:"method_display_name"`
	MethodURL         string `json:"method_url" validate:"omitempty,url"`
}

// Registry is the read-only view of both registries.
type Registry struct {
	datasets     []DatasetMeta
	methods      []MethodMeta
	datasetIndex map[string]int
	methodIndex  map[string]int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New builds a registry from already decoded entries. Entries are validated
// and names must be unique within each list.
func New(datasets []DatasetMeta, methods []MethodMeta) (*Registry, error) {
	reg := &Registry{
		datasets:     append([]DatasetMeta(nil), datasets...),
		methods:      append([]MethodMeta(nil), methods...),
		datasetIndex: make(map[string]int, len(datasets)),
		methodIndex:  make(map[string]int, len(methods)),
	}

	for i, d := range reg.datasets {
		if err := validate.Struct(d); err != nil {
			return nil, fmt.Errorf("dataset entry %d (%q): %w", i, d.DatasetName, err)
		}
		if _, dup := reg.datasetIndex[d.DatasetName]; dup {
			return nil, fmt.Errorf("dataset %q listed more than once", d.DatasetName)
		}
		reg.datasetIndex[d.DatasetName] = i
	}
	for i, m := range reg.methods {
		if err := validate.Struct(m); err != nil {
			return nil, fmt.Errorf("method entry %d (%q): %w", i, m.MethodName, err)
		}
		if _, dup := reg.methodIndex[m.MethodName]; dup {
			return nil, fmt.Errorf("method %q listed more than once", m.MethodName)
		}
		reg.methodIndex[m.MethodName] = i
	}
	return reg, nil
}

// Empty returns a registry with no entries. Every lookup falls back.
func Empty() *Registry {
	reg, _ := New(nil, nil)
	return reg
}

// Load reads both registry files. A path that is empty or does not exist
// yields an empty list for that registry.
func Load(datasetsPath, methodsPath string) (*Registry, error) {
	var datasets []DatasetMeta
	if err := readJSONArray(datasetsPath, &datasets); err != nil {
		return nil, err
	}
	var methods []MethodMeta
	if err := readJSONArray(methodsPath, &methods); err != nil {
		return nil, err
	}
	return New(datasets, methods)
}

func readJSONArray(path string, dst any) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read registry %s: %w", trimmed, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse registry %s: %w", trimmed, err)
	}
	return nil
}

// Datasets returns the datasets in registry order.
func (r *Registry) Datasets() []DatasetMeta {
	return append([]DatasetMeta(nil), r.datasets...)
}

// Methods returns the methods in registry order.
func (r *Registry) Methods() []MethodMeta {
	return append([]MethodMeta(nil), r.methods...)
}

// Dataset looks up a dataset by name.
func (r *Registry) Dataset(name string) (DatasetMeta, bool) {
	i, ok := r.datasetIndex[name]
	if !ok {
		return DatasetMeta{}, false
	}
	return r.datasets[i], true
}

// Method looks up a method by name.
func (r *Registry) Method(name string) (MethodMeta, bool) {
	i, ok := r.methodIndex[name]
	if !ok {
		return MethodMeta{}, false
	}
	return r.methods[i], true
}

// MethodDisplayName returns the display name, or the raw identifier when the
// method is unknown or has no display name.
func (r *Registry) MethodDisplayName(name string) string {
	if m, ok := r.Method(name); ok && m.MethodDisplayName != "" {
		return m.MethodDisplayName
	}
	return name
}

// DatasetDisplayName returns the display name, or the raw identifier.
func (r *Registry) DatasetDisplayName(name string) string {
	if d, ok := r.Dataset(name); ok && d.DatasetDisplayName != "" {
		return d.DatasetDisplayName
	}
	return name
}

// Scenes returns the ordered scenes of a dataset, or nil when unknown.
func (r *Registry) Scenes(dataset string) []string {
	d, ok := r.Dataset(dataset)
	if !ok {
		return nil
	}
	return append([]string(nil), d.Scenes...)
}
