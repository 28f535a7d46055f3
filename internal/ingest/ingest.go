// Package ingest walks a tree of per-run result files, validates them and
// writes the canonical leaderboard dataset.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mwiater/nvsbench/internal/logging"
	"github.com/mwiater/nvsbench/internal/results"
	"github.com/mwiater/nvsbench/internal/util"
)

// DefaultMarker is the file name every per-run result is stored under.
const DefaultMarker = "result.json"

// Options controls a single ingestion pass.
type Options struct {
	Root   string
	Output string
	Marker string
}

func (o Options) marker() string {
	if m := strings.TrimSpace(o.Marker); m != "" {
		return m
	}
	return DefaultMarker
}

// Rejection records a result file that was skipped.
type Rejection struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Duplicate records a result file that replaced an earlier one with the same
// (method, dataset, scene) triple.
type Duplicate struct {
	Key      results.Key `json:"key"`
	Kept     string      `json:"kept"`
	Replaced string      `json:"replaced"`
}

// Summary describes the outcome of an ingestion pass.
type Summary struct {
	RunID      string           `json:"run_id"`
	Root       string           `json:"root"`
	Output     string           `json:"output,omitempty"`
	Files      int              `json:"files"`
	Records    []results.Result `json:"-"`
	Rejected   []Rejection      `json:"rejected"`
	Duplicates []Duplicate      `json:"duplicates"`
}

// Count is the number of records in the canonical dataset.
func (s Summary) Count() int {
	return len(s.Records)
}

// Run collects every result file under opts.Root and atomically replaces
// opts.Output with the canonical dataset. Nothing is written when the root
// cannot be read.
func Run(opts Options) (Summary, error) {
	summary, err := Collect(opts)
	if err != nil {
		return summary, err
	}
	if strings.TrimSpace(opts.Output) == "" {
		return summary, fmt.Errorf("no output path configured")
	}

	data, err := Encode(summary.Records)
	if err != nil {
		return summary, err
	}
	if err := util.WriteFileAtomic(opts.Output, data); err != nil {
		return summary, fmt.Errorf("write canonical dataset: %w", err)
	}
	summary.Output = opts.Output

	logging.LogEvent("[INGEST] run=%s wrote %d records to %s (%d rejected, %d duplicates)",
		summary.RunID, summary.Count(), opts.Output, len(summary.Rejected), len(summary.Duplicates))
	return summary, nil
}

// Collect discovers, validates and de-duplicates result files without
// writing anything. When two files share a (method, dataset, scene) triple
// the one later in traversal order wins and takes the earlier one's slot.
func Collect(opts Options) (Summary, error) {
	summary := Summary{
		RunID:      uuid.NewString(),
		Root:       opts.Root,
		Records:    []results.Result{},
		Rejected:   []Rejection{},
		Duplicates: []Duplicate{},
	}

	marker := opts.marker()
	paths, err := Discover(opts.Root, marker)
	if err != nil {
		return summary, err
	}
	summary.Files = len(paths)
	logging.LogEvent("[INGEST] run=%s found %d %s files under %s", summary.RunID, len(paths), marker, opts.Root)

	index := make(map[results.Key]int)
	sources := make(map[results.Key]string)
	for _, path := range paths {
		record, err := readResult(path)
		if err != nil {
			summary.Rejected = append(summary.Rejected, Rejection{Path: path, Reason: err.Error()})
			logging.LogWarning("Skipping invalid result file: %s: %v", path, err)
			continue
		}
		checkLayout(opts.Root, path, marker, record)

		key := record.Key()
		if i, seen := index[key]; seen {
			summary.Duplicates = append(summary.Duplicates, Duplicate{Key: key, Kept: path, Replaced: sources[key]})
			logging.LogRecord("duplicate", key.Method, key.Dataset, key.Scene,
				fmt.Sprintf("%s replaces %s", path, sources[key]))
			summary.Records[i] = record
			sources[key] = path
			continue
		}
		index[key] = len(summary.Records)
		sources[key] = path
		summary.Records = append(summary.Records, record)
	}

	return summary, nil
}

func readResult(path string) (results.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return results.Result{}, fmt.Errorf("read: %w", err)
	}
	if err := validateDocument(raw); err != nil {
		return results.Result{}, err
	}
	var record results.Result
	if err := json.Unmarshal(raw, &record); err != nil {
		return results.Result{}, fmt.Errorf("decode: %w", err)
	}
	record.MethodName = strings.TrimSpace(record.MethodName)
	record.DatasetName = strings.TrimSpace(record.DatasetName)
	record.SceneName = strings.TrimSpace(record.SceneName)
	return record, nil
}

// checkLayout warns when a file does not sit at
// <method>/<dataset>/<scene>/<marker> matching its own identifiers.
func checkLayout(root, path, marker string, record results.Result) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 4 {
		logging.LogRecord("layout", record.MethodName, record.DatasetName, record.SceneName,
			fmt.Sprintf("%s is not at <method>/<dataset>/<scene>/%s", rel, marker))
		return
	}
	if parts[0] != record.MethodName || parts[1] != record.DatasetName || parts[2] != record.SceneName {
		logging.LogRecord("layout", record.MethodName, record.DatasetName, record.SceneName,
			fmt.Sprintf("path %s disagrees with file contents", rel))
	}
}

// Encode renders records as the canonical JSON array.
func Encode(records []results.Result) ([]byte, error) {
	if records == nil {
		records = []results.Result{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal canonical dataset: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads a canonical dataset written by Run.
func Load(path string) ([]results.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read canonical dataset %s: %w", path, err)
	}
	var records []results.Result
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse canonical dataset %s: %w", path, err)
	}
	return records, nil
}
