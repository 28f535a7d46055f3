package leaderboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwiater/nvsbench/internal/results"
)

// Order is a sort direction.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// ParseOrder resolves "asc"/"ascending" and "desc"/"descending".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want asc or desc)", s)
}

// Flip returns the opposite direction.
func (o Order) Flip() Order {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// SortState is the active sort key and direction of a leaderboard.
type SortState struct {
	Key   results.Metric `json:"key"`
	Order Order          `json:"order"`
}

// DefaultSort ranks by PSNR, best first.
func DefaultSort() SortState {
	return SortState{Key: results.PSNR, Order: Descending}
}

// BestFirst is the direction that puts the best value of m on top.
func BestFirst(m results.Metric) Order {
	if m.HigherIsBetter() {
		return Descending
	}
	return Ascending
}

// Select applies a column click: a new key starts best-first, the current
// key flips direction.
func (s SortState) Select(key results.Metric) SortState {
	if key == s.Key {
		return SortState{Key: key, Order: s.Order.Flip()}
	}
	return SortState{Key: key, Order: BestFirst(key)}
}

// Valuer is anything that can be ranked by a metric.
type Valuer interface {
	Value(results.Metric) float64
	TieKey() string
}

// Sort returns a copy of rows ordered by s. Equal values fall back to the
// rows' TieKey in ascending order, so the result does not depend on input
// order.
func Sort[T Valuer](rows []T, s SortState) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := out[i].Value(s.Key), out[j].Value(s.Key)
		if vi != vj {
			if s.Order == Ascending {
				return vi < vj
			}
			return vi > vj
		}
		return out[i].TieKey() < out[j].TieKey()
	})
	return out
}
