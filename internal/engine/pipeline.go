package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"buyerfinder/internal/domain"
)

// ErrDefect marks an internal invariant violation (a normalization bug),
// not a recoverable input condition.
var ErrDefect = errors.New("consolidation defect")

// Stats describes one consolidation run.
type Stats struct {
	RawIn    int                         `json:"raw_in"`
	Rejected int                         `json:"rejected"`
	Merged   int                         `json:"merged"`
	Final    int                         `json:"final"`
	ByType   map[domain.ProspectType]int `json:"by_type"`
	BySource map[domain.SourceKind]int   `json:"by_source"`
}

// Engine runs the consolidation pipeline: normalize, deduplicate, classify,
// score, rank. It holds no per-run state and is safe to reuse across runs.
type Engine struct {
	rules   []Rule
	weights Weights
}

// New builds an engine. Empty rules or a zero weight table fall back to the
// built-in defaults.
func New(rules []Rule, weights Weights) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Engine{rules: rules, weights: weights}
}

// Consolidate runs the full pipeline over an already-materialized record
// set and returns the ranked prospect list. Rejected records never abort
// the run; they are only counted. The returned slice is sorted by score
// descending, ties kept in first-seen order.
func (e *Engine) Consolidate(records []domain.RawRecord) ([]domain.Prospect, Stats, error) {
	stats := Stats{
		RawIn:    len(records),
		ByType:   make(map[domain.ProspectType]int),
		BySource: make(map[domain.SourceKind]int),
	}

	normalized := make([]domain.Prospect, 0, len(records))
	for _, r := range records {
		p, ok := Normalize(r)
		if !ok {
			stats.Rejected++
			continue
		}
		normalized = append(normalized, p)
	}

	prospects := Deduplicate(normalized)
	stats.Merged = len(normalized) - len(prospects)

	for i := range prospects {
		if strings.TrimSpace(prospects[i].Name) == "" {
			return nil, stats, fmt.Errorf("%w: empty name reached scoring (record %d)", ErrDefect, i)
		}
		prospects[i].Type = e.Classify(prospects[i])
		prospects[i].Score = e.Score(prospects[i])

		stats.ByType[prospects[i].Type]++
		for _, k := range prospects[i].Sources {
			stats.BySource[k]++
		}
	}

	sort.SliceStable(prospects, func(i, j int) bool {
		return prospects[i].Score > prospects[j].Score
	})

	stats.Final = len(prospects)
	return prospects, stats, nil
}
