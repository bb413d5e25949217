//
// Copyright 2025 RNCHEN
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package anonymizer transforms a table so that every remaining record is
// indistinguishable from at least k-1 others with respect to the bound
// quasi-identifier attributes.
//
// The engine sweeps uniform generalization levels over the attribute
// hierarchies, suppresses equivalence classes smaller than k, rejects
// candidates that exceed the suppression limit, and keeps the feasible
// candidate with the lowest quality-metric score. It deliberately does not
// search the full generalization lattice; per-attribute level combinations
// are out of scope.
package anonymizer

import (
	"errors"
	"fmt"
	"sort"

	log "github.com/golang/glog"

	"github.com/RNCHEN/privacy-k-anonymity/checks"
	"github.com/RNCHEN/privacy-k-anonymity/dataset"
	"github.com/RNCHEN/privacy-k-anonymity/hierarchy"
)

// SuppressedValue replaces every cell of a suppressed record.
const SuppressedValue = "*"

// ErrNoFeasibleTransformation is returned when no swept transformation
// satisfies the configured privacy model. It is a distinct outcome, not an
// input error: the data and configuration are well formed, they just cannot
// be reconciled.
var ErrNoFeasibleTransformation = errors.New("no transformation satisfies the privacy model")

// Config holds the privacy-model parameters.
type Config struct {
	K                int        // Minimum equivalence-class size. Required, at least 1.
	SuppressionLimit float64    // Maximum suppressed-record fraction in [0, 1].
	Metric           MetricKind // Quality metric used to rank feasible candidates. Defaults to LossMetric.
}

// Definition binds quasi-identifier columns to their generalization
// hierarchies.
type Definition struct {
	attrs map[string]*hierarchy.Hierarchy
}

// NewDefinition returns an empty attribute definition.
func NewDefinition() *Definition {
	return &Definition{attrs: make(map[string]*hierarchy.Hierarchy)}
}

// SetAttribute binds a column to a hierarchy, replacing any previous binding.
func (d *Definition) SetAttribute(column string, h *hierarchy.Hierarchy) {
	d.attrs[column] = h
}

// Hierarchy returns the hierarchy bound to the column.
func (d *Definition) Hierarchy(column string) (*hierarchy.Hierarchy, bool) {
	h, ok := d.attrs[column]
	return h, ok
}

// Attributes returns the bound column names in sorted order.
func (d *Definition) Attributes() []string {
	names := make([]string, 0, len(d.attrs))
	for name := range d.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EquivalenceClassStats summarizes the equivalence classes of an anonymized
// table. Suppressed records are excluded from the class statistics and
// counted separately.
type EquivalenceClassStats struct {
	AverageSize   float64
	MinimalSize   int
	MaximalSize   int
	NumClasses    int
	NumRecords    int // records excluding suppressed
	NumSuppressed int
	TotalRecords  int
}

// Result is the output of a successful anonymization run.
type Result struct {
	Output *dataset.Table
	Levels map[string]int // applied generalization level per attribute
	Stats  EquivalenceClassStats
	Score  float64
}

// Anonymize applies the privacy model to the table. Before any transformation
// it verifies that every distinct value of every bound attribute is covered by
// its hierarchy; an uncovered value aborts the run, since feeding it
// downstream would corrupt the output silently.
func Anonymize(t *dataset.Table, def *Definition, cfg *Config) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("Anonymize: input table is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("Anonymize: config is nil")
	}
	if err := checks.CheckK(cfg.K); err != nil {
		return nil, fmt.Errorf("Anonymize: %v", err)
	}
	if err := checks.CheckSuppressionLimit(cfg.SuppressionLimit); err != nil {
		return nil, fmt.Errorf("Anonymize: %v", err)
	}
	metric := cfg.Metric
	if metric < LossMetric || metric > EntropyMetric {
		return nil, fmt.Errorf("Anonymize: unknown metric kind %v", metric)
	}

	attrs := def.Attributes()
	if len(attrs) == 0 {
		return nil, fmt.Errorf("Anonymize: no quasi-identifier attributes bound")
	}

	cols := make(map[string]int, len(attrs))
	maxDepth := 0
	for _, attr := range attrs {
		col, ok := t.Column(attr)
		if !ok {
			return nil, fmt.Errorf("Anonymize: attribute %q not present in table", attr)
		}
		cols[attr] = col
		h, _ := def.Hierarchy(attr)
		if missing := h.Uncovered(t.DistinctValues(col)); len(missing) > 0 {
			return nil, fmt.Errorf("Anonymize: hierarchy for %q does not cover %d value(s): %v", attr, len(missing), missing)
		}
		if h.Depth() > maxDepth {
			maxDepth = h.Depth()
		}
	}

	var best *Result
	for level := 0; level <= maxDepth; level++ {
		out, levels, err := applyLevel(t, def, attrs, cols, level)
		if err != nil {
			return nil, fmt.Errorf("Anonymize: %v", err)
		}
		suppressed := suppressSmallClasses(out, attrs, cols, cfg.K)
		total := out.NumRows()
		if total > 0 && float64(suppressed)/float64(total) > cfg.SuppressionLimit {
			log.Infof("Anonymize: level %d suppresses %d/%d records, over the limit of %f", level, suppressed, total, cfg.SuppressionLimit)
			continue
		}
		score := score(metric, t, out, attrs, cols)
		log.Infof("Anonymize: level %d is feasible with %d suppressed record(s), score %f", level, suppressed, score)
		if best == nil || score < best.Score {
			best = &Result{
				Output: out,
				Levels: levels,
				Stats:  classStats(out, attrs, cols, suppressed),
				Score:  score,
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("Anonymize: %w", ErrNoFeasibleTransformation)
	}
	return best, nil
}

// applyLevel generalizes every bound attribute to the given level, clamped to
// the attribute's hierarchy depth.
func applyLevel(t *dataset.Table, def *Definition, attrs []string, cols map[string]int, level int) (*dataset.Table, map[string]int, error) {
	levels := make(map[string]int, len(attrs))
	for _, attr := range attrs {
		h, _ := def.Hierarchy(attr)
		l := level
		if l > h.Depth() {
			l = h.Depth()
		}
		levels[attr] = l
	}

	out := t.Empty()
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		for _, attr := range attrs {
			h, _ := def.Hierarchy(attr)
			g, err := h.Generalize(row[cols[attr]], levels[attr])
			if err != nil {
				return nil, nil, err
			}
			row[cols[attr]] = g
		}
		if err := out.Append(row); err != nil {
			return nil, nil, err
		}
	}
	return out, levels, nil
}

// suppressSmallClasses replaces every cell of records belonging to
// equivalence classes smaller than k with the suppression mask, and returns
// the number of suppressed records. The table is modified in place.
func suppressSmallClasses(t *dataset.Table, attrs []string, cols map[string]int, k int) int {
	sizes := make(map[string]int)
	keys := make([]string, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		keys[i] = classKey(t, i, attrs, cols)
		sizes[keys[i]]++
	}

	masked := make([]string, t.NumColumns())
	for i := range masked {
		masked[i] = SuppressedValue
	}

	suppressed := 0
	for i := 0; i < t.NumRows(); i++ {
		if sizes[keys[i]] < k {
			t.SetRow(i, masked)
			suppressed++
		}
	}
	return suppressed
}

// classStats computes equivalence-class statistics over the non-suppressed
// records of the anonymized table.
func classStats(t *dataset.Table, attrs []string, cols map[string]int, suppressed int) EquivalenceClassStats {
	sizes := make(map[string]int)
	for i := 0; i < t.NumRows(); i++ {
		if isSuppressed(t, i) {
			continue
		}
		sizes[classKey(t, i, attrs, cols)]++
	}

	stats := EquivalenceClassStats{
		NumSuppressed: suppressed,
		TotalRecords:  t.NumRows(),
		NumRecords:    t.NumRows() - suppressed,
		NumClasses:    len(sizes),
	}
	first := true
	for _, size := range sizes {
		if first || size < stats.MinimalSize {
			stats.MinimalSize = size
		}
		if size > stats.MaximalSize {
			stats.MaximalSize = size
		}
		first = false
	}
	if stats.NumClasses > 0 {
		stats.AverageSize = float64(stats.NumRecords) / float64(stats.NumClasses)
	}
	return stats
}

// classKey builds the grouping key of a record over the quasi-identifier
// columns. The separator is a control character so that ordinary field values
// cannot collide.
func classKey(t *dataset.Table, row int, attrs []string, cols map[string]int) string {
	key := ""
	for j, attr := range attrs {
		if j > 0 {
			key += "\x1f"
		}
		key += t.Value(row, cols[attr])
	}
	return key
}

// isSuppressed reports whether every cell of the row carries the suppression
// mask.
func isSuppressed(t *dataset.Table, row int) bool {
	for col := 0; col < t.NumColumns(); col++ {
		if t.Value(row, col) != SuppressedValue {
			return false
		}
	}
	return true
}
