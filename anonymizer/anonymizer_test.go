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

package anonymizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/RNCHEN/privacy-k-anonymity/dataset"
	"github.com/RNCHEN/privacy-k-anonymity/hierarchy"
)

func makeTable(t *testing.T, header []string, rows ...[]string) *dataset.Table {
	t.Helper()
	table, err := dataset.New(header)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return table
}

// makeDefinition binds the standard City/State/Zip hierarchies for the table.
func makeDefinition(t *testing.T, table *dataset.Table) *Definition {
	t.Helper()
	city, err := hierarchy.Flat(table, "City", "Region")
	if err != nil {
		t.Fatalf("Flat(City): %v", err)
	}
	state, err := hierarchy.Flat(table, "State", "United States")
	if err != nil {
		t.Fatalf("Flat(State): %v", err)
	}
	zip, _, err := hierarchy.ZipPrefix(table, "Zip", nil)
	if err != nil {
		t.Fatalf("ZipPrefix: %v", err)
	}
	def := NewDefinition()
	def.SetAttribute("City", city)
	def.SetAttribute("State", state)
	def.SetAttribute("Zip", zip)
	return def
}

func TestAnonymizeSuppressesSmallClasses(t *testing.T) {
	table := makeTable(t,
		[]string{"Name", "City", "State", "Zip"},
		[]string{"a", "Pittsburgh", "PA", "15213"},
		[]string{"b", "Pittsburgh", "PA", "15213"},
		[]string{"c", "Erie", "PA", "16501"},
	)
	def := makeDefinition(t, table)

	result, err := Anonymize(table, def, &Config{K: 2, SuppressionLimit: 0.34, Metric: LossMetric})
	if err != nil {
		t.Fatalf("Anonymize: %v", err)
	}

	// Suppressing the single Erie record at level 0 loses less information
	// than generalizing every record.
	wantLevels := map[string]int{"City": 0, "State": 0, "Zip": 0}
	if diff := cmp.Diff(wantLevels, result.Levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "Pittsburgh", "PA", "15213"}, result.Output.Row(0)); diff != "" {
		t.Errorf("row 0 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"*", "*", "*", "*"}, result.Output.Row(2)); diff != "" {
		t.Errorf("suppressed row mismatch (-want +got):\n%s", diff)
	}

	wantStats := EquivalenceClassStats{
		AverageSize:   2,
		MinimalSize:   2,
		MaximalSize:   2,
		NumClasses:    1,
		NumRecords:    2,
		NumSuppressed: 1,
		TotalRecords:  3,
	}
	if diff := cmp.Diff(wantStats, result.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAnonymizeGeneralizesWhenSuppressionForbidden(t *testing.T) {
	table := makeTable(t,
		[]string{"Name", "City", "State", "Zip"},
		[]string{"a", "Pittsburgh", "PA", "15213"},
		[]string{"b", "Erie", "PA", "16501"},
	)
	def := makeDefinition(t, table)

	result, err := Anonymize(table, def, &Config{K: 2, SuppressionLimit: 0, Metric: LossMetric})
	if err != nil {
		t.Fatalf("Anonymize: %v", err)
	}

	// Only full generalization merges the two records; flat hierarchies are
	// clamped to their single level.
	wantLevels := map[string]int{"City": 1, "State": 1, "Zip": 4}
	if diff := cmp.Diff(wantLevels, result.Levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "Region", "United States", "*****"}, result.Output.Row(0)); diff != "" {
		t.Errorf("row 0 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "Region", "United States", "*****"}, result.Output.Row(1)); diff != "" {
		t.Errorf("row 1 mismatch (-want +got):\n%s", diff)
	}
	if result.Stats.NumSuppressed != 0 {
		t.Errorf("NumSuppressed = %d, want 0", result.Stats.NumSuppressed)
	}
	if result.Stats.MinimalSize != 2 {
		t.Errorf("MinimalSize = %d, want 2", result.Stats.MinimalSize)
	}
}

func TestAnonymizeNoFeasibleTransformation(t *testing.T) {
	table := makeTable(t,
		[]string{"Name", "City", "State", "Zip"},
		[]string{"a", "Pittsburgh", "PA", "15213"},
		[]string{"b", "Erie", "PA", "16501"},
		[]string{"c", "Altoona", "PA", "16601"},
	)
	def := makeDefinition(t, table)

	// Three records can never form a class of four, and nothing may be
	// suppressed.
	_, err := Anonymize(table, def, &Config{K: 4, SuppressionLimit: 0})
	if !errors.Is(err, ErrNoFeasibleTransformation) {
		t.Errorf("Anonymize: got err %v, want ErrNoFeasibleTransformation", err)
	}
}

func TestAnonymizeRejectsUncoveredValues(t *testing.T) {
	table := makeTable(t,
		[]string{"Name", "City", "State", "Zip"},
		[]string{"a", "Pittsburgh", "PA", "961"},
		[]string{"b", "Pittsburgh", "PA", "961"},
	)
	def := makeDefinition(t, table)

	_, err := Anonymize(table, def, &Config{K: 2, SuppressionLimit: 0.5})
	if err == nil {
		t.Fatalf("Anonymize with an uncovered zip value returned no error")
	}
	if errors.Is(err, ErrNoFeasibleTransformation) {
		t.Errorf("uncovered value reported as infeasibility: %v", err)
	}
	if !strings.Contains(err.Error(), "does not cover") {
		t.Errorf("error %q does not mention hierarchy coverage", err)
	}
}

func TestAnonymizeMissingAttribute(t *testing.T) {
	table := makeTable(t,
		[]string{"Name", "City"},
		[]string{"a", "Pittsburgh"},
	)
	city, err := hierarchy.Flat(table, "City", "Region")
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	def := NewDefinition()
	def.SetAttribute("City", city)
	def.SetAttribute("Zip", city)

	if _, err := Anonymize(table, def, &Config{K: 1, SuppressionLimit: 0}); err == nil {
		t.Errorf("Anonymize with an attribute missing from the table returned no error")
	}
}

func TestAnonymizeHeaderOnly(t *testing.T) {
	table := makeTable(t, []string{"Name", "City", "State", "Zip"})
	def := makeDefinition(t, table)

	result, err := Anonymize(table, def, &Config{K: 2, SuppressionLimit: 0.1})
	if err != nil {
		t.Fatalf("Anonymize: %v", err)
	}
	if got := result.Output.NumRows(); got != 0 {
		t.Errorf("NumRows = %d, want 0", got)
	}
	if diff := cmp.Diff(EquivalenceClassStats{}, result.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAnonymizeValidation(t *testing.T) {
	table := makeTable(t,
		[]string{"Name", "City", "State", "Zip"},
		[]string{"a", "Pittsburgh", "PA", "15213"},
	)
	def := makeDefinition(t, table)

	for _, tc := range []struct {
		desc string
		cfg  *Config
	}{
		{"nil config", nil},
		{"zero k", &Config{K: 0, SuppressionLimit: 0.1}},
		{"negative suppression limit", &Config{K: 2, SuppressionLimit: -0.1}},
		{"suppression limit above one", &Config{K: 2, SuppressionLimit: 1.5}},
	} {
		if _, err := Anonymize(table, def, tc.cfg); err == nil {
			t.Errorf("Anonymize: when %s got no error", tc.desc)
		}
	}

	if _, err := Anonymize(table, NewDefinition(), &Config{K: 2, SuppressionLimit: 0.1}); err == nil {
		t.Errorf("Anonymize with no bound attributes returned no error")
	}
}

func TestParseMetricKind(t *testing.T) {
	for _, tc := range []struct {
		name    string
		want    MetricKind
		wantErr bool
	}{
		{"loss", LossMetric, false},
		{"entropy", EntropyMetric, false},
		{"height", 0, true},
		{"", 0, true},
	} {
		got, err := ParseMetricKind(tc.name)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseMetricKind(%q): for err got %v, want %t", tc.name, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseMetricKind(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMetricKindString(t *testing.T) {
	if got := LossMetric.String(); got != "loss" {
		t.Errorf("LossMetric.String() = %q, want %q", got, "loss")
	}
	if got := EntropyMetric.String(); got != "entropy" {
		t.Errorf("EntropyMetric.String() = %q, want %q", got, "entropy")
	}
}

func TestEntropyMetricPrefersLessGeneralization(t *testing.T) {
	table := makeTable(t,
		[]string{"Name", "City", "State", "Zip"},
		[]string{"a", "Pittsburgh", "PA", "15213"},
		[]string{"b", "Pittsburgh", "PA", "15213"},
		[]string{"c", "Erie", "PA", "16501"},
		[]string{"d", "Erie", "PA", "16501"},
	)
	def := makeDefinition(t, table)

	result, err := Anonymize(table, def, &Config{K: 2, SuppressionLimit: 0, Metric: EntropyMetric})
	if err != nil {
		t.Fatalf("Anonymize: %v", err)
	}
	// Level 0 already satisfies k=2 and loses no entropy at all.
	wantLevels := map[string]int{"City": 0, "State": 0, "Zip": 0}
	if diff := cmp.Diff(wantLevels, result.Levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	if result.Score != 0 {
		t.Errorf("Score = %f, want 0 for an untouched table", result.Score)
	}
}
