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

// Package analysis evaluates an anonymized table: equivalence-class
// statistics, re-identification risk, information loss, and per-attribute
// distinction and separation.
package analysis

import (
	"fmt"
	"strings"

	"github.com/grd/stat"

	"github.com/RNCHEN/privacy-k-anonymity/dataset"
)

// suppressed is the cell value of fully suppressed records.
const suppressed = "*"

// RiskMetrics holds record-level re-identification risk figures. A record's
// risk is the reciprocal of its equivalence-class size.
type RiskMetrics struct {
	MaxRisk float64
	AvgRisk float64
}

// EquivalenceClassMetrics summarizes the equivalence-class structure of the
// table.
type EquivalenceClassMetrics struct {
	NumClasses              int
	MinSize                 int
	MaxSize                 int
	AvgSize                 float64
	SizeVariance            float64
	UniqueRecords           int
	UniqueRecordsPercentage float64
	SizeDistribution        map[int]int
}

// AttributeLoss holds per-attribute information-loss figures, as percentages
// of the record count.
type AttributeLoss struct {
	DistinctValues        int
	AsteriskPercentage    float64
	GeneralizedPercentage float64
	TotalLossPercentage   float64
}

// AttributeRisk holds the distinction and separation of a single
// quasi-identifier: the fraction of distinct values among records, and the
// fraction of record pairs the attribute tells apart.
type AttributeRisk struct {
	Identifier  string
	Distinction float64
	Separation  float64
}

// Report is the full evaluation of an anonymized table against a k value.
type Report struct {
	K                      int
	QuasiIdentifiers       []string
	NumRecords             int
	SatisfiesKAnonymity    bool
	Risks                  RiskMetrics
	ECMetrics              EquivalenceClassMetrics
	InformationLoss        map[string]AttributeLoss
	AverageInformationLoss float64
	SuppressionRate        float64
	Discernibility         int64
	AttributeRisks         []AttributeRisk
}

// Evaluate computes the evaluation report for the table. Quasi-identifiers
// are the columns that still carry information, i.e. are not entirely
// suppressed.
func Evaluate(t *dataset.Table, k int) (*Report, error) {
	if t == nil {
		return nil, fmt.Errorf("Evaluate: input table is nil")
	}
	if k < 1 {
		return nil, fmt.Errorf("Evaluate: k is %d, must be at least 1", k)
	}

	qis := quasiIdentifiers(t)
	classes := equivalenceClasses(t, qis)

	report := &Report{
		K:                k,
		QuasiIdentifiers: qis,
		NumRecords:       t.NumRows(),
	}
	report.Risks = riskMetrics(classes)
	report.ECMetrics = classMetrics(classes, t.NumRows())
	report.InformationLoss, report.AverageInformationLoss = informationLoss(t, qis)
	report.SuppressionRate = suppressionRate(t)
	report.Discernibility = discernibility(classes)
	report.AttributeRisks = attributeRisks(t, qis)
	report.SatisfiesKAnonymity = t.NumRows() == 0 || report.ECMetrics.MinSize >= k
	return report, nil
}

// quasiIdentifiers returns, in header order, the columns with at least one
// non-suppressed value.
func quasiIdentifiers(t *dataset.Table) []string {
	var qis []string
	for col, name := range t.Header() {
		allSuppressed := true
		for row := 0; row < t.NumRows(); row++ {
			if t.Value(row, col) != suppressed {
				allSuppressed = false
				break
			}
		}
		if !allSuppressed {
			qis = append(qis, name)
		}
	}
	return qis
}

// equivalenceClasses groups record indices by their quasi-identifier tuple.
func equivalenceClasses(t *dataset.Table, qis []string) map[string][]int {
	cols := make([]int, len(qis))
	for i, name := range qis {
		cols[i], _ = t.Column(name)
	}
	classes := make(map[string][]int)
	var sb strings.Builder
	for row := 0; row < t.NumRows(); row++ {
		sb.Reset()
		for i, col := range cols {
			if i > 0 {
				sb.WriteByte('\x1f')
			}
			sb.WriteString(t.Value(row, col))
		}
		key := sb.String()
		classes[key] = append(classes[key], row)
	}
	return classes
}

func riskMetrics(classes map[string][]int) RiskMetrics {
	var m RiskMetrics
	if len(classes) == 0 {
		return m
	}
	var sum float64
	for _, members := range classes {
		risk := 1.0 / float64(len(members))
		if risk > m.MaxRisk {
			m.MaxRisk = risk
		}
		sum += risk
	}
	m.AvgRisk = sum / float64(len(classes))
	return m
}

func classMetrics(classes map[string][]int, totalRecords int) EquivalenceClassMetrics {
	m := EquivalenceClassMetrics{
		NumClasses:       len(classes),
		SizeDistribution: make(map[int]int),
	}
	if len(classes) == 0 {
		return m
	}

	sizes := make(stat.IntSlice, 0, len(classes))
	var sum int
	first := true
	for _, members := range classes {
		size := len(members)
		sizes = append(sizes, int64(size))
		sum += size
		m.SizeDistribution[size]++
		if size == 1 {
			m.UniqueRecords++
		}
		if first || size < m.MinSize {
			m.MinSize = size
		}
		if size > m.MaxSize {
			m.MaxSize = size
		}
		first = false
	}
	m.AvgSize = float64(sum) / float64(len(classes))
	m.SizeVariance = stat.Variance(sizes)
	if totalRecords > 0 {
		m.UniqueRecordsPercentage = float64(m.UniqueRecords) / float64(totalRecords) * 100
	}
	return m
}

// informationLoss measures, per quasi-identifier, how many values were fully
// suppressed or partially generalized (carry a multi-character mask), as
// percentages of the record count, plus the dataset-wide average.
func informationLoss(t *dataset.Table, qis []string) (map[string]AttributeLoss, float64) {
	loss := make(map[string]AttributeLoss, len(qis))
	n := t.NumRows()
	for _, name := range qis {
		col, _ := t.Column(name)
		var l AttributeLoss
		l.DistinctValues = len(t.DistinctValues(col))
		asterisks, generalized := 0, 0
		for row := 0; row < n; row++ {
			switch v := t.Value(row, col); {
			case v == suppressed:
				asterisks++
			case strings.Contains(v, "**"):
				generalized++
			}
		}
		if n > 0 {
			l.AsteriskPercentage = float64(asterisks) / float64(n) * 100
			l.GeneralizedPercentage = float64(generalized) / float64(n) * 100
			l.TotalLossPercentage = float64(asterisks+generalized) / float64(n) * 100
		}
		loss[name] = l
	}

	var avg float64
	if len(loss) > 0 {
		for _, l := range loss {
			avg += l.TotalLossPercentage
		}
		avg /= float64(len(loss))
	}
	return loss, avg
}

// suppressionRate is the percentage of all cells carrying the suppression
// mask.
func suppressionRate(t *dataset.Table) float64 {
	total := t.NumRows() * t.NumColumns()
	if total == 0 {
		return 0
	}
	count := 0
	for row := 0; row < t.NumRows(); row++ {
		for col := 0; col < t.NumColumns(); col++ {
			if t.Value(row, col) == suppressed {
				count++
			}
		}
	}
	return float64(count) / float64(total) * 100
}

// discernibility is the discernibility metric: the sum of squared
// equivalence-class sizes.
func discernibility(classes map[string][]int) int64 {
	var dm int64
	for _, members := range classes {
		dm += int64(len(members)) * int64(len(members))
	}
	return dm
}

// attributeRisks computes per-attribute distinction and separation, the two
// figures the attribute-level risk model reports.
func attributeRisks(t *dataset.Table, qis []string) []AttributeRisk {
	n := t.NumRows()
	risks := make([]AttributeRisk, 0, len(qis))
	for _, name := range qis {
		col, _ := t.Column(name)
		r := AttributeRisk{Identifier: name}
		if n > 0 {
			counts := make(map[string]int)
			for row := 0; row < n; row++ {
				counts[t.Value(row, col)]++
			}
			r.Distinction = float64(len(counts)) / float64(n)
			if n > 1 {
				// Pairs not separated share the attribute value.
				var same int64
				for _, c := range counts {
					same += int64(c) * int64(c-1) / 2
				}
				totalPairs := int64(n) * int64(n-1) / 2
				r.Separation = float64(totalPairs-same) / float64(totalPairs)
			}
		}
		risks = append(risks, r)
	}
	return risks
}
