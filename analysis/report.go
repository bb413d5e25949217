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

package analysis

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteReport renders the evaluation as a sectioned plain-text report.
func WriteReport(w io.Writer, r *Report) error {
	var sb strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&sb, "\n%s\n", rule)
	fmt.Fprintf(&sb, "K-ANONYMITY EVALUATION REPORT (k = %d)\n", r.K)
	fmt.Fprintf(&sb, "%s\n", rule)

	fmt.Fprintf(&sb, "\n1. DATASET OVERVIEW\n%s\n", strings.Repeat("-", 20))
	fmt.Fprintf(&sb, "Total Records: %d\n", r.NumRecords)
	fmt.Fprintf(&sb, "Quasi-identifiers: %s\n", strings.Join(r.QuasiIdentifiers, ", "))
	fmt.Fprintf(&sb, "Satisfies k-anonymity (k=%d): %t\n", r.K, r.SatisfiesKAnonymity)

	fmt.Fprintf(&sb, "\n2. PRIVACY PROTECTION METRICS\n%s\n", strings.Repeat("-", 30))
	fmt.Fprintf(&sb, "Maximum Re-identification Risk: %.2f%%\n", r.Risks.MaxRisk*100)
	fmt.Fprintf(&sb, "Average Re-identification Risk: %.2f%%\n", r.Risks.AvgRisk*100)

	fmt.Fprintf(&sb, "\n3. EQUIVALENCE CLASS METRICS\n%s\n", strings.Repeat("-", 30))
	fmt.Fprintf(&sb, "Number of Equivalence Classes: %d\n", r.ECMetrics.NumClasses)
	fmt.Fprintf(&sb, "Minimum Equivalence Class Size: %d\n", r.ECMetrics.MinSize)
	fmt.Fprintf(&sb, "Maximum Equivalence Class Size: %d\n", r.ECMetrics.MaxSize)
	fmt.Fprintf(&sb, "Average Equivalence Class Size: %.2f\n", r.ECMetrics.AvgSize)
	fmt.Fprintf(&sb, "Equivalence Class Size Variance: %.2f\n", r.ECMetrics.SizeVariance)
	fmt.Fprintf(&sb, "Unique Records: %d (%.2f%%)\n", r.ECMetrics.UniqueRecords, r.ECMetrics.UniqueRecordsPercentage)

	fmt.Fprintf(&sb, "\n4. INFORMATION LOSS METRICS\n%s\n", strings.Repeat("-", 30))
	fmt.Fprintf(&sb, "Average Information Loss: %.2f%%\n", r.AverageInformationLoss)
	fmt.Fprintf(&sb, "Information Loss by Attribute:\n")
	attrs := make([]string, 0, len(r.InformationLoss))
	for attr := range r.InformationLoss {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		fmt.Fprintf(&sb, "  - %s: %.2f%%\n", attr, r.InformationLoss[attr].TotalLossPercentage)
	}
	fmt.Fprintf(&sb, "\nSuppression Rate: %.2f%%\n", r.SuppressionRate)
	fmt.Fprintf(&sb, "Discernibility Metric: %d\n", r.Discernibility)

	fmt.Fprintf(&sb, "\n5. ATTRIBUTE RISKS\n%s\n", strings.Repeat("-", 20))
	for _, ar := range r.AttributeRisks {
		fmt.Fprintf(&sb, "Attribute: %s\n", ar.Identifier)
		fmt.Fprintf(&sb, " - Alpha distinction: %f\n", ar.Distinction)
		fmt.Fprintf(&sb, " - Alpha separation: %f\n", ar.Separation)
	}

	fmt.Fprintf(&sb, "\n6. RECOMMENDATIONS\n%s\n", strings.Repeat("-", 20))
	if !r.SatisfiesKAnonymity {
		fmt.Fprintf(&sb, "The dataset does NOT satisfy k-anonymity for k=%d.\n", r.K)
		fmt.Fprintf(&sb, "Minimum equivalence class size is %d (should be >= %d).\n", r.ECMetrics.MinSize, r.K)
	} else {
		fmt.Fprintf(&sb, "The dataset satisfies k-anonymity for k=%d.\n", r.K)
	}
	if r.Risks.MaxRisk > 0.5 {
		fmt.Fprintf(&sb, "Maximum re-identification risk is high (%.2f%%).\n", r.Risks.MaxRisk*100)
	}
	if r.ECMetrics.UniqueRecords > 0 {
		fmt.Fprintf(&sb, "There are %d unique records in the dataset.\n", r.ECMetrics.UniqueRecords)
	}
	fmt.Fprintf(&sb, "\n%s\n", rule)

	_, err := io.WriteString(w, sb.String())
	return err
}
