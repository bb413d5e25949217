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

// Command anonymize runs the full pipeline over a treatment-locations CSV:
// coordinate perturbation, hierarchy construction, k-anonymization, and
// evaluation.
//
// Usage example:
//
//	anonymize --input_file=COVID-19_Treatments.csv --perturbed_output_file=perturbed.csv \
//	    --anonymized_output_file=anonymity.csv --k=15 --suppression_limit=0.1 --metric=entropy
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	log "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/RNCHEN/privacy-k-anonymity/analysis"
	"github.com/RNCHEN/privacy-k-anonymity/anonymizer"
	"github.com/RNCHEN/privacy-k-anonymity/dataset"
	"github.com/RNCHEN/privacy-k-anonymity/hierarchy"
	"github.com/RNCHEN/privacy-k-anonymity/perturb"
	"github.com/RNCHEN/privacy-k-anonymity/sink"
)

var (
	inputFile            = flag.String("input_file", "", "Input csv file name with raw data.")
	perturbedOutputFile  = flag.String("perturbed_output_file", "perturbed.csv", "Output csv file name for the perturbed table.")
	anonymizedOutputFile = flag.String("anonymized_output_file", "anonymity.csv", "Output csv file name for the anonymized table.")
	k                    = flag.Int("k", 15, "Minimum equivalence-class size.")
	suppressionLimit     = flag.Float64("suppression_limit", 0.1, "Maximum suppressed-record fraction in [0, 1].")
	metricName           = flag.String("metric", "entropy", "Quality metric used to rank transformations: \"loss\" or \"entropy\".")
	seed                 = flag.Int64("seed", 0, "Seed for the perturbation noise source. 0 uses a time-based seed.")
	suppressShortZips    = flag.Bool("suppress_short_zips", false, "Map zip codes shorter than 5 characters to the full mask instead of aborting.")
	dbDSN                = flag.String("db_dsn", "", "MySQL DSN for storing run metrics. Defaults to the GEOANON_DB_DSN environment variable; empty skips the sink.")
)

const (
	latitudeColumn  = "Latitude"
	longitudeColumn = "Longitude"
	cityColumn      = "City"
	stateColumn     = "State"
	zipColumn       = "Zip"

	cityTop  = "Region"
	stateTop = "United States"

	delimiter = ','
)

func main() {
	flag.Parse()

	// A .env file, if present, supplies the sink DSN.
	if err := godotenv.Load(); err == nil {
		log.Infof("Loaded environment from .env")
	}

	if *inputFile == "" {
		log.Exit("No input file was chosen")
	}

	table, err := dataset.Load(*inputFile, delimiter)
	if err != nil {
		log.Exitf("Couldn't load input, err = %v", err)
	}
	log.Infof("Loaded %d record(s) with %d column(s) from %q", table.NumRows(), table.NumColumns(), *inputFile)

	var opts perturb.Options
	if *seed != 0 {
		opts.Source = perturb.NewSource(*seed)
	}
	perturbed, err := perturb.Coordinates(table, latitudeColumn, longitudeColumn, &opts)
	if err != nil {
		log.Exitf("Couldn't perturb coordinates, err = %v", err)
	}
	if err := dataset.Store(perturbed, *perturbedOutputFile, delimiter); err != nil {
		log.Exitf("Couldn't write perturbed table, err = %v", err)
	}
	log.Infof("Perturbed table written to %q", *perturbedOutputFile)

	def, err := buildDefinition(perturbed)
	if err != nil {
		log.Exitf("Couldn't build hierarchies, err = %v", err)
	}

	metric, err := anonymizer.ParseMetricKind(*metricName)
	if err != nil {
		log.Exitf("Couldn't parse metric, err = %v", err)
	}
	cfg := &anonymizer.Config{
		K:                *k,
		SuppressionLimit: *suppressionLimit,
		Metric:           metric,
	}

	result, err := anonymizer.Anonymize(perturbed, def, cfg)
	if errors.Is(err, anonymizer.ErrNoFeasibleTransformation) {
		fmt.Println("No output found. Possibly no transformation satisfies the privacy model.")
		return
	}
	if err != nil {
		log.Exitf("Couldn't anonymize, err = %v", err)
	}

	if err := dataset.Store(result.Output, *anonymizedOutputFile, delimiter); err != nil {
		log.Exitf("Couldn't write anonymized table, err = %v", err)
	}
	fmt.Printf("Anonymized data saved to: %s\n", *anonymizedOutputFile)

	printStats(result)

	report, err := analysis.Evaluate(result.Output, *k)
	if err != nil {
		log.Exitf("Couldn't evaluate output, err = %v", err)
	}
	if err := analysis.WriteReport(os.Stdout, report); err != nil {
		log.Exitf("Couldn't write report, err = %v", err)
	}

	storeMetrics(cfg, report, result.Stats)
}

// buildDefinition constructs the three generalization hierarchies over the
// categorical quasi-identifiers. Zip values without a generalization path
// abort the run unless gap suppression was requested.
func buildDefinition(t *dataset.Table) (*anonymizer.Definition, error) {
	cityHierarchy, err := hierarchy.Flat(t, cityColumn, cityTop)
	if err != nil {
		return nil, err
	}
	stateHierarchy, err := hierarchy.Flat(t, stateColumn, stateTop)
	if err != nil {
		return nil, err
	}
	zipHierarchy, gaps, err := hierarchy.ZipPrefix(t, zipColumn, &hierarchy.ZipPrefixOptions{SuppressGaps: *suppressShortZips})
	if err != nil {
		return nil, err
	}
	if len(gaps) > 0 && !*suppressShortZips {
		return nil, fmt.Errorf("%d zip value(s) have no generalization path: %v (rerun with --suppress_short_zips to mask them)", len(gaps), gaps)
	}

	def := anonymizer.NewDefinition()
	def.SetAttribute(cityColumn, cityHierarchy)
	def.SetAttribute(stateColumn, stateHierarchy)
	def.SetAttribute(zipColumn, zipHierarchy)
	return def, nil
}

func printStats(result *anonymizer.Result) {
	stats := result.Stats
	fmt.Println("\n=== Equivalence Class Statistics ===")
	fmt.Printf("Average equivalence class size: %f\n", stats.AverageSize)
	fmt.Printf("Maximal equivalence class size: %d\n", stats.MaximalSize)
	fmt.Printf("Minimal equivalence class size: %d\n", stats.MinimalSize)
	fmt.Printf("Number of equivalence classes: %d\n", stats.NumClasses)
	fmt.Printf("Number of records (excluding suppressed): %d\n", stats.NumRecords)
	fmt.Printf("Number of suppressed records: %d\n", stats.NumSuppressed)
	fmt.Printf("Total number of records: %d\n", stats.TotalRecords)
}

// storeMetrics persists the run metrics when a DSN is configured.
func storeMetrics(cfg *anonymizer.Config, report *analysis.Report, stats anonymizer.EquivalenceClassStats) {
	dsn := *dbDSN
	if dsn == "" {
		dsn = os.Getenv("GEOANON_DB_DSN")
	}
	if dsn == "" {
		log.Infof("No DSN configured, skipping the metrics sink")
		return
	}

	db, err := sink.Open(dsn)
	if err != nil {
		log.Errorf("Couldn't open the metrics sink, err = %v", err)
		return
	}
	defer db.Close()

	if err := sink.CreateTable(db); err != nil {
		log.Errorf("Couldn't create the runs table, err = %v", err)
		return
	}
	if err := sink.StoreReport(db, uuid.NewString(), cfg, report, stats); err != nil {
		log.Errorf("Couldn't store run metrics, err = %v", err)
	}
}
