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

// Package sink persists per-run evaluation metrics to MySQL, so repeated
// experiments with different privacy parameters can be compared afterwards.
// The sink is optional; runs without a configured DSN skip it entirely.
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	log "github.com/golang/glog"

	"github.com/RNCHEN/privacy-k-anonymity/analysis"
	"github.com/RNCHEN/privacy-k-anonymity/anonymizer"
)

// queryTimeout bounds every statement issued against the database.
const queryTimeout = 5 * time.Second

// Open connects to the database behind the DSN and verifies the connection
// with a ping.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sink: couldn't open DB, err = %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(0)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: couldn't ping DB, err = %v", err)
	}
	log.Infof("sink: connected to DB")
	return db, nil
}

// CreateTable creates the runs table if it does not exist yet.
func CreateTable(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS runs(
		run_id VARCHAR(36) PRIMARY KEY,
		created DATETIME,
		k INT,
		suppression_limit FLOAT,
		metric TEXT,
		satisfies_k BOOL,
		max_risk FLOAT,
		avg_risk FLOAT,
		num_classes INT,
		min_class_size INT,
		avg_class_size FLOAT,
		unique_records_pct FLOAT,
		avg_information_loss FLOAT,
		suppression_rate FLOAT,
		discernibility BIGINT,
		suppressed_records INT,
		total_records INT)`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("sink: couldn't create runs table, err = %v", err)
	}
	return nil
}

// StoreReport inserts one row of run metrics.
func StoreReport(db *sql.DB, runID string, cfg *anonymizer.Config, report *analysis.Report, stats anonymizer.EquivalenceClassStats) error {
	query := `INSERT INTO runs(
		run_id, created, k, suppression_limit, metric, satisfies_k,
		max_risk, avg_risk, num_classes, min_class_size, avg_class_size,
		unique_records_pct, avg_information_loss, suppression_rate,
		discernibility, suppressed_records, total_records)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	stmt, err := db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("sink: couldn't prepare insert, err = %v", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		runID,
		time.Now().UTC(),
		cfg.K,
		cfg.SuppressionLimit,
		cfg.Metric.String(),
		report.SatisfiesKAnonymity,
		report.Risks.MaxRisk,
		report.Risks.AvgRisk,
		report.ECMetrics.NumClasses,
		report.ECMetrics.MinSize,
		report.ECMetrics.AvgSize,
		report.ECMetrics.UniqueRecordsPercentage,
		report.AverageInformationLoss,
		report.SuppressionRate,
		report.Discernibility,
		stats.NumSuppressed,
		stats.TotalRecords,
	)
	if err != nil {
		return fmt.Errorf("sink: couldn't insert run %s, err = %v", runID, err)
	}
	log.Infof("sink: stored metrics for run %s", runID)
	return nil
}
