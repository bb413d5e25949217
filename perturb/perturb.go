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

// Package perturb applies bounded positional noise to coordinate columns of a
// table, as a lightweight obfuscation step ahead of k-anonymity
// generalization. Jitter reduces exact-location linkage while keeping
// regional clustering intact.
package perturb

import (
	"fmt"
	"math"
	mathrand "math/rand"
	"strconv"
	"time"

	log "github.com/golang/glog"

	"github.com/RNCHEN/privacy-k-anonymity/checks"
	"github.com/RNCHEN/privacy-k-anonymity/dataset"
)

const (
	defaultAmplitude = 0.01
	defaultDecimals  = 5
)

// Source yields uniform random float64 values in [0, 1). math/rand's *Rand
// satisfies it, which makes perturbation seedable and reproducible in tests.
type Source interface {
	Float64() float64
}

// NewSource returns a Source seeded with the given value.
func NewSource(seed int64) Source {
	return mathrand.New(mathrand.NewSource(seed))
}

// Options configures Coordinates.
type Options struct {
	Amplitude float64 // Half-width of the uniform noise interval. Defaults to 0.01.
	Decimals  int     // Round-half-up precision of perturbed values. Defaults to 5.
	Source    Source  // Randomness source. Defaults to a time-seeded source.
}

// Coordinates returns a new table with the same header and row count in which
// the two named numeric columns carry added noise drawn uniformly from
// [-Amplitude, +Amplitude], rounded half-up to Decimals digits.
//
// A row is perturbed only when both cells are non-empty and both parse as
// floating-point numbers; otherwise the row passes through byte-identical.
// Cell-level parse failures are a recovered condition, never an error: the
// input is partial real-world data and robustness wins over strictness here.
// If either column is missing from the header the whole table passes through
// unchanged. All other columns are copied verbatim.
func Coordinates(t *dataset.Table, latColumn, lonColumn string, opt *Options) (*dataset.Table, error) {
	if t == nil {
		return nil, fmt.Errorf("Coordinates: input table is nil")
	}
	if opt == nil {
		opt = &Options{}
	}
	// Set defaults.
	amplitude := opt.Amplitude
	if amplitude == 0 {
		amplitude = defaultAmplitude
	}
	decimals := opt.Decimals
	if decimals == 0 {
		decimals = defaultDecimals
	}
	src := opt.Source
	if src == nil {
		src = NewSource(time.Now().UnixNano())
	}
	if err := checks.CheckAmplitude(amplitude); err != nil {
		return nil, fmt.Errorf("Coordinates: %v", err)
	}
	if err := checks.CheckDecimals(decimals); err != nil {
		return nil, fmt.Errorf("Coordinates: %v", err)
	}

	latIndex, latOK := t.Column(latColumn)
	lonIndex, lonOK := t.Column(lonColumn)
	if !latOK || !lonOK {
		log.Warningf("Coordinates: columns %q/%q not both present, table passes through unchanged", latColumn, lonColumn)
		return t.Clone(), nil
	}

	out := t.Empty()
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		latCell, lonCell := row[latIndex], row[lonIndex]
		if latCell != "" && lonCell != "" {
			lat, latErr := strconv.ParseFloat(latCell, 64)
			lon, lonErr := strconv.ParseFloat(lonCell, 64)
			if latErr == nil && lonErr == nil {
				row[latIndex] = format(lat+uniform(src, amplitude), decimals)
				row[lonIndex] = format(lon+uniform(src, amplitude), decimals)
			}
		}
		if err := out.Append(row); err != nil {
			return nil, fmt.Errorf("Coordinates: %v", err)
		}
	}
	return out, nil
}

// uniform draws from [-amplitude, +amplitude].
func uniform(src Source, amplitude float64) float64 {
	return src.Float64()*2*amplitude - amplitude
}

// roundHalfUp rounds x to the given number of decimals, with ties rounded
// away from zero.
func roundHalfUp(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	if x < 0 {
		return -math.Floor(-x*scale+0.5) / scale
	}
	return math.Floor(x*scale+0.5) / scale
}

// format renders x with exactly the given number of digits after the decimal
// point.
func format(x float64, decimals int) string {
	return strconv.FormatFloat(roundHalfUp(x, decimals), 'f', decimals, 64)
}
