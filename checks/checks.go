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

// Package checks contains parameter checks for the anonymization pipeline.
package checks

import (
	"fmt"
	"math"
)

const (
	kName                = "K"
	suppressionLimitName = "SuppressionLimit"
	amplitudeName        = "Amplitude"
	decimalsName         = "Decimals"
)

func verifyName(defaultName string, nameSlice []string) (string, error) {
	var name string
	switch len(nameSlice) {
	case 0:
		name = defaultName
	case 1:
		name = nameSlice[0]
	default:
		return "", fmt.Errorf("This should never happen. There should be 0 or 1 'name' parameter, got %d", len(nameSlice))
	}
	return name, nil
}

// CheckK returns an error if the minimum equivalence-class size k is less
// than 1.
func CheckK(k int, name ...string) error {
	n, err := verifyName(kName, name)
	if err != nil {
		return err
	}
	if k < 1 {
		return fmt.Errorf("%s is %d, must be at least 1", n, k)
	}
	return nil
}

// CheckSuppressionLimit returns an error if the maximum suppressed-record
// fraction is NaN or outside [0, 1].
func CheckSuppressionLimit(limit float64, name ...string) error {
	n, err := verifyName(suppressionLimitName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(limit) {
		return fmt.Errorf("%s is %f, cannot be NaN", n, limit)
	}
	if limit < 0 || limit > 1 {
		return fmt.Errorf("%s is %f, must be in [0, 1]", n, limit)
	}
	return nil
}

// CheckAmplitude returns an error if the noise amplitude is nonpositive,
// infinite, or NaN.
func CheckAmplitude(amplitude float64, name ...string) error {
	n, err := verifyName(amplitudeName, name)
	if err != nil {
		return err
	}
	if amplitude <= 0 || math.IsInf(amplitude, 0) || math.IsNaN(amplitude) {
		return fmt.Errorf("%s is %f, must be strictly positive and finite", n, amplitude)
	}
	return nil
}

// CheckDecimals returns an error if the rounding precision is negative.
func CheckDecimals(decimals int, name ...string) error {
	n, err := verifyName(decimalsName, name)
	if err != nil {
		return err
	}
	if decimals < 0 {
		return fmt.Errorf("%s is %d, must be nonnegative", n, decimals)
	}
	return nil
}
