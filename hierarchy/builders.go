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

package hierarchy

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/RNCHEN/privacy-k-anonymity/dataset"
)

// FullMask is the top sentinel of the prefix-truncation hierarchy.
const FullMask = "*****"

// minZipLength is the shortest value the prefix-truncation chain can be built
// from.
const minZipLength = 5

// Flat builds a two-level hierarchy for the named column: every distinct
// observed value generalizes directly to the single top value. Returns an
// error if the column is absent from the table; a designated quasi-identifier
// that cannot be generalized is a structural fault, not something to skip.
func Flat(t *dataset.Table, column, top string) (*Hierarchy, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("hierarchy: column %q not present in table", column)
	}
	h, err := New(1)
	if err != nil {
		return nil, err
	}
	for _, v := range t.DistinctValues(col) {
		if err := h.Add(v, top); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// ZipPrefixOptions configures ZipPrefix.
type ZipPrefixOptions struct {
	// SuppressGaps maps values shorter than five characters straight to the
	// full mask at every level instead of leaving them out of the hierarchy.
	// The default leaves them out and reports them, so the caller can abort
	// before the anonymizer sees an uncovered value.
	SuppressGaps bool
}

// ZipPrefix builds the four-level prefix-truncation hierarchy for the named
// column. Each distinct value v of length >= 5 gets the chain
//
//	v -> v[:5]+"*" -> v[:3]+"**" -> v[:2]+"***" -> "*****"
//
// Values shorter than five characters have no truncation chain; they are
// returned as the gap list and, unless SuppressGaps is set, excluded from the
// hierarchy.
func ZipPrefix(t *dataset.Table, column string, opt *ZipPrefixOptions) (*Hierarchy, []string, error) {
	if opt == nil {
		opt = &ZipPrefixOptions{}
	}
	col, ok := t.Column(column)
	if !ok {
		return nil, nil, fmt.Errorf("hierarchy: column %q not present in table", column)
	}
	h, err := New(4)
	if err != nil {
		return nil, nil, err
	}

	var gaps []string
	for _, v := range t.DistinctValues(col) {
		if len(v) < minZipLength {
			gaps = append(gaps, v)
			if opt.SuppressGaps {
				if err := h.Add(v, FullMask, FullMask, FullMask, FullMask); err != nil {
					return nil, nil, err
				}
			}
			continue
		}
		if err := h.Add(v, v[:5]+"*", v[:3]+"**", v[:2]+"***", FullMask); err != nil {
			return nil, nil, err
		}
	}
	if len(gaps) > 0 {
		log.Warningf("ZipPrefix: %d value(s) in column %q are shorter than %d characters: %v", len(gaps), column, minZipLength, gaps)
	}
	return h, gaps, nil
}
