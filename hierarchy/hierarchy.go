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

// Package hierarchy builds generalization hierarchies for quasi-identifier
// columns. A hierarchy maps every distinct leaf value observed in a column to
// an ordered chain of progressively coarser values ending in a single top
// sentinel shared by all leaves.
package hierarchy

import (
	"fmt"
	"sort"
)

// Hierarchy is a leaf → generalization-chain mapping with a fixed number of
// generalization levels. The chain for a leaf v is [v, g1, ..., gDepth] where
// gDepth is the same maximal generalization for every leaf.
type Hierarchy struct {
	depth  int
	chains map[string][]string
}

// New returns an empty hierarchy with the given number of generalization
// levels. depth must be at least 1.
func New(depth int) (*Hierarchy, error) {
	if depth < 1 {
		return nil, fmt.Errorf("hierarchy: depth is %d, must be at least 1", depth)
	}
	return &Hierarchy{depth: depth, chains: make(map[string][]string)}, nil
}

// Add inserts a leaf and its generalizations, coarsest last. The chain for a
// leaf depends only on the value itself, so re-inserting a known leaf is a
// no-op rather than an error.
func (h *Hierarchy) Add(leaf string, generalizations ...string) error {
	if len(generalizations) != h.depth {
		return fmt.Errorf("hierarchy: got %d generalizations for %q, hierarchy has %d levels", len(generalizations), leaf, h.depth)
	}
	if _, ok := h.chains[leaf]; ok {
		return nil
	}
	chain := make([]string, 0, h.depth+1)
	chain = append(chain, leaf)
	chain = append(chain, generalizations...)
	h.chains[leaf] = chain
	return nil
}

// Depth returns the number of generalization levels.
func (h *Hierarchy) Depth() int {
	return h.depth
}

// Len returns the number of leaves.
func (h *Hierarchy) Len() int {
	return len(h.chains)
}

// Contains reports whether the leaf has an entry.
func (h *Hierarchy) Contains(leaf string) bool {
	_, ok := h.chains[leaf]
	return ok
}

// Chain returns a copy of the full chain for the leaf, starting with the leaf
// itself.
func (h *Hierarchy) Chain(leaf string) ([]string, bool) {
	chain, ok := h.chains[leaf]
	if !ok {
		return nil, false
	}
	return append([]string(nil), chain...), true
}

// Generalize returns the value at the given generalization level for the
// leaf. Level 0 is the leaf itself; level Depth() is the top sentinel.
func (h *Hierarchy) Generalize(leaf string, level int) (string, error) {
	if level < 0 || level > h.depth {
		return "", fmt.Errorf("hierarchy: level %d out of range [0, %d]", level, h.depth)
	}
	chain, ok := h.chains[leaf]
	if !ok {
		return "", fmt.Errorf("hierarchy: no entry for value %q", leaf)
	}
	return chain[level], nil
}

// Leaves returns all leaves in sorted order.
func (h *Hierarchy) Leaves() []string {
	leaves := make([]string, 0, len(h.chains))
	for leaf := range h.chains {
		leaves = append(leaves, leaf)
	}
	sort.Strings(leaves)
	return leaves
}

// Uncovered returns, in sorted order, the values from the given set that have
// no entry in the hierarchy. An anonymization run must not start while this
// is non-empty for any bound attribute.
func (h *Hierarchy) Uncovered(values []string) []string {
	var missing []string
	for _, v := range values {
		if !h.Contains(v) {
			missing = append(missing, v)
		}
	}
	sort.Strings(missing)
	return missing
}
