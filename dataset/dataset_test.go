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

package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		header  []string
		wantErr bool
	}{
		{"empty header",
			nil,
			true},
		{"duplicate column",
			[]string{"City", "Zip", "City"},
			true},
		{"valid header",
			[]string{"City", "State", "Zip"},
			false},
	} {
		if _, err := New(tc.header); (err != nil) != tc.wantErr {
			t.Errorf("New: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestAppendEnforcesWidth(t *testing.T) {
	table, err := New([]string{"City", "Zip"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := table.Append([]string{"Pittsburgh"}); err == nil {
		t.Errorf("Append with 1 field on a 2-column table returned no error")
	}
	if err := table.Append([]string{"Pittsburgh", "15213", "extra"}); err == nil {
		t.Errorf("Append with 3 fields on a 2-column table returned no error")
	}
	if err := table.Append([]string{"Pittsburgh", "15213"}); err != nil {
		t.Errorf("Append with matching width: %v", err)
	}
}

func TestColumnLookup(t *testing.T) {
	table, err := New([]string{"City", "State", "Zip"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, ok := table.Column("State"); !ok || got != 1 {
		t.Errorf("Column(State) = (%d, %t), want (1, true)", got, ok)
	}
	if _, ok := table.Column("County"); ok {
		t.Errorf("Column(County) reported present on a table without it")
	}
}

func TestReadEmptyInput(t *testing.T) {
	if _, err := Read(strings.NewReader(""), ','); err == nil {
		t.Errorf("Read of empty input returned no error, want missing-header error")
	}
}

func TestReadHeaderOnly(t *testing.T) {
	table, err := Read(strings.NewReader("City,State,Zip\n"), ',')
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := table.NumRows(); got != 0 {
		t.Errorf("NumRows = %d, want 0", got)
	}
	if diff := cmp.Diff([]string{"City", "State", "Zip"}, table.Header()); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRejectsRaggedRows(t *testing.T) {
	input := "City,State,Zip\nPittsburgh,PA\n"
	if _, err := Read(strings.NewReader(input), ','); err == nil {
		t.Errorf("Read of ragged input returned no error")
	}
}

func TestWriteNaiveFormat(t *testing.T) {
	table, err := New([]string{"City", "Note"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table.Append([]string{"Pittsburgh", "ok"})
	// Embedded delimiters are written unquoted. This is the documented
	// limitation of the output format, so the test pins it down.
	table.Append([]string{"Erie", "a,b"})

	var buf bytes.Buffer
	if err := Write(&buf, table, ','); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "City,Note\nPittsburgh,ok\nErie,a,b\n"
	if got := buf.String(); got != want {
		t.Errorf("Write produced %q, want %q", got, want)
	}
}

func TestRoundTripPreservesShape(t *testing.T) {
	input := "City,State,Zip\nPittsburgh,PA,15213\nErie,PA,16501\n"
	table, err := Read(strings.NewReader(input), ',')
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, table, ','); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != input {
		t.Errorf("round trip produced %q, want %q", got, input)
	}
}

func TestDistinctValues(t *testing.T) {
	table, err := New([]string{"City"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, city := range []string{"Pittsburgh", "Erie", "Pittsburgh", "Altoona", "Erie"} {
		table.Append([]string{city})
	}
	want := []string{"Altoona", "Erie", "Pittsburgh"}
	if diff := cmp.Diff(want, table.DistinctValues(0)); diff != "" {
		t.Errorf("DistinctValues mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	table, err := New([]string{"City"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table.Append([]string{"Pittsburgh"})

	clone := table.Clone()
	clone.SetRow(0, []string{"Erie"})
	if got := table.Value(0, 0); got != "Pittsburgh" {
		t.Errorf("mutating a clone changed the original: got %q", got)
	}
}
