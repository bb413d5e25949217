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
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads a delimited text file into a Table. The first record is the
// header; an input with no header row is a fatal input error. Ragged rows are
// rejected by the reader, preserving the rectangularity invariant.
func Load(path string, delimiter rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the csv file = %q, err = %v", path, err)
	}
	defer f.Close()
	return Read(f, delimiter)
}

// Read reads a delimited table from r. See Load.
func Read(r io.Reader, delimiter rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't read the csv header, err = %v", err)
	}

	t, err := New(header)
	if err != nil {
		return nil, err
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("couldn't read a csv record, err = %v", err)
		}
		if err := t.Append(record); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Store writes the table to path, one record per line, fields joined with the
// delimiter.
//
// Fields are never quoted: a value containing the delimiter corrupts the
// output line. Downstream consumers depend on this exact format, so the
// limitation is kept rather than fixed.
func Store(t *Table, path string, delimiter rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't create the csv file = %q, err = %v", path, err)
	}

	if err := Write(f, t, delimiter); err != nil {
		f.Close()
		return fmt.Errorf("couldn't write to the csv file = %q, err = %v", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("couldn't close the csv file = %q, err = %v", path, err)
	}
	return nil
}

// Write writes the table to w in the naive unquoted format used by Store.
func Write(w io.Writer, t *Table, delimiter rune) error {
	bw := bufio.NewWriter(w)
	sep := string(delimiter)

	if _, err := bw.WriteString(strings.Join(t.header, sep) + "\n"); err != nil {
		return err
	}
	for _, row := range t.rows {
		if _, err := bw.WriteString(strings.Join(row, sep) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
