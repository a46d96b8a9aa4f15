// Package labelkeys reads and writes the FormLabelKeys table: the external
// key dictionary wide form templates reference through msgKey attributes.
package labelkeys

import (
	"encoding/csv"
	"fmt"
	"os"
)

// KeyColumn and DefaultColumn are the two fixed table columns; every other
// column is a language code.
const (
	KeyColumn     = "label_key"
	DefaultColumn = "default"
)

// Table holds the key dictionary in memory. It is read wholesale before an
// import run and rewritten wholesale afterwards; column and row order are
// preserved.
type Table struct {
	headers []string
	order   []string
	rows    map[string]map[string]string

	dirty bool
}

// New creates an empty table with the given language columns.
func New(langs []string) *Table {
	headers := append([]string{KeyColumn, DefaultColumn}, langs...)
	return &Table{
		headers: headers,
		rows:    make(map[string]map[string]string),
	}
}

// Read loads a label-key CSV file.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label keys file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse label keys file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("label keys file %s: empty", path)
	}

	t := &Table{
		headers: records[0],
		rows:    make(map[string]map[string]string),
	}
	for _, record := range records[1:] {
		row := make(map[string]string, len(t.headers))
		for i, header := range t.headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		key := row[KeyColumn]
		if key == "" {
			continue
		}
		if _, ok := t.rows[key]; !ok {
			t.order = append(t.order, key)
		}
		t.rows[key] = row
	}
	return t, nil
}

// Write serializes the table to a CSV file.
func (t *Table) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create label keys file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.headers); err != nil {
		return fmt.Errorf("write label keys header: %w", err)
	}
	for _, key := range t.order {
		row := t.rows[key]
		record := make([]string, len(t.headers))
		for i, header := range t.headers {
			record[i] = row[header]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write label keys row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush label keys file: %w", err)
	}
	return nil
}

// Has reports whether the key exists in the table.
func (t *Table) Has(key string) bool {
	_, ok := t.rows[key]
	return ok
}

// Get returns the value for a key under the given column ("default" or a
// language code). Missing keys and columns return the empty string.
func (t *Table) Get(key, column string) string {
	row, ok := t.rows[key]
	if !ok {
		return ""
	}
	return row[column]
}

// Set stores a value for a key under the given column, creating the entry
// and column when absent, and marks the table dirty.
func (t *Table) Set(key, column, value string) {
	row, ok := t.rows[key]
	if !ok {
		row = map[string]string{KeyColumn: key}
		t.rows[key] = row
		t.order = append(t.order, key)
	}
	if !t.hasHeader(column) {
		t.headers = append(t.headers, column)
	}
	row[column] = value
	t.dirty = true
}

// Keys returns the keys in table order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Headers returns the column headers in table order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.headers))
	copy(out, t.headers)
	return out
}

// Dirty reports whether any key was modified since load.
func (t *Table) Dirty() bool { return t.dirty }

func (t *Table) hasHeader(name string) bool {
	for _, h := range t.headers {
		if h == name {
			return true
		}
	}
	return false
}
