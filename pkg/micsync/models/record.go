// Package models defines data structures for MIC registry conversion and publishing.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Record is a single data row. Values are aligned to RecordSet.Columns and are
// one of string, int64, float64, bool or nil.
type Record []interface{}

// RecordSet is an ordered collection of uniform records derived from one sheet.
// It serializes to a JSON array of objects whose keys follow Columns order.
type RecordSet struct {
	// Columns holds the normalized header names in sheet order.
	Columns []string
	// Records holds the data rows in sheet order.
	Records []Record
}

// Len returns the number of records.
func (rs *RecordSet) Len() int {
	return len(rs.Records)
}

// Row returns record i as a column-keyed map.
func (rs *RecordSet) Row(i int) map[string]interface{} {
	row := make(map[string]interface{}, len(rs.Columns))
	for c, name := range rs.Columns {
		row[name] = rs.Records[i][c]
	}
	return row
}

// MarshalJSON writes the records as an array of objects with keys in column order.
func (rs RecordSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range rs.Records {
		if len(rec) != len(rs.Columns) {
			return nil, fmt.Errorf("record %d has %d values for %d columns", i, len(rec), len(rs.Columns))
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, name := range rs.Columns {
			if c > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(&buf, name); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSON(&buf, rec[c]); err != nil {
				return nil, fmt.Errorf("record %d column %q: %w", i, name, err)
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an array of flat objects. The first object fixes the
// column order; every later object must carry exactly the same keys.
func (rs *RecordSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return err
	}

	var columns []string
	var records []Record
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}

		first := records == nil
		var rec Record
		if !first {
			rec = make(Record, len(columns))
		}
		seen := 0

		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("expected object key, got %v", tok)
			}
			val, err := scalarValue(dec)
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}

			if first {
				columns = append(columns, key)
				rec = append(rec, val)
				continue
			}
			idx := indexOf(columns, key)
			if idx < 0 {
				return fmt.Errorf("record %d: unexpected key %q", len(records), key)
			}
			rec[idx] = val
			seen++
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
		if !first && seen != len(columns) {
			return fmt.Errorf("record %d: has %d of %d columns", len(records), seen, len(columns))
		}
		if records == nil {
			records = make([]Record, 0, 1)
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON array")
	}

	if records == nil {
		records = []Record{}
	}
	rs.Columns = columns
	rs.Records = records
	return nil
}

func writeJSON(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// scalarValue decodes the next value, rejecting arrays and objects.
// Integral numbers become int64, other numbers float64.
func scalarValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		return nil, fmt.Errorf("nested value %q is not supported", v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.Float64()
	default:
		return v, nil
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
