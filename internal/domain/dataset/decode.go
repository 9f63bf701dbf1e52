package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format names a supported on-disk encoding.
type Format string

// Supported formats, keyed by file extension.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatOf picks a format from a locator's extension.
func FormatOf(locator string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(locator), "."))
	switch Format(ext) {
	case FormatXLSX, FormatCSV, FormatJSON:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, locator)
}

// Decode parses raw bytes into a Dataset using the format implied by ref's
// locator.
func Decode(ref Ref, data []byte) (*Dataset, error) {
	f, err := FormatOf(ref.Locator)
	if err != nil {
		return nil, err
	}
	var ds *Dataset
	switch f {
	case FormatXLSX:
		ds, err = DecodeXLSX(data)
	case FormatCSV:
		ds, err = DecodeCSV(bytes.NewReader(data))
	case FormatJSON:
		ds, err = DecodeJSON(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref.Locator, err)
	}
	ds.Name = ref.Locator
	ds.Sport = ref.Sport
	return ds, nil
}

// DecodeXLSX reads the first worksheet of a workbook. The first non-blank
// row is the header.
func DecodeXLSX(data []byte) (*Dataset, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedDataset)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	return fromRows(rows)
}

// DecodeCSV reads comma separated values with a header row. Rows may have
// fewer cells than the header; missing cells are left out of the record.
func DecodeCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	return fromRows(rows)
}

// DecodeJSON reads an array of flat objects. Columns are the sorted union
// of keys. Numbers become int64 when integral, float64 otherwise.
func DecodeJSON(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	cols := make(map[string]struct{})
	ds := &Dataset{Records: make([]Record, 0, len(raw))}
	for i, obj := range raw {
		rec := make(Record, len(obj))
		for k, v := range obj {
			k = strings.TrimSpace(k)
			cols[k] = struct{}{}
			cell, err := jsonCell(v)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q: %v", ErrMalformedDataset, i, k, err)
			}
			if cell != nil {
				rec[k] = cell
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	if len(cols) == 0 {
		return nil, ErrNoHeader
	}
	for c := range cols {
		ds.Columns = append(ds.Columns, c)
	}
	sort.Strings(ds.Columns)
	return ds, nil
}

func jsonCell(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return x, nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, errors.New("nested values are not supported")
	}
}

// fromRows builds a dataset from a header row followed by data rows.
// Leading blank rows are skipped, as are fully blank data rows.
func fromRows(rows [][]string) (*Dataset, error) {
	start := -1
	for i, row := range rows {
		if !blank(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoHeader
	}

	header := rows[start]
	ds := &Dataset{Columns: make([]string, 0, len(header))}
	index := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, h)
		}
		seen[h] = struct{}{}
		index[i] = h
		ds.Columns = append(ds.Columns, h)
	}

	for _, row := range rows[start+1:] {
		if blank(row) {
			continue
		}
		rec := make(Record, len(ds.Columns))
		for i, cell := range row {
			if i >= len(index) || index[i] == "" {
				continue
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			rec[index[i]] = strings.TrimSpace(cell)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
