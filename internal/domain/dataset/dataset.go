// Package dataset holds the in-memory tabular snapshot of one sport's
// statistics and the contract for loading it.
package dataset

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record maps a column name to a cell value. Values are string, float64 or
// int64; decoders normalize everything else into one of those.
type Record map[string]any

// Dataset is an ordered, read-only table. It must not be mutated after it
// has been handed to a store.
type Dataset struct {
	Name    string
	Sport   string
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether the header contains col.
func (d *Dataset) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Ref identifies a dataset for a loader: the sport it belongs to and an
// opaque locator (file name, table name) resolved by the loader.
type Ref struct {
	Sport   string
	Locator string
}

// Loader materializes a dataset. Implementations perform all I/O and must
// return a fully populated Dataset or an error.
type Loader interface {
	LoadDataset(ctx context.Context, ref Ref) (*Dataset, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref Ref) (*Dataset, error)

// LoadDataset calls f.
func (f LoaderFunc) LoadDataset(ctx context.Context, ref Ref) (*Dataset, error) {
	return f(ctx, ref)
}

// Float coerces a cell into a number. Strings may carry surrounding
// whitespace, a leading "+" and a trailing "%" (e.g. "10.5%", " .341").
func Float(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimSuffix(s, "%")
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, ErrEmptyValue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, x)
		}
		return finite(f)
	case nil:
		return 0, ErrEmptyValue
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrNotNumeric, v)
	}
}

// Text renders a cell as a string for matching and display.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, f)
	}
	return f, nil
}
