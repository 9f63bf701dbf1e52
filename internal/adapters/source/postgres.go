package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/okian/puddin/internal/domain/dataset"
	"github.com/okian/puddin/pkg/metrics"
)

// PostgresLoader reads a dataset from a table named by the locator. Each
// row becomes a record; NULL cells are left out.
type PostgresLoader struct {
	db *sql.DB
}

var _ dataset.Loader = (*PostgresLoader)(nil)

// OpenPostgres opens and pings a lib/pq connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewPostgresLoader creates a loader over db.
func NewPostgresLoader(db *sql.DB) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// tableName strips a file extension so "MLB_6_stats_summary.xlsx" maps to
// table "MLB_6_stats_summary".
func tableName(locator string) string {
	name := strings.TrimSpace(locator)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// LoadDataset implements dataset.Loader.
func (l *PostgresLoader) LoadDataset(ctx context.Context, ref dataset.Ref) (*dataset.Dataset, error) {
	table := tableName(ref.Locator)
	if table == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, ref.Locator)
	}
	start := time.Now()

	rows, err := l.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(table))
	if err != nil {
		metrics.RecordErrorByComponent("source", "postgres")
		return nil, fmt.Errorf("%w: query %s: %v", ErrFetchFailed, table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: columns %s: %v", ErrFetchFailed, table, err)
	}
	ds := &dataset.Dataset{Name: ref.Locator, Sport: ref.Sport, Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrFetchFailed, table, err)
		}
		rec := make(dataset.Record, len(cols))
		for i, c := range cols {
			if v, ok := cell(vals[i]); ok {
				rec[c] = v
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows %s: %v", ErrFetchFailed, table, err)
	}
	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, table)
	}
	metrics.RecordDatasetLoadLatency("postgres", float64(time.Since(start).Milliseconds()))
	return ds, nil
}

// cell normalizes a driver value into a dataset.Record value.
func cell(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case int64, float64, string:
		return x, true
	case []byte:
		return string(x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	default:
		return fmt.Sprint(x), true
	}
}
