package contract

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/honeycarbs/contractsync/internal/domain"
)

// Writer appends a batch to the destination table
type Writer struct {
	repo  Repository
	clock func() time.Time
}

// NewWriter builds a Writer
func NewWriter(repo Repository, clock func() time.Time) *Writer {
	if clock == nil {
		clock = time.Now
	}
	return &Writer{repo: repo, clock: clock}
}

// Write flattens batch, stamps every row with one timestamp and appends it.
// An empty batch makes no repository call.
func (w *Writer) Write(ctx context.Context, batch []domain.Contract) (int, time.Time, error) {
	if len(batch) == 0 {
		return 0, time.Time{}, nil
	}

	retrieved := w.clock()

	table, err := Flatten(batch, retrieved)
	if err != nil {
		return 0, time.Time{}, err
	}

	n, err := w.repo.Append(ctx, table)
	if err != nil {
		return n, retrieved, fmt.Errorf("append %d rows: %w", len(table.Rows), err)
	}

	return n, retrieved, nil
}

// Flatten turns each record's top-level attributes into columns. Columns
// are the sorted union of attribute names followed by the retrieved column.
// Attributes a record lacks are NULL; nested values are kept as JSON text.
// The code column holds the normalized code so it reads back exactly as
// the existing-key index compares it.
func Flatten(batch []domain.Contract, retrieved time.Time) (domain.Table, error) {
	seen := make(map[string]struct{})
	for _, c := range batch {
		for k := range c.Fields {
			if k == domain.RetrievedColumn {
				continue
			}
			seen[k] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen)+1)
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	columns = append(columns, domain.RetrievedColumn)

	rows := make([][]any, 0, len(batch))
	for _, c := range batch {
		row := make([]any, len(columns))
		for i, col := range columns[:len(columns)-1] {
			if col == domain.CodeField && c.Code != "" {
				row[i] = c.Code
				continue
			}
			v, err := cellValue(c.Fields[col])
			if err != nil {
				return domain.Table{}, fmt.Errorf("contract %s field %q: %w", c.Code, col, err)
			}
			row[i] = v
		}
		row[len(columns)-1] = retrieved
		rows = append(rows, row)
	}

	return domain.Table{Columns: columns, Rows: rows}, nil
}

func cellValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int64, float64:
		return t, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		// numbers a float64 cannot hold exactly stay as their source text
		if f, err := t.Float64(); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == t.String() {
			return f, nil
		}
		return t.String(), nil
	case int:
		return int64(t), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
}
