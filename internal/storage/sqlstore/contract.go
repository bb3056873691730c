package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/honeycarbs/contractsync/internal/domain"
	"github.com/honeycarbs/contractsync/internal/domain/contract"

	pkgsqlstore "github.com/honeycarbs/contractsync/pkg/sqlstore"
)

// Ensure ContractRepository implements contract.Repository
var _ contract.Repository = (*ContractRepository)(nil)

// TableName is the destination table, optionally schema-qualified
type TableName string

// DefaultTable is the staging table contracts land in
const DefaultTable TableName = "stg.Contracts"

// ContractRepository implements contract.Repository over database/sql
type ContractRepository struct {
	client *pkgsqlstore.Client
	table  TableName
}

// NewContractRepository creates a ContractRepository for table
func NewContractRepository(client *pkgsqlstore.Client, table TableName) *ContractRepository {
	if table == "" {
		table = DefaultTable
	}
	return &ContractRepository{
		client: client,
		table:  table,
	}
}

// ExistingCodes reads the whole code column
func (r *ContractRepository) ExistingCodes(ctx context.Context) (domain.KeySet, error) {
	d := r.client.Dialect()
	query := fmt.Sprintf("SELECT %s FROM %s", d.QuoteIdent(domain.CodeField), d.Quote(string(r.table)))

	rows, err := r.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query codes from %s: %w", r.table, err)
	}
	defer rows.Close()

	keys := domain.NewKeySet()
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		if code, ok := codeString(v); ok {
			keys.Add(code)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

// Append inserts every row in one transaction, creating the table first
// when it does not exist yet.
func (r *ContractRepository) Append(ctx context.Context, table domain.Table) (int, error) {
	if len(table.Rows) == 0 {
		return 0, nil
	}

	if err := r.ensureTable(ctx, table); err != nil {
		return 0, err
	}

	d := r.client.Dialect()
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = d.QuoteIdent(c)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(string(r.table)),
		strings.Join(cols, ", "),
		d.Placeholders(len(cols)),
	)

	tx, err := r.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}

	return len(table.Rows), nil
}

func (r *ContractRepository) ensureTable(ctx context.Context, table domain.Table) error {
	d := r.client.Dialect()
	name := d.Quote(string(r.table))

	probe, err := r.client.DB().QueryContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE 1 = 0", name))
	if err == nil {
		return probe.Close()
	}

	defs := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		defs[i] = d.QuoteIdent(c) + " " + columnType(d, table, i)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
	if _, err := r.client.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}

	return nil
}

// columnType picks a column type from the values in column i: integers,
// floats and booleans keep their type, anything mixed or textual is text.
func columnType(d pkgsqlstore.Dialect, table domain.Table, i int) string {
	var kind string
	for _, row := range table.Rows {
		var k string
		switch row[i].(type) {
		case nil:
			continue
		case time.Time:
			k = "time"
		case int64:
			k = "int"
		case float64:
			k = "float"
		case bool:
			k = "bool"
		default:
			k = "text"
		}

		switch {
		case kind == "" || kind == k:
			kind = k
		case (kind == "int" && k == "float") || (kind == "float" && k == "int"):
			kind = "float"
		default:
			kind = "text"
		}
	}

	switch kind {
	case "time":
		return d.TimestampType
	case "int":
		return d.IntType
	case "float":
		return d.FloatType
	case "bool":
		return d.BoolType
	default:
		return d.TextType
	}
}

func codeString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprint(t), true
	}
}
