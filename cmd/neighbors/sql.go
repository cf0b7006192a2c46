package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/DanielSebasCM/research-stay-2024/embedding"
	"github.com/DanielSebasCM/research-stay-2024/engine"
	"github.com/DanielSebasCM/research-stay-2024/report"
	"github.com/DanielSebasCM/research-stay-2024/vec"
)

// queryTable is the vec_neighbors table -sql statements select from.
const queryTable = "neighbors"

// modules numbers the per-run module names; a module name stays bound to one
// space for the life of the process.
var modules atomic.Int64

// runSQL exposes sp as the neighbors table of an in-memory database and
// prints every row of query, one tab-separated line per row.
func runSQL(ctx context.Context, sp embedding.Space, k int, query string, w io.Writer) error {
	db, err := engine.OpenContext(ctx, ":memory:")
	if err != nil {
		return err
	}
	defer db.Close()
	module := fmt.Sprintf("%s_%d", vec.ModuleName, modules.Add(1))
	if err := vec.RegisterAs(db, module, sp); err != nil {
		return err
	}
	ddl := fmt.Sprintf("CREATE VIRTUAL TABLE %s USING %s(k=%d)", queryTable, module, k)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sql: %w", err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("sql: %w", err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("sql: %w", err)
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for n := range vals {
		ptrs[n] = &vals[n]
	}
	fields := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("sql: %w", err)
		}
		for n, v := range vals {
			fields[n] = formatValue(v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return rows.Err()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return report.FormatScore(v)
	case []byte:
		return string(v)
	}
	return fmt.Sprint(v)
}
