// Package inference derives table relationships from catalog metadata:
// declared foreign keys, and heuristically implied edges ranked by a
// confidence level where a lower number means a stronger match.
package inference

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// ForeignKeyEdge is one declared FOREIGN KEY constraint column pair.
type ForeignKeyEdge struct {
	Constraint string
	Column     string
	RefSchema  string
	RefTable   string
	RefColumn  string
}

// ImpliedEdge is a heuristic relationship candidate. Level runs 2..5,
// strongest first.
type ImpliedEdge struct {
	Column    string
	RefTable  string
	RefColumn string
	Level     int
	Label     string
}

// InferenceError wraps a failure inside one of the passes.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("Error finding relationships: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

const foreignKeysQuery = `
	SELECT
		tc.constraint_name,
		kcu.column_name AS fk_column,
		ccu.table_schema AS referenced_schema,
		ccu.table_name AS referenced_table,
		ccu.column_name AS referenced_column
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	JOIN information_schema.referential_constraints rc
		ON tc.constraint_name = rc.constraint_name
	JOIN information_schema.constraint_column_usage ccu
		ON rc.unique_constraint_name = ccu.constraint_name
	WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = $1
		AND tc.table_name = $2
	ORDER BY tc.constraint_name, kcu.ordinal_position`

const sourceColumnsQuery = `
	SELECT column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position`

const candidateColumnsQuery = `
	SELECT table_name, column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name <> $2
	ORDER BY table_name, ordinal_position`

// ForeignKeys lists every declared foreign key on schema.table, ordered by
// constraint name then column position. All identifiers are bound as
// parameters; nothing is interpolated into the statement text.
func ForeignKeys(ctx context.Context, db *sql.DB, schema, table string) ([]ForeignKeyEdge, error) {
	rows, err := db.QueryContext(ctx, foreignKeysQuery, schema, table)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	var edges []ForeignKeyEdge
	for rows.Next() {
		var e ForeignKeyEdge
		if err := rows.Scan(&e.Constraint, &e.Column, &e.RefSchema, &e.RefTable, &e.RefColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

type column struct {
	Table    string
	Name     string
	DataType string
}

// Implied produces heuristic relationship candidates for schema.table. The
// source side is every ID-like column of the table; the target side is every
// other table in the schema whose column is literally "id" or shares the
// source column's name, with exactly matching declared types. Candidates are
// deduplicated and ordered by confidence level then source column.
func Implied(ctx context.Context, db *sql.DB, schema, table string) ([]ImpliedEdge, error) {
	sources, err := sourceColumns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, nil
	}

	candidates, err := candidateColumns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var edges []ImpliedEdge
	for _, src := range sources {
		for _, cand := range candidates {
			if cand.Name != "id" && cand.Name != src.Name {
				continue
			}
			if cand.DataType != src.DataType {
				continue
			}
			level := scoreCandidate(src.Name, cand.Table)
			if level == 0 {
				continue
			}

			key := src.Name + "\x00" + cand.Table + "\x00" + cand.Name
			if seen[key] {
				continue
			}
			seen[key] = true

			edges = append(edges, ImpliedEdge{
				Column:    src.Name,
				RefTable:  cand.Table,
				RefColumn: cand.Name,
				Level:     level,
				Label:     LabelFor(level),
			})
		}
	}

	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Level != edges[j].Level {
			return edges[i].Level < edges[j].Level
		}
		return edges[i].Column < edges[j].Column
	})
	return edges, nil
}

func sourceColumns(ctx context.Context, db *sql.DB, schema, table string) ([]column, error) {
	rows, err := db.QueryContext(ctx, sourceColumnsQuery, schema, table)
	if err != nil {
		return nil, fmt.Errorf("query source columns: %w", err)
	}
	defer rows.Close()

	var cols []column
	for rows.Next() {
		c := column{Table: table}
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, fmt.Errorf("scan source column: %w", err)
		}
		if isIDLike(c.Name) {
			cols = append(cols, c)
		}
	}
	return cols, rows.Err()
}

func candidateColumns(ctx context.Context, db *sql.DB, schema, table string) ([]column, error) {
	rows, err := db.QueryContext(ctx, candidateColumnsQuery, schema, table)
	if err != nil {
		return nil, fmt.Errorf("query candidate columns: %w", err)
	}
	defer rows.Close()

	var cols []column
	for rows.Next() {
		var c column
		if err := rows.Scan(&c.Table, &c.Name, &c.DataType); err != nil {
			return nil, fmt.Errorf("scan candidate column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// isIDLike reports whether a column name marks a potential reference. Suffix
// matching is case-sensitive, like the catalog LIKE patterns it replaces.
func isIDLike(name string) bool {
	return strings.HasSuffix(name, "id") ||
		strings.HasSuffix(name, "_id") ||
		strings.HasSuffix(name, "_fk")
}

// scoreCandidate ranks a type-matched candidate by naming similarity. The
// first matching rule wins; 0 means the candidate is dropped.
func scoreCandidate(columnName, targetTable string) int {
	switch {
	case columnName == targetTable+"_id":
		return 2
	case strings.HasSuffix(columnName, "_id"):
		return 3
	case strings.Contains(columnName, targetTable):
		return 4
	case strings.HasSuffix(columnName, "id"):
		return 5
	}
	return 0
}

// LabelFor renders a confidence level to its fixed description.
func LabelFor(level int) string {
	switch level {
	case 2:
		return "Strong implied relationship (exact match)"
	case 3:
		return "Strong implied relationship (_id pattern)"
	case 4:
		return "Likely implied relationship (name match)"
	default:
		return "Possible implied relationship"
	}
}
