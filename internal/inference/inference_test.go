package inference

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCandidate(t *testing.T) {
	tests := []struct {
		name   string
		column string
		table  string
		want   int
	}{
		{"exact table_id match", "customer_id", "customer", 2},
		{"_id suffix without table match", "ref_id", "widget", 3},
		{"table name substring", "customer_fk", "customer", 4},
		{"generic id suffix", "uid", "account", 5},
		{"no naming similarity", "payload_fk", "account", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreCandidate(tt.column, tt.table))
		})
	}
}

func TestIsIDLike(t *testing.T) {
	assert.True(t, isIDLike("customer_id"))
	assert.True(t, isIDLike("uid"))
	assert.True(t, isIDLike("owner_fk"))
	assert.False(t, isIDLike("name"))
	// Suffix matching is case-sensitive.
	assert.False(t, isIDLike("Customer_ID"))
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "Strong implied relationship (exact match)", LabelFor(2))
	assert.Equal(t, "Strong implied relationship (_id pattern)", LabelFor(3))
	assert.Equal(t, "Likely implied relationship (name match)", LabelFor(4))
	assert.Equal(t, "Possible implied relationship", LabelFor(5))
}

func expectSourceColumns(mock sqlmock.Sqlmock, schema, table string, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY ordinal_position")).
		WithArgs(schema, table).
		WillReturnRows(rows)
}

func expectCandidateColumns(mock sqlmock.Sqlmock, schema, table string, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("table_name <> $2")).
		WithArgs(schema, table).
		WillReturnRows(rows)
}

func TestImpliedExactMatchWinsOverWeakerRules(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectSourceColumns(mock, "public", "orders",
		sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("id", "integer").
			AddRow("customer_id", "integer").
			AddRow("total", "numeric"))
	expectCandidateColumns(mock, "public", "orders",
		sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("customer", "id", "integer").
			AddRow("customer", "name", "text"))

	edges, err := Implied(context.Background(), db, "public", "orders")
	require.NoError(t, err)

	// customer_id -> customer.id must score 2, and the table's own "id"
	// column must not pair with customer (no _id suffix, no name overlap,
	// but "id" has the generic suffix and matching type: level 5).
	require.Len(t, edges, 2)
	assert.Equal(t, ImpliedEdge{
		Column:    "customer_id",
		RefTable:  "customer",
		RefColumn: "id",
		Level:     2,
		Label:     "Strong implied relationship (exact match)",
	}, edges[0])
	assert.Equal(t, 5, edges[1].Level)
	assert.Equal(t, "id", edges[1].Column)
}

func TestImpliedIDPatternWithoutTableMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectSourceColumns(mock, "public", "orders",
		sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("ref_id", "integer"))
	expectCandidateColumns(mock, "public", "orders",
		sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("widget", "id", "integer"))

	edges, err := Implied(context.Background(), db, "public", "orders")
	require.NoError(t, err)

	require.Len(t, edges, 1)
	assert.Equal(t, 3, edges[0].Level)
	assert.Equal(t, "Strong implied relationship (_id pattern)", edges[0].Label)
}

func TestImpliedTypeMismatchDropped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectSourceColumns(mock, "public", "orders",
		sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("customer_id", "integer"))
	expectCandidateColumns(mock, "public", "orders",
		sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("customer", "id", "uuid"))

	edges, err := Implied(context.Background(), db, "public", "orders")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestImpliedOrderingAndDedup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectSourceColumns(mock, "public", "events",
		sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("b_id", "integer").
			AddRow("a_id", "integer"))
	expectCandidateColumns(mock, "public", "events",
		sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("a", "id", "integer").
			AddRow("a", "id", "integer"). // duplicate catalog row
			AddRow("b", "id", "integer"))

	edges, err := Implied(context.Background(), db, "public", "events")
	require.NoError(t, err)

	// Level ascending, then source column; the duplicate collapses.
	require.Len(t, edges, 4)
	assert.Equal(t, []ImpliedEdge{
		{Column: "a_id", RefTable: "a", RefColumn: "id", Level: 2, Label: LabelFor(2)},
		{Column: "b_id", RefTable: "b", RefColumn: "id", Level: 2, Label: LabelFor(2)},
		{Column: "a_id", RefTable: "b", RefColumn: "id", Level: 3, Label: LabelFor(3)},
		{Column: "b_id", RefTable: "a", RefColumn: "id", Level: 3, Label: LabelFor(3)},
	}, edges)
}

func TestImpliedNoIDLikeColumnsSkipsCandidateScan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectSourceColumns(mock, "public", "settings",
		sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("key", "text").
			AddRow("value", "text"))

	edges, err := Implied(context.Background(), db, "public", "settings")
	require.NoError(t, err)
	assert.Empty(t, edges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("constraint_type = 'FOREIGN KEY'")).
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "fk_column", "referenced_schema", "referenced_table", "referenced_column",
		}).AddRow("orders_customer_id_fkey", "customer_id", "public", "customer", "id"))

	edges, err := ForeignKeys(context.Background(), db, "public", "orders")
	require.NoError(t, err)

	require.Len(t, edges, 1)
	assert.Equal(t, ForeignKeyEdge{
		Constraint: "orders_customer_id_fkey",
		Column:     "customer_id",
		RefSchema:  "public",
		RefTable:   "customer",
		RefColumn:  "id",
	}, edges[0])
}

func TestForeignKeysQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("constraint_type = 'FOREIGN KEY'")).
		WillReturnError(errors.New("permission denied"))

	_, err = ForeignKeys(context.Background(), db, "public", "orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
