package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDB captures queries sent through the Database interface
type recordingDB struct {
	queries []string
	vars    []map[string]any
	err     error
}

func (d *recordingDB) Connect(context.Context) error { return nil }
func (d *recordingDB) Close() error                  { return nil }
func (d *recordingDB) Ping(context.Context) error    { return nil }

func (d *recordingDB) Query(_ context.Context, query string, vars map[string]any) ([]any, error) {
	d.queries = append(d.queries, query)
	d.vars = append(d.vars, vars)
	return nil, d.err
}

func (d *recordingDB) QueryOne(ctx context.Context, query string, vars map[string]any) (any, error) {
	_, err := d.Query(ctx, query, vars)
	return nil, err
}

func (d *recordingDB) Execute(ctx context.Context, query string, vars map[string]any) error {
	_, err := d.Query(ctx, query, vars)
	return err
}

func (d *recordingDB) BeginTx(ctx context.Context) (Transaction, error) {
	return &batchTransaction{db: d, ctx: ctx, builder: NewTxBuilder()}, nil
}

func TestTxBuilder_NamespacesVariables(t *testing.T) {
	t.Parallel()
	tb := NewTxBuilder()

	first := tb.Add("UPDATE type::record($id) SET name = $name", map[string]any{"id": "household:1", "name": "a"})
	second := tb.Add("DELETE type::record($id)", map[string]any{"id": "house:1"})
	query, vars := tb.Build()

	assert.NotEqual(t, first["id"], second["id"])
	assert.Equal(t, "household:1", vars[first["id"]])
	assert.Equal(t, "house:1", vars[second["id"]])
	assert.Contains(t, query, "BEGIN TRANSACTION;\n")
	assert.Contains(t, query, "DELETE type::record($"+second["id"]+");")
	assert.NotContains(t, query, "$id)")
	assert.True(t, len(query) > 0 && query[len(query)-len("COMMIT TRANSACTION;"):] == "COMMIT TRANSACTION;")
}

func TestTxBuilder_PrefixNames(t *testing.T) {
	t.Parallel()
	tb := NewTxBuilder()

	m := tb.Add("WHERE lat >= $lat_min AND lat <= $lat", map[string]any{"lat": 1.0, "lat_min": 0.0})
	query, _ := tb.Build()

	assert.Contains(t, query, "$"+m["lat_min"]+" ")
	assert.Contains(t, query, "$"+m["lat"]+";")
}

func TestTxBuilder_Empty(t *testing.T) {
	t.Parallel()
	query, vars := NewTxBuilder().Build()

	assert.Empty(t, query)
	assert.Nil(t, vars)
}

func TestAtomicBatch_SingleRoundTrip(t *testing.T) {
	t.Parallel()
	db := &recordingDB{}

	batch := NewAtomicBatch().
		Add("UPDATE household SET house = NONE WHERE house = type::record($id)", map[string]any{"id": "house:1"}).
		Add("DELETE type::record($id)", map[string]any{"id": "house:1"})

	require.NoError(t, batch.Execute(context.Background(), db))
	assert.Equal(t, 2, batch.Len())
	require.Len(t, db.queries, 1)
	assert.Len(t, db.vars[0], 2)
}

func TestAtomicBatch_EmptyIsNoop(t *testing.T) {
	t.Parallel()
	db := &recordingDB{}

	require.NoError(t, NewAtomicBatch().Execute(context.Background(), db))
	assert.Empty(t, db.queries)
}

func TestBatchTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &recordingDB{}

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Execute(ctx, "UPDATE user SET group = NONE WHERE group = type::record($id)", map[string]any{"id": "household:1"}))
	require.NoError(t, tx.Execute(ctx, "DELETE type::record($id)", map[string]any{"id": "household:1"}))
	assert.Empty(t, db.queries, "nothing is sent before commit")

	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Commit())
	assert.Len(t, db.queries, 1)
	assert.Error(t, tx.Execute(ctx, "DELETE user", nil))
}

func TestBatchTransaction_RollbackDiscards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &recordingDB{}

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Execute(ctx, "DELETE user", nil))
	require.NoError(t, tx.Rollback())
	require.NoError(t, tx.Commit())

	assert.Empty(t, db.queries)
}

func TestBatchTransaction_CommitError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &recordingDB{err: ErrQuery}

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Execute(ctx, "DELETE user", nil))

	assert.ErrorIs(t, tx.Commit(), ErrQuery)
}

func TestRecords(t *testing.T) {
	t.Parallel()
	results := []any{
		map[string]any{"status": "OK", "result": nil},
		map[string]any{"status": "OK", "result": []any{map[string]any{"id": "a"}, "skip", map[string]any{"id": "b"}}},
		map[string]any{"status": "OK", "result": map[string]any{"id": "only"}},
	}

	assert.Nil(t, Records(results, 0))
	assert.Len(t, Records(results, 1), 2)
	assert.Equal(t, "only", Records(results, -1)[0]["id"])
	assert.Nil(t, Records(results, 5))

	_, ok := StatementResult(results, -4)
	assert.False(t, ok)
}

func TestQueryError(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(queryError("Database index `user_email` already contains 'a@b.c'"), ErrDuplicate))
	assert.True(t, errors.Is(queryError("Parse error"), ErrQuery))
	assert.False(t, errors.Is(queryError("Parse error"), ErrDuplicate))
}

func TestConfigEndpoint(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ws://localhost:8000", Config{Host: "localhost", Port: "8000"}.Endpoint())
}
