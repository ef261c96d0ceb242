package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/record"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestRecord creates a record with default values for testing.
func newTestRecord(id, input, output string, createdAt int64) *record.Record {
	return &record.Record{
		ID:          id,
		InputHash:   record.Fingerprint(input),
		Input:       input,
		Output:      output,
		InputChars:  record.CountChars(input),
		OutputChars: record.CountChars(output),
		Options:     `{"lowercase":true}`,
		Source:      record.SourceCLI,
		CreatedAt:   createdAt,
	}
}

func TestInsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	r := newTestRecord("01ABC123", "very nice", "vewy nyice", 1000)
	r.Markdown = true
	r.Fallback = true
	r.Source = record.SourceMCP

	require.NoError(t, Insert(ctx, db, r))

	got, err := GetByID(ctx, db, "01ABC123")
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestInsert_DuplicateID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	r := newTestRecord("01DUP", "a", "a", 1)
	require.NoError(t, Insert(ctx, db, r))

	err := Insert(ctx, db, r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIO))
}

func TestGetByID_NotFound(t *testing.T) {
	_, err := GetByID(context.Background(), openTestDB(t), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestList_NewestFirstWithPagination(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for i := range 5 {
		r := newTestRecord(fmt.Sprintf("01REC%d", i), fmt.Sprintf("in %d", i), fmt.Sprintf("out %d", i), int64(1000+i))
		require.NoError(t, Insert(ctx, db, r))
	}

	items, total, err := List(ctx, db, ListFilters{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "01REC4", items[0].ID)
	assert.Equal(t, "01REC3", items[1].ID)
	assert.Equal(t, "out 4", items[0].Preview)

	items, total, err = List(ctx, db, ListFilters{}, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 1)
	assert.Equal(t, "01REC0", items[0].ID)
}

func TestList_SameTimestampOrdersByID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, Insert(ctx, db, newTestRecord("01A", "a", "a", 7)))
	require.NoError(t, Insert(ctx, db, newTestRecord("01B", "b", "b", 7)))

	items, _, err := List(ctx, db, ListFilters{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "01B", items[0].ID)
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	web := newTestRecord("01WEB", "same", "x", 1)
	web.Source = record.SourceWeb
	require.NoError(t, Insert(ctx, db, web))
	require.NoError(t, Insert(ctx, db, newTestRecord("01CLI", "same", "x", 2)))
	require.NoError(t, Insert(ctx, db, newTestRecord("01OTHER", "other", "x", 3)))

	items, total, err := List(ctx, db, ListFilters{Source: record.SourceWeb}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "01WEB", items[0].ID)

	_, total, err = List(ctx, db, ListFilters{InputHash: record.Fingerprint("same")}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = List(ctx, db, ListFilters{Source: record.SourceCLI, InputHash: record.Fingerprint("same")}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestList_Empty(t *testing.T) {
	items, total, err := List(context.Background(), openTestDB(t), ListFilters{}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestPurge_All(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, Insert(ctx, db, newTestRecord("01A", "a", "a", 1)))
	require.NoError(t, Insert(ctx, db, newTestRecord("01B", "b", "b", time.Now().Unix())))

	n, err := Purge(ctx, db, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, total, err := List(ctx, db, ListFilters{}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPurge_OlderThan(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	old := time.Now().Add(-10 * 24 * time.Hour).Unix()
	require.NoError(t, Insert(ctx, db, newTestRecord("01OLD", "a", "a", old)))
	require.NoError(t, Insert(ctx, db, newTestRecord("01NEW", "b", "b", time.Now().Unix())))

	days := 7
	n, err := Purge(ctx, db, &days)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = GetByID(ctx, db, "01NEW")
	assert.NoError(t, err)
	_, err = GetByID(ctx, db, "01OLD")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
