package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
	"github.com/tabulon-ai/tabulon-engine/pkg/testhelpers"
)

// Integration tests run against a shared disposable PostgreSQL container.
// Use -short to skip them.
func testStore(t *testing.T) *PostgresStore {
	t.Helper()
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(db.ConnStr, zap.NewNop()))

	// Per-test pool so Close never tears down the shared container pool.
	pool, err := pgxpool.New(ctx, db.ConnStr)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	st := &PostgresStore{pool: pool, logger: zap.NewNop()}
	t.Cleanup(st.Close)
	return st
}

func testTable(t *testing.T) (*models.SchemaDocument, *table.ColumnarTable) {
	t.Helper()
	name, err := table.NewStringColumn("name", []string{"Alice", "Bob"}, []bool{false, false})
	require.NoError(t, err)
	age, err := table.NewStringColumn("age", []string{"", ""}, []bool{false, true})
	require.NoError(t, err)
	require.NoError(t, age.SetInts([]int64{30, 0}, []bool{false, true}))

	tbl, err := table.New([]*table.Column{name, age})
	require.NoError(t, err)

	doc := &models.SchemaDocument{
		TableName:   "store_test_people",
		ColumnNames: []string{"name", "age"},
		Text: `CREATE TABLE "store_test_people" (
    id BIGSERIAL PRIMARY KEY,
    "name" VARCHAR(20) NOT NULL,
    "age" BIGINT,
    created_at TIMESTAMP DEFAULT NOW()
);`,
	}
	return doc, tbl
}

func TestReplaceTableIntegration(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	doc, tbl := testTable(t)

	require.NoError(t, st.ReplaceTable(ctx, doc, tbl, 1))

	var count int
	require.NoError(t, st.pool.QueryRow(ctx, `SELECT COUNT(*) FROM store_test_people`).Scan(&count))
	assert.Equal(t, 2, count)

	var age *int64
	require.NoError(t, st.pool.QueryRow(ctx,
		`SELECT age FROM store_test_people WHERE name = 'Bob'`).Scan(&age))
	assert.Nil(t, age, "null survives the round trip")

	// Replacing again must not fail or duplicate rows.
	require.NoError(t, st.ReplaceTable(ctx, doc, tbl, 50))
	require.NoError(t, st.pool.QueryRow(ctx, `SELECT COUNT(*) FROM store_test_people`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSaveProfileIntegration(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	doc, _ := testTable(t)

	profile := &models.DatasetProfile{
		ID:             uuid.New(),
		TableName:      doc.TableName,
		SourceFilename: "people.csv",
		RowCount:       2,
		ColumnCount:    2,
		Columns: []*models.ColumnProfile{
			{Name: "name", SourceName: "name", SemanticType: models.SemanticText, SQLType: "VARCHAR(20)"},
			{Name: "age", SourceName: "age", SemanticType: models.SemanticInteger, SQLType: "BIGINT", Nullable: true},
		},
		Quality:   &models.QualityReport{RowCount: 2},
		Schema:    doc,
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, st.SaveProfile(ctx, profile))
	// Saving again exercises the upsert path.
	require.NoError(t, st.SaveProfile(ctx, profile))

	var cols int
	require.NoError(t, st.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM engine_column_profiles cp
		 JOIN engine_datasets d ON d.id = cp.dataset_id
		 WHERE d.table_name = $1`, doc.TableName).Scan(&cols))
	assert.Equal(t, 2, cols)
}
