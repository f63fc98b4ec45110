package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/config"
	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
)

// PostgresStore persists profiles and ingested data over a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres connects, pings, and runs pending migrations.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(cfg.URL(), logger); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:   pool,
		logger: logger.Named("store"),
	}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// ReplaceTable drops any previous incarnation of the synthesized table,
// recreates it from the schema document, and bulk loads the data with
// COPY in chunks of chunkRows.
func (s *PostgresStore) ReplaceTable(ctx context.Context, doc *models.SchemaDocument, tbl *table.ColumnarTable, chunkRows int) error {
	if err := guardSchema(doc.TableName, doc.ColumnNames); err != nil {
		return err
	}
	if chunkRows < 1 {
		chunkRows = 1
	}

	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", doc.TableName)); err != nil {
		return fmt.Errorf("drop table %s: %w", doc.TableName, err)
	}
	if _, err := s.pool.Exec(ctx, doc.Text); err != nil {
		return fmt.Errorf("create table %s: %w", doc.TableName, err)
	}

	cols := tbl.Columns()
	rows := tbl.RowCount()
	for start := 0; start < rows; start += chunkRows {
		end := start + chunkRows
		if end > rows {
			end = rows
		}

		src := pgx.CopyFromSlice(end-start, func(i int) ([]any, error) {
			row := make([]any, len(cols))
			for j, col := range cols {
				row[j] = col.Value(start + i)
			}
			return row, nil
		})

		n, err := s.pool.CopyFrom(ctx, pgx.Identifier{doc.TableName}, doc.ColumnNames, src)
		if err != nil {
			return fmt.Errorf("copy rows %d..%d into %s: %w", start, end, doc.TableName, err)
		}
		s.logger.Debug("Copied chunk",
			zap.String("table", doc.TableName),
			zap.Int64("rows", n))
	}

	s.logger.Info("Replaced table",
		zap.String("table", doc.TableName),
		zap.Int("rows", rows))
	return nil
}

// SaveProfile upserts the dataset row keyed by table name and rewrites its
// column profile rows in one transaction.
func (s *PostgresStore) SaveProfile(ctx context.Context, profile *models.DatasetProfile) error {
	quality, err := json.Marshal(profile.Quality)
	if err != nil {
		return fmt.Errorf("marshal quality report: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var datasetID [16]byte
	err = tx.QueryRow(ctx, `
		INSERT INTO engine_datasets
			(id, table_name, source_filename, row_count, column_count, schema_text, quality, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (table_name) DO UPDATE SET
			source_filename = EXCLUDED.source_filename,
			row_count = EXCLUDED.row_count,
			column_count = EXCLUDED.column_count,
			schema_text = EXCLUDED.schema_text,
			quality = EXCLUDED.quality,
			updated_at = NOW()
		RETURNING id`,
		profile.ID, profile.TableName, profile.SourceFilename,
		profile.RowCount, profile.ColumnCount, profile.Schema.Text,
		quality, profile.CreatedAt,
	).Scan(&datasetID)
	if err != nil {
		return fmt.Errorf("upsert dataset %s: %w", profile.TableName, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM engine_column_profiles WHERE dataset_id = $1`, datasetID); err != nil {
		return fmt.Errorf("clear column profiles: %w", err)
	}

	for i, col := range profile.Columns {
		blob, err := json.Marshal(col)
		if err != nil {
			return fmt.Errorf("marshal column profile %s: %w", col.Name, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO engine_column_profiles
				(dataset_id, ordinal, name, source_name, semantic_type, sql_type, nullable, is_categorical, profile)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			datasetID, i, col.Name, col.SourceName, string(col.SemanticType),
			col.SQLType, col.Nullable, col.IsCategorical, blob)
		if err != nil {
			return fmt.Errorf("insert column profile %s: %w", col.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit profile %s: %w", profile.TableName, err)
	}

	s.logger.Info("Saved profile",
		zap.String("table", profile.TableName),
		zap.Int("columns", len(profile.Columns)))
	return nil
}
