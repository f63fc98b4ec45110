// Package store persists profiling results to PostgreSQL: the ingested
// data itself under its synthesized schema, and the profile document in
// the engine's own tables.
package store

import (
	"context"

	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
)

// Store is the persistence boundary for profiling results.
type Store interface {
	// ReplaceTable drops and recreates the synthesized table, then bulk
	// loads the typed data in chunks of at most chunkRows rows.
	ReplaceTable(ctx context.Context, doc *models.SchemaDocument, tbl *table.ColumnarTable, chunkRows int) error

	// SaveProfile upserts the profile document keyed by table name.
	SaveProfile(ctx context.Context, profile *models.DatasetProfile) error

	Close()
}
