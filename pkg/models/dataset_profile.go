package models

import (
	"time"

	"github.com/google/uuid"
)

// SchemaDocument is the synthesized relational table definition. It is a
// pure function of the optimized table's schema: identical input always
// yields byte-identical Text and identifier assignment.
type SchemaDocument struct {
	TableName   string   `json:"table_name"`
	ColumnNames []string `json:"column_names"`
	Text        string   `json:"text"`
}

// DatasetProfile is the complete profiling result for one ingested file.
// Immutable after assembly; handed whole to the persistence and NL-query
// collaborators.
type DatasetProfile struct {
	ID             uuid.UUID        `json:"id"`
	TableName      string           `json:"table_name"`
	SourceFilename string           `json:"source_filename"`
	RowCount       int              `json:"row_count"`
	ColumnCount    int              `json:"column_count"`
	Columns        []*ColumnProfile `json:"columns"`
	Quality        *QualityReport   `json:"quality_report"`
	Schema         *SchemaDocument  `json:"schema"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Column returns the profile for the named (sanitized) column, or nil.
func (p *DatasetProfile) Column(name string) *ColumnProfile {
	for _, c := range p.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}
