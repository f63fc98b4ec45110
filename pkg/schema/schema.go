// Package schema turns a typed table into a PostgreSQL DDL document:
// sanitized identifiers, a type mapping sized to the observed data, a
// surrogate primary key and an ingestion timestamp. Output is fully
// deterministic so repeated runs over the same file produce identical DDL.
package schema

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/apperrors"
	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
)

// varcharLadder maps the observed maximum string length to a VARCHAR
// capacity with headroom. Capacity is always bounded so worst-case row
// size stays bounded too.
var varcharLadder = []struct {
	maxLen   int
	capacity int
}{
	{5, 20},
	{20, 50},
	{100, 200},
	{500, 1000},
}

const varcharMaxCapacity = 5000

// Synthesizer builds schema documents from typed tables.
type Synthesizer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Synthesizer {
	return &Synthesizer{logger: logger.Named("schema")}
}

// Synthesize produces the CREATE TABLE statement for a typed table. The
// returned document's ColumnNames align positionally with tbl.Columns().
func (s *Synthesizer) Synthesize(filename string, tbl *table.ColumnarTable) (*models.SchemaDocument, error) {
	if tbl.ColumnCount() == 0 {
		return nil, &apperrors.SchemaError{Identifier: filename, Err: apperrors.ErrEmptyFile}
	}

	tableName := SanitizeTableName(filename)

	names := make([]string, tbl.ColumnCount())
	for i, col := range tbl.Columns() {
		names[i] = SanitizeIdentifier(col.Name())
	}
	names = DedupIdentifiers(names)

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %q (\n", tableName)
	b.WriteString("    id BIGSERIAL PRIMARY KEY")
	for i, col := range tbl.Columns() {
		fmt.Fprintf(&b, ",\n    %q %s", names[i], SQLTypeFor(col))
		if col.NullCount() == 0 && col.Len() > 0 {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(",\n    created_at TIMESTAMP DEFAULT NOW()\n);")

	s.logger.Debug("Synthesized schema",
		zap.String("table", tableName),
		zap.Int("columns", len(names)))

	return &models.SchemaDocument{
		TableName:   tableName,
		ColumnNames: names,
		Text:        b.String(),
	}, nil
}

// SQLTypeFor picks the PostgreSQL type for a column. Integers map to the
// smallest of SMALLINT, INTEGER and BIGINT that holds the observed range;
// text maps to the smallest VARCHAR step covering the longest value.
func SQLTypeFor(col *table.Column) string {
	switch col.Kind() {
	case table.KindInt:
		return intSQLType(col.Width())
	case table.KindFloat:
		return "DOUBLE PRECISION"
	case table.KindBool:
		return "BOOLEAN"
	case table.KindTime:
		return "TIMESTAMP"
	default:
		return textSQLType(col)
	}
}

func intSQLType(w table.IntWidth) string {
	switch w {
	case table.WidthInt8, table.WidthInt16, table.WidthUint8:
		return "SMALLINT"
	case table.WidthInt32, table.WidthUint16:
		return "INTEGER"
	default:
		return "BIGINT"
	}
}

func textSQLType(col *table.Column) string {
	longest := 0
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		if n := len(col.StringAt(i)); n > longest {
			longest = n
		}
	}
	for _, step := range varcharLadder {
		if longest <= step.maxLen {
			return fmt.Sprintf("VARCHAR(%d)", step.capacity)
		}
	}
	return fmt.Sprintf("VARCHAR(%d)", varcharMaxCapacity)
}
