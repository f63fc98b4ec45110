package models

// SemanticType is the inferred logical type of a column, decided once by the
// type optimizer. Downstream components switch on this value instead of
// re-inspecting raw data.
type SemanticType string

const (
	SemanticInteger SemanticType = "INTEGER"
	SemanticFloat   SemanticType = "FLOAT"
	SemanticBoolean SemanticType = "BOOLEAN"
	SemanticDate    SemanticType = "DATE"
	SemanticText    SemanticType = "TEXT"
)

// IsNumeric reports whether numeric statistics apply to this type.
func (t SemanticType) IsNumeric() bool {
	return t == SemanticInteger || t == SemanticFloat
}

// Special pattern tags assigned by the quality analyzer when a regex matches
// more than the configured share of a free-text column's sample.
const (
	PatternEmail       = "EMAIL"
	PatternPhone       = "PHONE"
	PatternURL         = "URL"
	PatternJSON        = "JSON"
	PatternDate        = "DATE"
	PatternCurrency    = "CURRENCY"
	PatternGeolocation = "GEOLOCATION"
)
