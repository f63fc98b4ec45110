package models

// ValueCount pairs a stringified value with its occurrence count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile holds everything the engine knows about a single column:
// its inferred type, storage mapping, statistics, and the semantic
// annotations handed to the NL-query collaborator. Owned exclusively by the
// DatasetProfile that contains it and never mutated after assembly.
type ColumnProfile struct {
	// Name is the sanitized identifier used in the synthesized schema.
	Name string `json:"name"`
	// SourceName is the raw header as it appeared in the file.
	SourceName string `json:"source_name"`

	SemanticType  SemanticType `json:"semantic_type"`
	SQLType       string       `json:"sql_type"`
	Nullable      bool         `json:"nullable"`
	IsCategorical bool         `json:"is_categorical"`

	UniqueCount int `json:"unique_count"`
	NullCount   int `json:"null_count"`

	// Numeric statistics, present only when SemanticType is INTEGER or FLOAT.
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	StdDev *float64 `json:"std_dev,omitempty"`

	// SampleValues holds up to 5 stringified non-null values in row order.
	SampleValues []string `json:"sample_values"`
	// TopValues holds up to 10 value/count pairs ordered by count descending,
	// ties broken by first appearance.
	TopValues []ValueCount `json:"top_values"`
	// EnumValues is the full distinct value set, non-nil iff IsCategorical.
	EnumValues []string `json:"enum_values,omitempty"`

	// Heuristic annotations for the NL-query collaborator.
	ValueMappings   map[string]string   `json:"value_mappings,omitempty"`
	SynonymMappings map[string][]string `json:"synonym_mappings,omitempty"`
	// ExampleQueries holds generated natural-language question prompts.
	ExampleQueries []string `json:"example_queries,omitempty"`
	Description    string   `json:"description"`

	// SpecialPattern is a recognized text sub-format tag (EMAIL, URL, ...),
	// empty when none was detected.
	SpecialPattern string `json:"special_pattern,omitempty"`

	// AnalysisError records a per-column statistics failure. The failure is
	// isolated to this column; sibling columns are unaffected.
	AnalysisError string `json:"analysis_error,omitempty"`
}
