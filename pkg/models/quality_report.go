package models

// ColumnStats is the raw statistics block computed by the quality analyzer
// for one column. Numeric fields are nil for non-numeric columns and when
// every value is null.
type ColumnStats struct {
	MissingCount int     `json:"missing_count"`
	MissingPct   float64 `json:"missing_pct"`
	UniqueCount  int     `json:"unique_count"`
	UniquePct    float64 `json:"unique_pct"`

	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	StdDev *float64 `json:"std,omitempty"`

	// Outliers counts non-null numeric values whose modified z-score
	// magnitude exceeds the outlier threshold.
	Outliers int `json:"outliers,omitempty"`

	SpecialPattern string `json:"special_type,omitempty"`

	// Error marks a column whose statistics computation failed. Remaining
	// fields may be partially populated.
	Error string `json:"error,omitempty"`
}

// QualityReport aggregates per-column statistics for a dataset, plus the
// pairwise Pearson correlation matrix over numeric columns when more than
// one exists.
type QualityReport struct {
	ColumnStats    map[string]*ColumnStats       `json:"column_stats"`
	RowCount       int                           `json:"row_count"`
	TotalSizeBytes int64                         `json:"total_size_bytes"`
	Correlations   map[string]map[string]float64 `json:"correlations,omitempty"`
}
