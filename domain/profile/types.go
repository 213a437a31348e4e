package profile

// ColumnProfile summarizes one column of a bounded sample.
type ColumnProfile struct {
	Name        string   `json:"name"`
	DataType    string   `json:"data_type"` // "numeric", "boolean", "text"
	MissingRate float64  `json:"missing_rate"`
	Cardinality int      `json:"cardinality"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Mean        *float64 `json:"mean,omitempty"`
	StdDev      *float64 `json:"std_dev,omitempty"`
	Samples     []string `json:"samples,omitempty"`
}

// TableProfile summarizes a bounded sample of a dataset, used to drive rule
// suggestion.
type TableProfile struct {
	RowCount int             `json:"row_count"`
	Columns  []ColumnProfile `json:"columns"`
}
