package batch

// Value is a single cell value in a resolved batch.
// It is one of: nil, string, float64, bool.
type Value interface{}

// Row maps column name to cell value.
type Row map[string]Value

// Batch is the resolved, in-memory tabular view of a dataset used for one
// evaluation run. It is produced fresh per run, owned exclusively by that run,
// and never mutated after creation, so concurrent readers need no locking.
type Batch struct {
	Columns []string
	Rows    []Row
}

// New creates a batch from an ordered column list and row data.
func New(columns []string, rows []Row) *Batch {
	return &Batch{Columns: columns, Rows: rows}
}

// Empty returns a batch with no columns and no rows.
func Empty() *Batch {
	return &Batch{Columns: []string{}, Rows: []Row{}}
}

// RowCount returns the number of rows in the batch.
func (b *Batch) RowCount() int {
	return len(b.Rows)
}

// ColumnValues returns every row's value for the named column in row order.
// Rows missing the column contribute a nil value.
func (b *Batch) ColumnValues(name string) []Value {
	values := make([]Value, 0, len(b.Rows))
	for _, row := range b.Rows {
		values = append(values, row[name])
	}
	return values
}
