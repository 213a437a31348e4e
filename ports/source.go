package ports

import (
	"context"

	"goexpect/domain/batch"
	"goexpect/domain/dataset"
)

// Preview is a bounded sample of a dataset for display and rule suggestion.
type Preview struct {
	Headers []string                 `json:"headers"`
	Rows    []map[string]interface{} `json:"rows"`
}

// SourceResolver turns a dataset descriptor into a uniform tabular view.
//
// Resolve reads at most rowLimit rows (rowLimit <= 0 means a full scan).
// It fails with core.ErrSourceUnavailable when the file is missing or the
// connection/credentials fail, and with core.ErrUnsupportedDialect when the
// descriptor names a backend with no adapter registered. A relational
// descriptor with an empty table is a connectivity-only probe: the resolver
// opens the connection, runs one metadata query, and returns an empty batch.
type SourceResolver interface {
	Resolve(ctx context.Context, desc dataset.Descriptor, rowLimit int) (*batch.Batch, error)
	Preview(ctx context.Context, desc dataset.Descriptor, rowLimit int) (*Preview, error)
}
