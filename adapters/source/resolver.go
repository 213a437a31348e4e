package source

import (
	"context"
	"fmt"

	"goexpect/adapters/db"
	"goexpect/adapters/file"
	"goexpect/domain/batch"
	"goexpect/domain/core"
	"goexpect/domain/dataset"
	"goexpect/ports"
)

// Resolver dispatches dataset descriptors to the file or relational adapter.
// It implements ports.SourceResolver.
type Resolver struct {
	relational *db.Resolver
}

// NewResolver creates the unified source resolver.
func NewResolver() *Resolver {
	return &Resolver{relational: db.NewResolver()}
}

// Resolve materializes the descriptor into a batch.
func (r *Resolver) Resolve(ctx context.Context, desc dataset.Descriptor, rowLimit int) (*batch.Batch, error) {
	switch {
	case desc.IsFile():
		return file.NewReader(desc.FilePath).Read(rowLimit)
	case desc.IsRelational():
		return r.relational.Resolve(ctx, *desc.DB, rowLimit)
	default:
		return nil, core.NewSourceUnavailableError("descriptor", fmt.Errorf("dataset has no data source config"))
	}
}

// Preview returns a bounded sample in header/row form for display and rule
// suggestion workflows. It reuses Resolve, so every dialect and failure mode
// behaves identically to a validation run.
func (r *Resolver) Preview(ctx context.Context, desc dataset.Descriptor, rowLimit int) (*ports.Preview, error) {
	b, err := r.Resolve(ctx, desc, rowLimit)
	if err != nil {
		return nil, err
	}

	preview := &ports.Preview{
		Headers: b.Columns,
		Rows:    make([]map[string]interface{}, 0, len(b.Rows)),
	}
	for _, row := range b.Rows {
		out := make(map[string]interface{}, len(row))
		for col, v := range row {
			out[col] = v
		}
		preview.Rows = append(preview.Rows, out)
	}
	return preview, nil
}
