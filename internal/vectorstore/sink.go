package vectorstore

import (
	"context"
	"fmt"

	"ragqa/internal/domain"
)

// Sink is an external vector database the index can be copied into.
type Sink interface {
	Name() string
	// Init prepares the destination collection for vectors of the given shape.
	Init(ctx context.Context, metric Metric, dimension int) error
	Upsert(ctx context.Context, batch []domain.EmbeddedChunk) error
}

// DefaultExportBatch is used when Export is given a non-positive batch size.
const DefaultExportBatch = 64

// Export copies every chunk of idx into sink in insertion order and
// returns how many were written.
func Export(ctx context.Context, idx *Index, sink Sink, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultExportBatch
	}
	entries := idx.Chunks()
	if len(entries) == 0 {
		return 0, nil
	}
	if err := sink.Init(ctx, idx.Metric(), idx.Dimension()); err != nil {
		return 0, fmt.Errorf("%s init: %w", sink.Name(), err)
	}
	written := 0
	for start := 0; start < len(entries); start += batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := min(start+batchSize, len(entries))
		if err := sink.Upsert(ctx, entries[start:end]); err != nil {
			return written, fmt.Errorf("%s upsert: %w", sink.Name(), err)
		}
		written = end
	}
	return written, nil
}
