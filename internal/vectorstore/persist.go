package vectorstore

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ragqa/internal/domain"
)

const snapshotVersion = 1

type snapshot struct {
	Version   int
	Metric    string
	Dimension int
	Records   []record
}

type record struct {
	ChunkID    string
	DocumentID string
	Start      int
	End        int
	Seq        int
	Text       string
	Vector     []float64
}

// Encode writes the index as a gob snapshot. Vectors round-trip bit for bit.
// Stored vectors are never mutated, so encoding runs outside the lock.
func (x *Index) Encode(w io.Writer) error {
	x.mu.RLock()
	snap := snapshot{
		Version:   snapshotVersion,
		Metric:    string(x.metric),
		Dimension: x.dimension,
		Records:   make([]record, len(x.entries)),
	}
	for i, ec := range x.entries {
		snap.Records[i] = record{
			ChunkID:    ec.ID,
			DocumentID: ec.DocumentID,
			Start:      ec.Start,
			End:        ec.End,
			Seq:        ec.Seq,
			Text:       ec.Text,
			Vector:     ec.Vector,
		}
	}
	x.mu.RUnlock()
	return gob.NewEncoder(w).Encode(snap)
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (*Index, error) {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, domain.InvalidConfig("vectorstore.Decode", snap.Version, "unsupported snapshot version")
	}
	metric, err := ParseMetric(snap.Metric)
	if err != nil {
		return nil, err
	}
	x, err := New(metric, snap.Dimension)
	if err != nil {
		return nil, err
	}
	batch := make([]domain.EmbeddedChunk, len(snap.Records))
	for i, rec := range snap.Records {
		batch[i] = domain.EmbeddedChunk{
			Chunk: domain.Chunk{
				ID:         rec.ChunkID,
				DocumentID: rec.DocumentID,
				Start:      rec.Start,
				End:        rec.End,
				Text:       rec.Text,
				Seq:        rec.Seq,
			},
			Vector: rec.Vector,
		}
	}
	if err := x.InsertBatch(batch); err != nil {
		return nil, err
	}
	return x, nil
}

// Save writes the index to path through a temporary file and a rename.
func (x *Index) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if err := x.Encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads an index saved with Save.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
