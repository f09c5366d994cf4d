package embedding

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

// snapshot is the msgpack layout: one flat vector slice, row i belongs to Tokens[i].
type snapshot struct {
	Version int       `msgpack:"v"`
	Dim     int       `msgpack:"d"`
	Tokens  []string  `msgpack:"t"`
	Vectors []float32 `msgpack:"x"`
}

// WriteSnapshot encodes t as a msgpack snapshot readable by ReadSnapshot.
func WriteSnapshot(w io.Writer, t *Table) error {
	s := snapshot{
		Version: snapshotVersion,
		Dim:     t.dim,
		Tokens:  t.tokens,
		Vectors: t.vectors,
	}
	if err := msgpack.NewEncoder(w).Encode(&s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a msgpack snapshot.
func ReadSnapshot(r io.Reader) (*Table, error) {
	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.Dim <= 0 || s.Dim > MaxDimensions {
		return nil, fmt.Errorf("invalid snapshot dimension %d", s.Dim)
	}
	if len(s.Vectors) != len(s.Tokens)*s.Dim {
		return nil, fmt.Errorf("snapshot has %d components, want %d tokens x %d dims",
			len(s.Vectors), len(s.Tokens), s.Dim)
	}

	b := newBuilder(s.Dim, len(s.Tokens))
	for i, tok := range s.Tokens {
		if err := b.add(tok, s.Vectors[i*s.Dim:(i+1)*s.Dim]); err != nil {
			return nil, err
		}
	}
	return b.build()
}
