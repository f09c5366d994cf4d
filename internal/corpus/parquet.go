package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/flavorsearch/internal/domain/recipe"
)

// parquetRow mirrors the snapshot written by pandas/pyarrow to_parquet.
type parquetRow struct {
	Title        string   `parquet:"Title,optional"`
	Instructions string   `parquet:"Instructions,optional"`
	ImageName    string   `parquet:"Image_Name,optional"`
	Ingredients  string   `parquet:"Cleaned_Ingredients,optional"`
	Tokens       []string `parquet:"combined_cleaned,list"`
	Index        *int64   `parquet:"index,optional"`
}

const parquetBatch = 512

func readParquetFile(path string) ([]Record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	present := make(map[string]struct{})
	for _, fld := range pf.Schema().Fields() {
		present[fld.Name()] = struct{}{}
	}
	for _, req := range RequiredColumns {
		if _, ok := present[req]; !ok {
			return nil, fmt.Errorf("missing required column %q", req)
		}
	}

	reader := parquet.NewGenericReader[parquetRow](f)
	defer reader.Close()

	records := make([]Record, 0, reader.NumRows())
	buf := make([]parquetRow, parquetBatch)
	for {
		n, err := reader.Read(buf)
		for _, row := range buf[:n] {
			records = append(records, row.record())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return records, nil
}

func (r *parquetRow) record() Record {
	sourceIndex := -1
	if r.Index != nil {
		sourceIndex = int(*r.Index)
	}
	tokens := make([]string, len(r.Tokens))
	for i, t := range r.Tokens {
		tokens[i] = strings.Clone(t)
	}
	return Record{
		Tokens: tokens,
		Fields: recipe.Fields{
			Title:        strings.Clone(r.Title),
			ImageName:    strings.Clone(r.ImageName),
			Instructions: strings.Clone(r.Instructions),
			Ingredients:  strings.Clone(r.Ingredients),
			SourceIndex:  sourceIndex,
		},
	}
}
