// Package corpus loads the recipe dataset snapshot the engine searches over.
package corpus

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/flavorsearch/internal/domain"
	"github.com/kailas-cloud/flavorsearch/internal/domain/recipe"
)

// Dataset column names, as written by the offline cleaning step.
const (
	ColTitle        = "Title"
	ColInstructions = "Instructions"
	ColImageName    = "Image_Name"
	ColIngredients  = "Cleaned_Ingredients"
	ColTokens       = "combined_cleaned"
	ColIndex        = "index"
)

// RequiredColumns must be present in every snapshot.
var RequiredColumns = []string{ColTitle, ColInstructions, ColImageName, ColTokens}

// Format names a dataset snapshot encoding.
type Format string

// Supported snapshot formats.
const (
	FormatAuto    Format = "auto"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a format name. The empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatCSV, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("unknown dataset format %q", s)
	}
}

// Record is one dataset row before it is assigned a corpus id.
type Record struct {
	Tokens []string
	Fields recipe.Fields
}

// Store is the in-memory corpus. Documents are immutable and ordered by id,
// which equals the row position in the snapshot.
type Store struct {
	docs []recipe.Document
}

// FromRecords builds a Store, assigning ids by position.
func FromRecords(records []Record) *Store {
	docs := make([]recipe.Document, len(records))
	for i, r := range records {
		docs[i] = recipe.New(i, r.Tokens, r.Fields)
	}
	return &Store{docs: docs}
}

// Load reads a dataset snapshot. Failures are reported as domain.ErrDatasetLoad.
func Load(path string, format Format) (*Store, error) {
	if format == "" || format == FormatAuto {
		format = FormatCSV
		if strings.EqualFold(filepath.Ext(path), ".parquet") {
			format = FormatParquet
		}
	}

	var (
		records []Record
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSVFile(path)
	case FormatParquet:
		records, err = readParquetFile(path)
	default:
		err = fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return nil, domain.NewDatasetLoadError(path, err)
	}
	return FromRecords(records), nil
}

// All returns every document in id order. Callers must not modify the slice.
func (s *Store) All() []recipe.Document { return s.docs }

// Len returns the number of documents.
func (s *Store) Len() int { return len(s.docs) }

// Get returns the document with the given id.
func (s *Store) Get(id int) (recipe.Document, bool) {
	if id < 0 || id >= len(s.docs) {
		return recipe.Document{}, false
	}
	return s.docs[id], true
}

// parseTokens accepts the three shapes the tokens column shows up in:
// a Python list repr (['a', 'b']), a JSON array, or space separated words.
func parseTokens(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return strings.Fields(s)
	}

	inner := s[1 : len(s)-1]
	parts := strings.Split(inner, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
