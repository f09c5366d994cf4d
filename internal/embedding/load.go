package embedding

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/flavorsearch/internal/domain"
)

// Format names an embedding artifact encoding.
type Format string

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = "auto"
	// FormatText is word2vec/GloVe text: one "token v1 v2 ..." line per token,
	// with an optional leading "count dim" header line.
	FormatText Format = "text"
	// FormatBinary is the word2vec C binary layout (save_word2vec_format binary=True).
	FormatBinary Format = "binary"
	// FormatMsgpack is the compact snapshot written by WriteSnapshot.
	FormatMsgpack Format = "msgpack"
)

// maxLineBytes bounds a single text line (300 dims of ~12 chars each fit comfortably).
const maxLineBytes = 4 << 20

// MaxDimensions bounds the vector length accepted from an artifact header.
const MaxDimensions = 1 << 16

// ParseFormat validates a format name. The empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText, FormatBinary, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unknown embedding format %q", s)
	}
}

// DetectFormat maps a file extension to a format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return FormatBinary
	case ".msgpack", ".mpk":
		return FormatMsgpack
	default:
		return FormatText
	}
}

// Load reads an embedding artifact from path. Every failure, including an
// empty vocabulary, is reported as a domain.ErrModelLoad.
func Load(path string, format Format) (*Table, error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, domain.NewModelLoadError(path, err)
	}
	defer f.Close()

	t, err := Read(bufio.NewReaderSize(f, 1<<20), format)
	if err != nil {
		return nil, domain.NewModelLoadError(path, err)
	}
	return t, nil
}

// Read decodes an embedding artifact from r.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatText:
		return readText(r)
	case FormatBinary:
		return readBinary(r)
	case FormatMsgpack:
		return ReadSnapshot(r)
	default:
		return nil, fmt.Errorf("unsupported embedding format %q", format)
	}
}

func readText(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var b *builder
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		if b == nil && lineNo == 1 && len(fields) == 2 {
			if count, dim, ok := parseHeader(fields); ok {
				if err := checkHeader(count, dim); err != nil {
					return nil, err
				}
				b = newBuilder(dim, count)
				continue
			}
		}
		if b == nil {
			b = newBuilder(len(fields)-1, 0)
		}

		vec := make([]float32, len(fields)-1)
		for i, s := range fields[1:] {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse component %d: %w", lineNo, i, err)
			}
			vec[i] = float32(v)
		}
		if err := b.add(fields[0], vec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read text embeddings: %w", err)
	}
	if b == nil {
		return nil, ErrEmptyVocabulary
	}
	return b.build()
}

func parseHeader(fields []string) (count, dim int, ok bool) {
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false
	}
	dim, err = strconv.Atoi(fields[1])
	if err != nil || dim <= 0 || count < 0 {
		return 0, 0, false
	}
	return count, dim, true
}

// checkHeader rejects header sizes no real table can have.
func checkHeader(count, dim int) error {
	if dim > MaxDimensions {
		return fmt.Errorf("header dimension %d exceeds %d", dim, MaxDimensions)
	}
	if count > math.MaxInt/dim {
		return fmt.Errorf("header size %d x %d overflows", count, dim)
	}
	return nil
}

func readBinary(r io.Reader) (*Table, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read binary header: %w", err)
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("malformed binary header %q", strings.TrimSpace(header))
	}
	count, dim, ok := parseHeader(fields)
	if !ok {
		return nil, fmt.Errorf("malformed binary header %q", strings.TrimSpace(header))
	}
	if err := checkHeader(count, dim); err != nil {
		return nil, err
	}

	b := newBuilder(dim, count)
	for i := 0; i < count; i++ {
		token, err := readBinaryToken(br)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		vec := make([]float32, dim)
		if err := binary.Read(br, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("token %d (%q): read vector: %w", i, token, err)
		}
		if err := b.add(token, vec); err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
	}
	return b.build()
}

// readBinaryToken reads bytes up to the separating space, skipping the
// newline some writers emit after each vector.
func readBinaryToken(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		if c == ' ' {
			break
		}
		if c == '\n' && sb.Len() == 0 {
			continue
		}
		sb.WriteByte(c)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty token")
	}
	return sb.String(), nil
}
