// Package loader turns raw uploaded bytes into a columnar table. Dispatch
// is by file extension: spreadsheets get a single structured parse, while
// delimited text walks an ordered list of candidate encodings and accepts
// the first that decodes cleanly. Files above a size threshold take a
// partition-parallel parse path that degrades to the single-pass path on
// any failure.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/tabulon-ai/tabulon-engine/pkg/apperrors"
	"github.com/tabulon-ai/tabulon-engine/pkg/config"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
)

// Loader reads raw file bytes into a ColumnarTable. It has no side effects
// beyond reading its input.
type Loader struct {
	cfg     config.LoaderConfig
	workers int
	logger  *zap.Logger
}

// New creates a Loader. workers bounds the partition-parallel parse path.
func New(cfg config.LoaderConfig, workers int, logger *zap.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{
		cfg:     cfg,
		workers: workers,
		logger:  logger.Named("loader"),
	}
}

// Load parses data according to the filename's extension and returns a raw
// string-typed table. All failures come back as *apperrors.LoadError.
func (l *Loader) Load(ctx context.Context, data []byte, filename string) (*table.ColumnarTable, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		tbl *table.ColumnarTable
		err error
	)
	switch ext {
	case ".xlsx", ".xls":
		tbl, err = l.loadSpreadsheet(data)
	case ".csv", ".txt":
		tbl, err = l.loadDelimited(ctx, data, ',')
	case ".tsv":
		tbl, err = l.loadDelimited(ctx, data, '\t')
	default:
		err = fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &apperrors.LoadError{Filename: filename, Err: err}
	}

	l.logger.Info("Loaded file",
		zap.String("filename", filename),
		zap.Int("rows", tbl.RowCount()),
		zap.Int("columns", tbl.ColumnCount()))
	return tbl, nil
}

func (l *Loader) loadDelimited(ctx context.Context, data []byte, comma rune) (*table.ColumnarTable, error) {
	if int64(len(data)) > l.cfg.LargeFileThresholdBytes {
		tbl, err := l.loadPartitioned(ctx, data, comma)
		if err == nil {
			return tbl, nil
		}
		l.logger.Warn("Partitioned parse failed, degrading to single pass", zap.Error(err))
	}

	decoded := l.decode(data)
	records, err := parseCSV(decoded, comma)
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}
	return buildTable(records)
}

// decode walks the configured candidate encodings and returns the first
// clean decoding. When every candidate fails, UTF-8 with invalid sequences
// replaced is used rather than aborting.
func (l *Loader) decode(data []byte) string {
	for _, name := range l.cfg.Encodings {
		if text, ok := tryDecode(data, name); ok {
			return text
		}
	}
	l.logger.Warn("All candidate encodings failed, decoding UTF-8 lossily")
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

func tryDecode(data []byte, name string) (string, bool) {
	var dec *encoding.Decoder
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		dec = charmap.ISO8859_1.NewDecoder()
	case "windows-1252", "cp1252":
		dec = charmap.Windows1252.NewDecoder()
	case "utf-16", "utf-16le":
		dec = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case "utf-16be":
		dec = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	default:
		return "", false
	}

	out, err := dec.Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func parseCSV(text string, comma rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1 // ragged rows handled in buildTable
	r.LazyQuotes = true
	return r.ReadAll()
}

func (l *Loader) loadSpreadsheet(data []byte) (*table.ColumnarTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return buildTable(rows)
}

// buildTable converts row-major records to a columnar table. The first
// record is the header; empty headers get positional names and duplicates
// are numbered. Short rows pad with nulls, long rows truncate. Empty cells
// are nulls.
func buildTable(records [][]string) (*table.ColumnarTable, error) {
	if len(records) == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	headers := uniqueHeaders(records[0])
	rows := records[1:]

	cols := make([]*table.Column, 0, len(headers))
	for j, name := range headers {
		values := make([]string, len(rows))
		nulls := make([]bool, len(rows))
		for i, row := range rows {
			if j >= len(row) || row[j] == "" {
				nulls[i] = true
				continue
			}
			values[i] = row[j]
		}
		col, err := table.NewStringColumn(name, values, nulls)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	return table.New(cols)
}

func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if seen[name] > 0 {
			base := name
			n := seen[base]
			for {
				name = fmt.Sprintf("%s_%d", base, n)
				if seen[name] == 0 {
					break
				}
				n++
			}
			seen[base] = n + 1
		}
		seen[name] = 1
		headers[i] = name
	}
	return headers
}
