package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbacctl/rbacctl/internal/record"
)

// ColumnSpec describes one exported column. The cell is Formatter(record)
// when set, otherwise the first present value among Keys.
type ColumnSpec struct {
	Header    string
	Keys      []string
	Formatter func(record.Record) string
}

// Column builds a spec reading a field table.
func Column(header string, f record.Field) ColumnSpec {
	return ColumnSpec{Header: header, Keys: f.Keys}
}

// Table is the flat projection of a collection.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Project maps every record of collection to one row, in input order.
func Project(collection []record.Record, specs []ColumnSpec) Table {
	t := Table{
		Headers: make([]string, len(specs)),
		Rows:    make([][]string, 0, len(collection)),
	}
	for i, s := range specs {
		t.Headers[i] = s.Header
	}
	for _, r := range collection {
		row := make([]string, len(specs))
		for i, s := range specs {
			if s.Formatter != nil {
				row[i] = s.Formatter(r)
				continue
			}
			row[i] = record.String(r, s.Keys, "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

func Formats() []string {
	return []string{string(CSV), string(XLSX), string(PDF)}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "xlsx", "excel", "xls":
		return XLSX, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("invalid export format %q, must be one of %v", s, Formats())
	}
}

// FormatFromPath infers the export format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer export format from %q", path)
	}
	return ParseFormat(ext)
}

// Write serializes t to w in the requested format.
func Write(w io.Writer, format Format, t Table) error {
	switch format {
	case CSV:
		return WriteCSV(w, t)
	case XLSX:
		return WriteXLSX(w, t)
	case PDF:
		return WritePDF(w, t)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile creates path and writes t into it. The format is inferred from
// the extension when format is empty.
func WriteFile(path string, format Format, t Table) error {
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return err
		}
		format = f
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, format, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// DefaultFileName builds "<name>-<stamp>.<format>".
func DefaultFileName(name, stamp string, format Format) string {
	return fmt.Sprintf("%s-%s.%s", name, stamp, format)
}
