// Package parser turns raw file bytes into an ordered content tree.
// Each supported format has its own parser; all of them preserve source
// order and whatever style metadata the format exposes.
package parser

import (
	"fmt"
	"path"
	"strings"

	"github.com/viant/docanchor/document"
)

// Format identifies a supported source document format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// FormatUnsupportedError reports a file extension no parser handles.
// It is raised before any run state changes.
type FormatUnsupportedError struct {
	Ext string
}

func (e *FormatUnsupportedError) Error() string {
	return fmt.Sprintf("unsupported format: %q", e.Ext)
}

// ParseError reports a corrupt or unreadable source file.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser produces a content tree from raw file bytes.
type Parser interface {
	Parse(data []byte) (*document.Tree, error)
}

// Detect maps a file name's extension to a Format. Legacy and unknown
// extensions yield FormatUnsupportedError.
func Detect(name string) (Format, error) {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".docx":
		return FormatDOCX, nil
	case ".pdf":
		return FormatPDF, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", &FormatUnsupportedError{Ext: ext}
	}
}

// New returns the parser for the given format.
func New(format Format) (Parser, error) {
	switch format {
	case FormatDOCX:
		return &docxParser{}, nil
	case FormatPDF:
		return &pdfParser{}, nil
	case FormatXLSX:
		return &xlsxParser{}, nil
	case FormatXLS:
		return &xlsParser{}, nil
	default:
		return nil, &FormatUnsupportedError{Ext: string(format)}
	}
}

// Parse detects the format from name and parses data with the matching
// parser.
func Parse(name string, data []byte) (*document.Tree, error) {
	format, err := Detect(name)
	if err != nil {
		return nil, err
	}
	p, err := New(format)
	if err != nil {
		return nil, err
	}
	return p.Parse(data)
}
