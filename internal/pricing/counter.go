package pricing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// Format is the document family the counter dispatches on.
type Format string

const (
	FormatText        Format = "text"
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
)

// fallbackBytesPerUnit is the size-based estimate used when a document cannot be parsed.
const fallbackBytesPerUnit = 100

var errNotText = errors.New("document is not valid UTF-8 text")

var extensionFormats = map[string]Format{
	".txt":  FormatText,
	".text": FormatText,
	".md":   FormatText,
	".csv":  FormatCSV,
	".xlsx": FormatSpreadsheet,
	".xlsm": FormatSpreadsheet,
	".xltx": FormatSpreadsheet,
	".xltm": FormatSpreadsheet,
}

// SupportedExtensions lists the upload extensions the counter understands.
func SupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".csv", ".xlsx", ".xlsm", ".xltx", ".xltm"}
}

// IsSupportedFile reports whether a file name has an accepted extension.
func IsSupportedFile(name string) bool {
	_, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]
	return ok
}

// DetectFormat resolves a MIME type, bare extension or file name to a Format.
// When the hint is empty or unknown the content is sniffed.
func DetectFormat(document []byte, mimeOrExtension string) Format {
	hint := strings.ToLower(strings.TrimSpace(mimeOrExtension))
	if hint != "" {
		if strings.Contains(hint, "/") {
			if mt := mimetype.Lookup(strings.SplitN(hint, ";", 2)[0]); mt != nil {
				if f, ok := extensionFormats[mt.Extension()]; ok {
					return f
				}
			}
		} else {
			ext := hint
			if !strings.HasPrefix(ext, ".") || strings.Count(ext, ".") > 1 {
				ext = filepath.Ext(hint)
				if ext == "" {
					ext = "." + hint
				}
			}
			if f, ok := extensionFormats[ext]; ok {
				return f
			}
		}
	}
	if f, ok := extensionFormats[mimetype.Detect(document).Extension()]; ok {
		return f
	}
	return FormatText
}

// CountUnits returns the billable word count of a document. It never fails:
// when the document cannot be parsed as its format the count is estimated as
// ceil(size/100).
func CountUnits(document []byte, mimeOrExtension string) int64 {
	n, err := countFormat(document, DetectFormat(document, mimeOrExtension))
	if err != nil {
		return EstimateUnits(len(document))
	}
	return n
}

// EstimateUnits is the size-based fallback estimate.
func EstimateUnits(size int) int64 {
	if size <= 0 {
		return 0
	}
	return int64((size + fallbackBytesPerUnit - 1) / fallbackBytesPerUnit)
}

func countFormat(document []byte, format Format) (int64, error) {
	switch format {
	case FormatSpreadsheet:
		return countSpreadsheet(document)
	case FormatCSV:
		return countCSV(document)
	default:
		return countText(document)
	}
}

// CountTokens counts whitespace-separated tokens.
func CountTokens(s string) int64 {
	return int64(len(strings.Fields(s)))
}

func countText(document []byte) (int64, error) {
	if !utf8.Valid(document) {
		return 0, errNotText
	}
	return CountTokens(string(document)), nil
}

func countCSV(document []byte) (int64, error) {
	if !utf8.Valid(document) {
		return 0, errNotText
	}
	r := csv.NewReader(bytes.NewReader(document))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var total int64
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		for _, field := range record {
			total += CountTokens(field)
		}
	}
	return total, nil
}

func countSpreadsheet(document []byte) (int64, error) {
	f, err := excelize.OpenReader(bytes.NewReader(document))
	if err != nil {
		return 0, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	var total int64
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return 0, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for r, row := range rows {
			for c, value := range row {
				if strings.TrimSpace(value) == "" {
					continue
				}
				text, err := isTextCell(f, sheet, c+1, r+1)
				if err != nil {
					return 0, err
				}
				if text {
					total += CountTokens(value)
				}
			}
		}
	}
	return total, nil
}

// isTextCell reports whether a cell stores a string; numbers, booleans and
// dates are not billable.
func isTextCell(f *excelize.File, sheet string, col, row int) (bool, error) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return false, fmt.Errorf("cell type %s!%s: %w", sheet, axis, err)
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return true, nil
	}
	return false, nil
}
