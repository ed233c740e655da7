package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/modcatalog/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrEmpty is returned for a workbook with no data rows.
var ErrEmpty = errors.New("spreadsheet has no data rows")

type field int

const (
	fieldModel field = iota
	fieldBrand
	fieldPrice
	fieldDescription
	fieldImage
)

var headerSynonyms = map[string]field{
	"modelo":      fieldModel,
	"model":       fieldModel,
	"marca":       fieldBrand,
	"brand":       fieldBrand,
	"precio":      fieldPrice,
	"price":       fieldPrice,
	"descripción": fieldDescription,
	"descripcion": fieldDescription,
	"description": fieldDescription,
	"imagen":      fieldImage,
	"image":       fieldImage,
}

var (
	priceNoise   = regexp.MustCompile(`[^0-9.\-]`)
	leadingFloat = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// Row is one accepted data row. Number is the 1-based sheet row.
type Row struct {
	Number int
	Draft  models.Draft
}

// RowError is one rejected data row.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ImportResult holds the accepted rows and the rejected ones, in sheet order.
type ImportResult struct {
	Rows   []Row
	Errors []RowError
}

// Drafts returns the accepted drafts in sheet order.
func (r ImportResult) Drafts() []models.Draft {
	ds := make([]models.Draft, 0, len(r.Rows))
	for _, row := range r.Rows {
		ds = append(ds, row.Draft)
	}
	return ds
}

// Import parses the first sheet of the workbook read from r.
func Import(r io.Reader) (ImportResult, error) {
	var res ImportResult

	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return res, ErrEmpty
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return res, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return res, ErrEmpty
	}

	columns := mapHeader(rows[0])

	dataRows := 0
	for i, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		dataRows++
		number := i + 2

		cell := func(f field) string {
			idx, ok := columns[f]
			if !ok || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}

		d := models.Draft{
			Model:       cell(fieldModel),
			Brand:       cell(fieldBrand),
			Description: cell(fieldDescription),
			ImageData:   cell(fieldImage),
		}
		switch {
		case d.Model == "":
			res.Errors = append(res.Errors, RowError{Row: number, Reason: "missing model"})
			continue
		case d.Brand == "":
			res.Errors = append(res.Errors, RowError{Row: number, Reason: "missing brand"})
			continue
		}

		raw := cell(fieldPrice)
		if raw == "" {
			res.Errors = append(res.Errors, RowError{Row: number, Reason: "missing price"})
			continue
		}
		price, ok := ParsePrice(raw)
		if !ok {
			res.Errors = append(res.Errors, RowError{Row: number, Reason: fmt.Sprintf("invalid price %q", raw)})
			continue
		}
		d.Price = price

		res.Rows = append(res.Rows, Row{Number: number, Draft: d})
	}

	if dataRows == 0 {
		return res, ErrEmpty
	}
	return res, nil
}

// ParsePrice strips everything but digits, '.' and '-' and reads the leading
// number, so "$ 1,200.50" is 1200.5. Only positive prices are accepted.
func ParsePrice(s string) (float64, bool) {
	cleaned := priceNoise.ReplaceAllString(s, "")
	num := leadingFloat.FindString(cleaned)
	if num == "" {
		return 0, false
	}
	p, err := strconv.ParseFloat(num, 64)
	if err != nil || !(p > 0) {
		return 0, false
	}
	return p, true
}

// mapHeader maps each recognised field to its column index; the first
// matching column wins.
func mapHeader(header []string) map[field]int {
	columns := make(map[field]int)
	for i, h := range header {
		f, ok := headerSynonyms[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := columns[f]; !seen {
			columns[f] = i
		}
	}
	return columns
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
