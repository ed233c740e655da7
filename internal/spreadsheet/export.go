package spreadsheet

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	// SheetName is the name of the exported sheet.
	SheetName = "Price List"

	// OtherBrands groups modules without a brand.
	OtherBrands = "Others"

	priceFormat = "$ #,##0.00"
)

// FileName is the default export file name for the given day.
func FileName(t time.Time) string {
	return "Price_List_" + t.Format(time.DateOnly) + ".xlsx"
}

type exportStyles struct {
	title, header, model, price int
}

func newExportStyles(f *excelize.File) (exportStyles, error) {
	var (
		s   exportStyles
		err error
	)
	numFmt := priceFormat

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F46E5"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 12},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	}); err != nil {
		return s, err
	}
	if s.model, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left"},
	}); err != nil {
		return s, err
	}
	if s.price, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
		CustomNumFmt: &numFmt,
	}); err != nil {
		return s, err
	}
	return s, nil
}

// GroupByBrand splits modules by brand, keeping both the first-appearance
// order of brands and the order of modules within each brand.
func GroupByBrand(modules []models.Module) ([]string, map[string][]models.Module) {
	var order []string
	groups := make(map[string][]models.Module)
	for _, m := range modules {
		brand := strings.TrimSpace(m.Brand)
		if brand == "" {
			brand = OtherBrands
		}
		if _, ok := groups[brand]; !ok {
			order = append(order, brand)
		}
		groups[brand] = append(groups[brand], m)
	}
	return order, groups
}

// Export writes the price list workbook to w. Each brand gets a merged title
// row, a Model/Price header row, one row per module and a blank separator.
func Export(w io.Writer, modules []models.Module) error {
	if len(modules) == 0 {
		return ErrEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newExportStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	if err := f.SetColWidth(SheetName, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "B", 20); err != nil {
		return err
	}

	order, groups := GroupByBrand(modules)
	row := 1
	for _, brand := range order {
		if err := writeBrand(f, styles, &row, brand, groups[brand]); err != nil {
			return fmt.Errorf("write brand %q: %w", brand, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeBrand(f *excelize.File, st exportStyles, row *int, brand string, ms []models.Module) error {
	a := func(r int) string { return fmt.Sprintf("A%d", r) }
	b := func(r int) string { return fmt.Sprintf("B%d", r) }

	// Title
	if err := f.SetCellValue(SheetName, a(*row), strings.ToUpper(brand)); err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, a(*row), b(*row)); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, a(*row), b(*row), st.title); err != nil {
		return err
	}
	*row++

	// Header
	if err := f.SetSheetRow(SheetName, a(*row), &[]any{"Model", "Price"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, a(*row), b(*row), st.header); err != nil {
		return err
	}
	*row++

	for _, m := range ms {
		if err := f.SetSheetRow(SheetName, a(*row), &[]any{m.Model, m.Price}); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, a(*row), a(*row), st.model); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, b(*row), b(*row), st.price); err != nil {
			return err
		}
		*row++
	}

	// Separator
	*row++
	return nil
}
