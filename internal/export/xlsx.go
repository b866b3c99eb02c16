// Package export writes the catalog to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/comparely/catalog-service/internal/types"
	"github.com/xuri/excelize/v2"
)

const (
	CategoriesSheet = "Categories"
	ProductsSheet   = "Products"
)

var (
	categoryHeader = []any{"id", "path", "url", "name", "products", "wasUpdated", "lastUpdate"}
	productHeader  = []any{
		"category_id", "category_path", "id", "url", "name", "brand", "asin",
		"current_price", "previous_price", "available", "average_customer_review",
		"count_customer_reviews", "isDisplayed", "wasUpdated", "lastUpdate",
	}
)

// Summary counts the rows written by WriteWorkbook.
type Summary struct {
	Categories int
	Products   int
}

// WriteWorkbook writes one sheet of categories and one of their products.
func WriteWorkbook(w io.Writer, docs []*types.Category) (Summary, error) {
	f := excelize.NewFile()
	defer f.Close()

	var summary Summary
	if err := f.SetSheetName("Sheet1", CategoriesSheet); err != nil {
		return summary, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(ProductsSheet); err != nil {
		return summary, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := setRow(f, CategoriesSheet, 1, categoryHeader); err != nil {
		return summary, err
	}
	if err := setRow(f, ProductsSheet, 1, productHeader); err != nil {
		return summary, err
	}

	productRow := 2
	for i, doc := range docs {
		row := []any{
			string(doc.ID), str(doc.Path), str(doc.URL), str(doc.Name),
			len(doc.Products), boolean(doc.WasUpdated), timestamp(doc.LastUpdate),
		}
		if err := setRow(f, CategoriesSheet, i+2, row); err != nil {
			return summary, err
		}
		summary.Categories++

		for _, p := range doc.Products {
			row := []any{
				string(doc.ID), str(doc.Path), string(p.ID), str(p.URL),
				text(p.Name), text(p.Brand), text(p.ASIN),
				text(p.CurrentPrice), text(p.PreviousPrice), text(p.Available),
				text(p.AverageCustomerReview), text(p.CountCustomerReviews),
				boolean(p.IsDisplayed), boolean(p.WasUpdated), timestamp(p.LastUpdate),
			}
			if err := setRow(f, ProductsSheet, productRow, row); err != nil {
				return summary, err
			}
			productRow++
			summary.Products++
		}
	}

	if err := f.SetPanes(ProductsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return summary, fmt.Errorf("failed to freeze header: %w", err)
	}
	if err := f.Write(w); err != nil {
		return summary, fmt.Errorf("failed to write workbook: %w", err)
	}
	return summary, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func text(t *types.Text) string {
	if t == nil {
		return ""
	}
	return string(*t)
}

func boolean(b *bool) string {
	if b == nil {
		return ""
	}
	return fmt.Sprint(*b)
}

func timestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
