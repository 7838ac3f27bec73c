// Package export renders catalogue data as spreadsheets for the back office.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/tealeg/xlsx"
)

// ContentTypeXLSX is the media type of the files written here.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductSheet is the name of the sheet holding the catalogue.
const ProductSheet = "Products"

// ProductHeaders are the column titles of the product export, in order.
var ProductHeaders = []string{
	"ID", "Name", "Category", "Price", "OriginalPrice", "Discount",
	"Stock", "InStock", "Tags", "Featured", "New", "Trending",
	"TopRated", "FlashDeal", "CreatedAt", "UpdatedAt",
}

const timestampLayout = "2006-01-02 15:04:05"

// WriteProducts writes one header row and one row per product to w as xlsx.
func WriteProducts(w io.Writer, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(ProductSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range ProductHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()

		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Category)
		row.AddCell().SetFloat(p.Price.InexactFloat64())
		if p.OriginalPrice != nil {
			row.AddCell().SetFloat(p.OriginalPrice.InexactFloat64())
		} else {
			row.AddCell().SetString("")
		}
		if p.DiscountPercentage != nil {
			row.AddCell().SetInt(*p.DiscountPercentage)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetString(yesNo(p.InStock))
		row.AddCell().SetString(strings.Join(p.Tags, ","))
		row.AddCell().SetString(yesNo(p.Featured))
		row.AddCell().SetString(yesNo(p.IsNew))
		row.AddCell().SetString(yesNo(p.Trending))
		row.AddCell().SetString(yesNo(p.TopRated))
		row.AddCell().SetString(yesNo(p.FlashDeal))
		row.AddCell().SetString(formatTime(p.CreatedAt))
		row.AddCell().SetString(formatTime(p.UpdatedAt))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
