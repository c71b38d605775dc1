// Package export renders the admin order list as a spreadsheet.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"saniteetti/internal/model"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	OrdersSheet = "Orders"
	ItemsSheet  = "Items"
)

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var orderHeader = []interface{}{
	"Order", "Status", "Language", "Created", "Shipped",
	"Company", "Contact", "Email", "Phone", "Address", "Zip", "City",
	"Billing company", "Billing address", "Notes",
	"Subtotal", "Shipping", "Total",
}

var itemHeader = []interface{}{"Order", "Product ID", "Name", "Quantity", "Unit price", "Price unit", "Line total"}

// OrdersXLSX writes orders to a workbook with one sheet for orders and one for
// their item lines, in the given order.
func OrdersXLSX(orders []model.Order, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return nil, fmt.Errorf("failed to name orders sheet: %w", err)
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return nil, fmt.Errorf("failed to create items sheet: %w", err)
	}

	if err := writeRow(f, OrdersSheet, 1, orderHeader); err != nil {
		return nil, err
	}
	if err := writeRow(f, ItemsSheet, 1, itemHeader); err != nil {
		return nil, err
	}

	itemRow := 2
	for i, o := range orders {
		shipped := ""
		if o.ShippedAt != nil {
			shipped = o.ShippedAt.In(loc).Format("2006-01-02 15:04")
		}
		c := o.Customer
		row := []interface{}{
			o.ID, string(o.Status), o.Lang, o.CreatedAt.In(loc).Format("2006-01-02 15:04"), shipped,
			c.Company, c.Contact, c.Email, c.Phone, c.Address, c.Zip, c.City,
			c.BillingCompany, c.BillingAddress, c.Notes,
			o.Subtotal, o.Shipping, o.Total,
		}
		if err := writeRow(f, OrdersSheet, i+2, row); err != nil {
			return nil, err
		}

		for _, item := range o.Items {
			line := []interface{}{
				o.ID, item.ProductID, item.Name, item.Quantity, item.UnitPrice, item.PriceUnit,
				float64(item.Quantity) * item.UnitPrice,
			}
			if err := writeRow(f, ItemsSheet, itemRow, line); err != nil {
				return nil, err
			}
			itemRow++
		}
	}

	if err := styleHeaders(f); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the download name for an export taken at t.
func Filename(t time.Time) string {
	return "orders-" + t.Format("20060102-1504") + ".xlsx"
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", strings.ToLower(sheet), row, err)
	}
	return nil
}

func styleHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F5F9FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for sheet, width := range map[string]int{OrdersSheet: len(orderHeader), ItemsSheet: len(itemHeader)} {
		last, err := excelize.CoordinatesToCellName(width, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("failed to style %s header: %w", strings.ToLower(sheet), err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("failed to freeze %s header: %w", strings.ToLower(sheet), err)
		}
	}
	return nil
}
