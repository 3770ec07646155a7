package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	expenseuc "expense-approval/internal/usecase/expense"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export streams the caller's visible expenses as csv (default) or xlsx.
func (h *ExpenseHandler) Export(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	in, err := listInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return badRequest(c, "format must be csv or xlsx")
	}

	rows, err := h.expenses.Export(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}

	var (
		body []byte
		mime string
	)
	switch format {
	case "xlsx":
		body, err = renderXLSX(rows)
		mime = mimeXLSX
	default:
		body, err = renderCSV(rows)
		mime = "text/csv"
	}
	if err != nil {
		return err
	}
	name := fmt.Sprintf("expenses-%d.%s", time.Now().UTC().Unix(), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+name)
	return c.Blob(http.StatusOK, mime, body)
}

func exportRecord(r expenseuc.ExportRow) []string {
	reviewedAt := "-"
	if r.ReviewedAt != nil {
		reviewedAt = r.ReviewedAt.UTC().Format(time.DateOnly)
	}
	return []string{
		r.Date, r.Employee, r.Email, r.Category, r.Description,
		r.Amount.StringFixed(2), r.Currency, r.Status,
		orDash(r.ReviewedBy), reviewedAt, orDash(r.RejectionReason),
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderCSV(rows []expenseuc.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(expenseuc.ExportColumns); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(exportRecord(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderXLSX(rows []expenseuc.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Expenses"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &expenseuc.ExportColumns); err != nil {
		return nil, err
	}
	for i, r := range rows {
		rec := exportRecord(r)
		cells := make([]interface{}, len(rec))
		for j, v := range rec {
			cells[j] = v
		}
		// amounts stay numeric so the sheet can sum them
		cells[5] = r.Amount.InexactFloat64()
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
