package audit

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

const exportSheet = "Audit Log"

var exportHeaders = []string{"Timestamp", "User", "Category", "Action", "Details"}

// ExportXLSX renders log entries as a single-sheet workbook, one row per entry in the given order.
func ExportXLSX(firmName string, logs []models.AuditLog) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	f.SetCellValue(exportSheet, "A1", firmName+" - system audit log")
	f.SetCellStyle(exportSheet, "A1", "A1", titleStyle)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(exportSheet, cell, h)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, l := range logs {
		row := i + 4
		values := []any{
			l.Timestamp.UTC().Format(time.RFC3339),
			l.User,
			string(l.Category),
			l.Action,
			l.Details,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	f.SetColWidth(exportSheet, "A", "A", 24)
	f.SetColWidth(exportSheet, "B", "D", 18)
	f.SetColWidth(exportSheet, "E", "E", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
