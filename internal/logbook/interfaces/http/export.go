package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	logbook "aura-panel/internal/logbook/domain"
)

const (
	defaultExportLimit = 1000
	maxExportLimit     = 5000
)

var exportHeader = []string{"id", "timestamp", "level", "source", "category", "message"}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r.URL.Query().Get("limit"), defaultExportLimit, maxExportLimit)
	records, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		http.Error(w, "log query failed", http.StatusInternalServerError)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "csv":
		writeCSV(w, records)
	case "xlsx":
		writeXLSX(w, records)
	default:
		http.Error(w, "format must be csv or xlsx", http.StatusBadRequest)
	}
}

func writeCSV(w http.ResponseWriter, records []logbook.Record) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="logs.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write(exportHeader)
	for _, record := range records {
		_ = writer.Write([]string{
			strconv.FormatInt(record.ID, 10),
			record.CreatedAt.UTC().Format(time.RFC3339),
			record.Level,
			record.Source,
			record.Category,
			record.Message,
		})
	}
	writer.Flush()
}

func writeXLSX(w http.ResponseWriter, records []logbook.Record) {
	f := excelize.NewFile()
	sheet := "logs"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, name)
	}
	for i, record := range records {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), record.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), record.CreatedAt.UTC().Format(time.RFC3339))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), record.Level)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), record.Source)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), record.Category)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), record.Message)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="logs.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}
