package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"baluarte/apperr"
	"baluarte/models"
	"baluarte/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	exportCSV  = "csv"
	exportXLSX = "xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler ledger downloads
type ExportHandler struct{}

// NewExportHandler creates the export handler
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

var exportHeaders = []string{"ID", "Fecha", "Tipo", "Categoría", "Descripción", "Monto"}

func exportBalance(list []models.Transaction) service.Balance {
	totals := make([]service.TypeTotal, 0, len(list))
	for _, t := range list {
		totals = append(totals, service.TypeTotal{Type: t.Type, Total: t.Amount})
	}
	return service.BuildBalance(totals)
}

// writeCSV renders the ledger with a UTF-8 BOM so spreadsheets detect the encoding
func writeCSV(list []models.Transaction) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeaders); err != nil {
		return nil, err
	}

	for _, t := range list {
		row := []string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Date.Format("2006-01-02 15:04:05"),
			t.Type,
			t.CategoryName(),
			t.Description,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildWorkbook renders the ledger plus a totals block into an XLSX workbook
func buildWorkbook(list []models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Transacciones"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0F766E"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{Border: border})
	moneyFormat := "#,##0.00"
	moneyStyle, _ := f.NewStyle(&excelize.Style{Border: border, CustomNumFmt: &moneyFormat})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border:       border,
		CustomNumFmt: &moneyFormat,
	})

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 20)
	f.SetColWidth(sheetName, "E", "E", 40)
	f.SetColWidth(sheetName, "F", "F", 15)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, t := range list {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), t.Date.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), t.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), t.CategoryName())
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), t.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), t.Amount)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), dataStyle)
		f.SetCellStyle(sheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), moneyStyle)
	}

	balance := exportBalance(list)
	summary := []struct {
		label string
		value float64
	}{
		{"Total ingresos", balance.TotalIngresos},
		{"Total egresos", balance.TotalEgresos},
		{"Balance", balance.CurrentBalance},
	}
	first := len(list) + 3
	for i, s := range summary {
		row := first + i
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), s.label)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), s.value)
		f.SetCellStyle(sheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row), summaryStyle)
	}

	return f, nil
}

func exportFilename(f TransactionFilter, ext string) string {
	from := "inicio"
	if f.Start != nil {
		from = f.Start.Format("2006-01-02")
	}
	to := time.Now().Format("2006-01-02")
	if f.End != nil {
		to = f.End.Add(-time.Second).Format("2006-01-02")
	}
	return fmt.Sprintf("transacciones_%s_%s.%s", from, to, ext)
}

// Export downloads the ledger as CSV (every plan) or XLSX (PRO)
// @Summary Exportar transacciones
// @Description CSV para todos los planes, XLSX solo con reportes avanzados (PRO)
// @Tags Transacciones
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv (por defecto) o xlsx"
// @Param start query string false "Desde (YYYY-MM-DD)"
// @Param end query string false "Hasta inclusive (YYYY-MM-DD)"
// @Success 200 {file} file "Archivo"
// @Failure 400 {object} Response "Formato inválido"
// @Failure 403 {object} Response "Requiere Plan PRO"
// @Router /api/transactions/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		Fail(c, err)
		return
	}

	format := c.DefaultQuery("format", exportCSV)
	if format != exportCSV && format != exportXLSX {
		Fail(c, apperr.Validation("Formato de exportación inválido, usá csv o xlsx."))
		return
	}
	if format == exportXLSX && !service.FeaturesFor(user.Role).AdvancedReports {
		Fail(c, apperr.Forbidden("La exportación a Excel requiere el Plan PRO."))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}

	list, err := listTransactions(user.ID, filter)
	if err != nil {
		Fail(c, apperr.Internal("error al listar transacciones", err))
		return
	}

	filename := exportFilename(filter, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if format == exportCSV {
		data, err := writeCSV(list)
		if err != nil {
			Fail(c, apperr.Internal("error al generar el CSV", err))
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		return
	}

	f, err := buildWorkbook(list)
	if err != nil {
		Fail(c, apperr.Internal("error al generar el Excel", err))
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		Fail(c, apperr.Internal("error al generar el Excel", err))
		return
	}
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
