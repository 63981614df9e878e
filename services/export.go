package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypePDF   = "application/pdf"
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	reportTitle = "HeavyDiag AI - Informe de Diagnóstico"
	sheetName   = "Diagnóstico"
)

// HeavyDiag palette
var (
	colorPrimary = "#F39C12" // Safety orange
	colorDark    = "#2D3436"
	colorDanger  = "#D63031"
	colorLight   = "#FDF2E9"
)

// ExportService renders diagnosis reports as downloadable files.
type ExportService struct {
	now func() time.Time
}

func NewExportService() *ExportService {
	return &ExportService{now: time.Now}
}

// ToExcel writes one row per report item, tagged with its section.
func (s *ExportService) ToExcel(report *DiagnosisReport) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", fmt.Errorf("cannot rename sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{colorPrimary}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	labelStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorDark},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{colorDark}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: colorPrimary, Style: 2}},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	safetyStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: colorDanger},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{colorLight}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	f.MergeCell(sheetName, "A1", "C1")
	f.SetCellValue(sheetName, "A1", reportTitle)
	f.SetCellStyle(sheetName, "A1", "C1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", "Fecha")
	f.SetCellValue(sheetName, "B2", s.now().Format("02/01/2006 15:04"))
	f.SetCellValue(sheetName, "A3", "Maquinaria")
	f.SetCellValue(sheetName, "B3", valueOr(report.Context, DefaultMachineryContext))
	f.SetCellValue(sheetName, "A4", "Pregunta")
	f.SetCellValue(sheetName, "B4", report.Question)
	f.SetCellStyle(sheetName, "A2", "A4", labelStyle)

	headers := []string{"Sección", "#", "Detalle"}
	for i, header := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%c6", 'A'+i), header)
	}
	f.SetCellStyle(sheetName, "A6", "C6", headerStyle)

	row := 7
	for _, section := range report.Sections() {
		for i, item := range section.Items {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), section.Title)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), i+1)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), item)
			f.SetCellStyle(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), wrapStyle)
			row++
		}
	}
	if report.Safety != "" {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), SectionSafety)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), report.Safety)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), safetyStyle)
		row++
	}
	if !report.Structured() {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Respuesta")
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), report.Raw)
		f.SetCellStyle(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), wrapStyle)
	}

	f.SetColWidth(sheetName, "A", "A", 26)
	f.SetColWidth(sheetName, "B", "B", 6)
	f.SetColWidth(sheetName, "C", "C", 80)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("cannot create Excel: %w", err)
	}
	return buf.Bytes(), s.filename("xlsx"), nil
}

// ToPDF renders the report on A4 pages with the core Helvetica font.
func (s *ExportService) ToPDF(report *DiagnosisReport) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 covers Spanish accents
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(243, 156, 18)
	pdf.Rect(0, 0, 210, 32, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(15, 9)
	pdf.CellFormat(0, 8, tr(reportTitle), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(15)
	pdf.CellFormat(0, 6, tr("Fecha: "+s.now().Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")

	pdf.SetY(40)
	pdf.SetTextColor(45, 52, 54)
	s.pdfField(pdf, tr, "Maquinaria", valueOr(report.Context, DefaultMachineryContext))
	s.pdfField(pdf, tr, "Pregunta", report.Question)
	pdf.Ln(4)

	if !report.Structured() {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(report.Raw), "", "L", false)
	}

	for _, section := range report.Sections() {
		if len(section.Items) == 0 {
			continue
		}
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetFillColor(253, 242, 233)
		pdf.CellFormat(0, 8, tr(section.Title), "", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for i, item := range section.Items {
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, item)), "", "L", false)
		}
		pdf.Ln(3)
	}

	if report.Safety != "" {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(214, 48, 49)
		pdf.CellFormat(0, 8, tr(SectionSafety), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(report.Safety), "1", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("cannot create PDF: %w", err)
	}
	return buf.Bytes(), s.filename("pdf"), nil
}

func (s *ExportService) pdfField(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 6, tr(label+":"), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(value), "", "L", false)
}

func (s *ExportService) filename(ext string) string {
	return fmt.Sprintf("diagnostico-%s.%s", s.now().Format("20060102-150405"), ext)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
