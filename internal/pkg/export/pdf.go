package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/mertcakir/coursereg/internal/app/models"
)

const (
	pdfRowHeight  = 7.0
	pdfPageBreakY = 190.0
)

type pdfColumn struct {
	title string
	width float64
}

var pdfColumns = []pdfColumn{
	{"ID", 12},
	{"Name", 55},
	{"Email", 70},
	{"Phone", 32},
	{"Age", 12},
	{"Courses", 70},
	{"Registered", 28},
}

// StudentsPDF writes all given students as a landscape A4 PDF report.
func StudentsPDF(w io.Writer, students []models.Student) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Registered Students", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Registered Students")
	pdf.Ln(12)

	writeHeaderRow(pdf)

	pdf.SetFont("Arial", "", 9)
	for i := range students {
		if pdf.GetY() > pdfPageBreakY {
			pdf.AddPage()
			writeHeaderRow(pdf)
			pdf.SetFont("Arial", "", 9)
		}
		writeStudentRow(pdf, &students[i])
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

func writeHeaderRow(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfRowHeight, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func writeStudentRow(pdf *gofpdf.Fpdf, s *models.Student) {
	age := ""
	if s.Age != nil {
		age = strconv.Itoa(*s.Age)
	}
	cells := []string{
		strconv.FormatInt(s.ID, 10),
		truncate(s.FullName(), 32),
		truncate(s.Email, 42),
		s.Phone,
		age,
		truncate(strings.Join(s.Courses, ", "), 42),
		s.CreatedAt.Format("2006-01-02"),
	}
	for i, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfRowHeight, cells[i], "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

// truncate shortens a string to max runes, appending an ellipsis marker.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
