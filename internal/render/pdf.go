package render

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/deepresearch-ai/deepresearch/internal/report"
)

// PDF renders the report to a PDF file. Layout is intentionally simple: a
// title block with the topic and generation date, the sections with sized
// headings, and a numbered sources page with clickable links.
func PDF(rep report.Report, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, rep.Topic, "", "C", false)
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Generated "+rep.GeneratedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("%d sources analyzed", len(rep.Bibliography)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, sec := range rep.Sections {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, sec.Heading, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		writeBody(pdf, sec.Body)
		pdf.Ln(4)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Sources", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, src := range rep.Bibliography {
		pdf.MultiCell(0, 5, fmt.Sprintf("%d. %s", i+1, src.Title), "", "L", false)
		pdf.SetTextColor(41, 128, 185)
		pdf.WriteLinkString(5, src.URL, src.URL)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(7)
	}

	return pdf.OutputFileAndClose(outPath)
}

// writeBody emits markdown-ish body text line by line, stripping inline
// emphasis markers and rendering sub-headings slightly larger.
func writeBody(pdf *gofpdf.Fpdf, body string) {
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			pdf.Ln(4)
			continue
		}
		if strings.HasPrefix(line, "#") {
			text := strings.TrimSpace(strings.TrimLeft(line, "#"))
			if text == "" {
				continue
			}
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			pdf.MultiCell(0, 5, "  • "+stripEmphasis(line[2:]), "", "L", false)
			continue
		}
		pdf.MultiCell(0, 5, stripEmphasis(line), "", "L", false)
	}
}

func stripEmphasis(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return s
}
