package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// BuildTextPDF lays out a rendered text report, one PDF line per text line,
// in a monospaced font so column alignment survives.
func BuildTextPDF(title, text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Courier", "", 9)
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 4, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("BuildTextPDF: %w", err)
	}
	return buf.Bytes(), nil
}
