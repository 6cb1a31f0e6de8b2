package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"baliance.com/gooxml/document"
	"github.com/jung-kurt/gofpdf"
)

const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// ErrUnsupportedFormat is returned for any format value other than pdf or
// docx. This is the sole validation point for the format field.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Render converts plain text into a downloadable document.
func Render(text, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return renderPDF(text)
	case FormatDOCX:
		return renderDOCX(text)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func renderPDF(text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			pdf.Ln(5)
			continue
		}
		pdf.MultiCell(0, 5, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderDOCX(text string) ([]byte, error) {
	doc := document.New()

	for _, line := range strings.Split(text, "\n") {
		para := doc.AddParagraph()
		run := para.AddRun()
		run.AddText(line)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to render docx: %w", err)
	}
	return buf.Bytes(), nil
}
