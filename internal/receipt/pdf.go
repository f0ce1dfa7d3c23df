package receipt

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth  = 80.0
	margin     = 5.0
	lineHeight = 4.0
	minHeight  = 120.0
)

// WritePDF writes doc as a narrow thermal-style receipt.
func WritePDF(w io.Writer, doc Document) error {
	height := float64(len(doc.Lines))*(lineHeight+1) + 2*margin
	if height < minHeight {
		height = minHeight
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	content := pageWidth - 2*margin
	for _, line := range doc.Lines {
		switch line.Kind {
		case LineTitle:
			pdf.SetFont("Courier", "B", 12)
			pdf.CellFormat(content, lineHeight+2, tr(line.Left), "", 1, "C", false, 0, "")
		case LineCentered:
			pdf.SetFont("Courier", "", 8)
			pdf.CellFormat(content, lineHeight, tr(line.Left), "", 1, "C", false, 0, "")
		case LineFooter:
			pdf.SetFont("Courier", "", 7)
			pdf.CellFormat(content, lineHeight, tr(line.Left), "", 1, "C", false, 0, "")
		case LineRule:
			y := pdf.GetY() + lineHeight/2
			pdf.Line(margin, y, pageWidth-margin, y)
			pdf.Ln(lineHeight)
		case LineItemHeader, LineItem:
			style := ""
			if line.Kind == LineItemHeader {
				style = "B"
			}
			pdf.SetFont("Courier", style, 7)
			pdf.CellFormat(content-26, lineHeight, tr(line.Left), "", 0, "L", false, 0, "")
			pdf.CellFormat(8, lineHeight, tr(line.Middle), "", 0, "R", false, 0, "")
			pdf.CellFormat(18, lineHeight, tr(line.Right), "", 1, "R", false, 0, "")
		case LineItemDetail:
			pdf.SetFont("Courier", "", 6)
			pdf.CellFormat(content, lineHeight, tr("  "+line.Left), "", 1, "L", false, 0, "")
		case LineNote:
			pdf.SetFont("Courier", "", 7)
			pdf.MultiCell(content, lineHeight, tr(line.Left), "", "L", false)
		case LineGrandTotal:
			pdf.SetFont("Courier", "B", 10)
			pdf.CellFormat(content/2, lineHeight+2, tr(line.Left), "", 0, "L", false, 0, "")
			pdf.CellFormat(content/2, lineHeight+2, tr(line.Right), "", 1, "R", false, 0, "")
		default:
			pdf.SetFont("Courier", "", 8)
			pdf.CellFormat(content/2, lineHeight, tr(line.Left), "", 0, "L", false, 0, "")
			pdf.CellFormat(content/2, lineHeight, tr(line.Right), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
