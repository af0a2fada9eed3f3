package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/aat_analyzer_go/internal/analysis"
)

const (
	inchToMm              = 25.4
	pdfPageWidthPortrait  = 8.5 * inchToMm // Letter portrait
	pdfPageHeightPortrait = 11 * inchToMm
	pdfMargin             = 0.5 * inchToMm
	pdfContentWidth       = pdfPageWidthPortrait - (2 * pdfMargin)
)

// ReportSummary collects everything the PDF report renders for one data
// file.
type ReportSummary struct {
	SourceFile   string
	SamplingRate float64
	WindowSize   float64
	EndIndex     int
	InnerStats   *analysis.StatisticsResult
	DragStats    *analysis.StatisticsResult
	GQualityRows []analysis.GQualityRow
}

// pdfStyler holds reusable styling and manual Y tracking for flowing
// content.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightPortrait - (2 * pdfMargin),
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
}

func (s *pdfStyler) applyStyle(name string) {
	if fn, ok := s.styles[name]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.pdf.AddPage()
		s.currentY = s.contentTopY
	}
}

func (s *pdfStyler) writeParagraph(text, styleName, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight * 2)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) writeTable(headers []string, widthsRel []float64, rows [][]string) {
	widths := make([]float64, len(widthsRel))
	for i, rel := range widthsRel {
		widths[i] = rel * pdfContentWidth
	}

	s.checkAddPage(s.lineHeight * float64(len(rows)+1))
	sY := s.currentY
	sX := pdfMargin
	s.applyStyle("tableHeader")
	for i, header := range headers {
		s.pdf.SetXY(sX, sY)
		s.pdf.CellFormat(widths[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
		sX += widths[i]
	}
	sY += s.lineHeight
	s.currentY = sY

	s.applyStyle("tableCell")
	for _, row := range rows {
		s.checkAddPage(s.lineHeight)
		sY = s.currentY
		sX = pdfMargin
		for i, cell := range row {
			s.pdf.SetXY(sX, sY)
			s.pdf.CellFormat(widths[i], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			sX += widths[i]
		}
		sY += s.lineHeight
		s.currentY = sY
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64, caption string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}
	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)
	s.pdf.Image(imageName, pdfMargin, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height
	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// BuildPDFReport creates the per-file analysis report: processing
// parameters, minimum-variance statistics for both sensors and the rendered
// plots.
func BuildPDFReport(filepath string, sum ReportSummary, plotImages map[string][]byte) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph("Microgravity Quality Report", "h1", "C")
	styler.addSpacer(3)
	styler.writeParagraph(fmt.Sprintf("Source file: %s", sum.SourceFile), "normal", "L")
	styler.writeParagraph(fmt.Sprintf("Sampling rate: %.0f Hz, window size: %.3f s", sum.SamplingRate, sum.WindowSize), "normal", "L")
	if sum.EndIndex >= 0 {
		styler.writeParagraph(fmt.Sprintf("Combined end index: %d", sum.EndIndex), "normal", "L")
	}
	styler.addSpacer(5)

	styler.writeParagraph("Minimum Standard Deviation Window", "h2", "L")
	statHeaders := []string{"Sensor", "Mean |Gravity Level| (G)", "Window Start (s)", "Std Dev (G)"}
	statWidths := []float64{0.25, 0.3, 0.2, 0.25}
	statRows := [][]string{
		statRow("Inner Capsule", sum.InnerStats),
		statRow("Drag Shield", sum.DragStats),
	}
	styler.writeTable(statHeaders, statWidths, statRows)
	styler.addSpacer(5)

	if imgBytes, ok := plotImages["gravity_level"]; ok && len(imgBytes) > 0 {
		imgWidth := pdfContentWidth * 0.95
		styler.addImage(imgBytes, "gravity_level", imgWidth, imgWidth/2, "Gravity level vs. time")
	}

	if len(sum.GQualityRows) > 0 {
		styler.pdf.AddPage()
		styler.currentY = styler.contentTopY
		styler.writeParagraph("G-quality Analysis", "h2", "L")

		gqHeaders := []string{"Window (s)", "IC Mean (G)", "IC Std (G)", "DS Mean (G)", "DS Std (G)"}
		gqWidths := []float64{0.2, 0.2, 0.2, 0.2, 0.2}
		gqRows := make([][]string, 0, len(sum.GQualityRows))
		for _, row := range sum.GQualityRows {
			gqRows = append(gqRows, []string{
				fmt.Sprintf("%.3f", row.WindowSize),
				fmtPtr(row.MeanIC), fmtPtr(row.StdIC),
				fmtPtr(row.MeanDS), fmtPtr(row.StdDS),
			})
		}
		styler.writeTable(gqHeaders, gqWidths, gqRows)
		styler.addSpacer(5)

		if imgBytes, ok := plotImages["g_quality"]; ok && len(imgBytes) > 0 {
			imgWidth := pdfContentWidth * 0.95
			styler.addImage(imgBytes, "g_quality", imgWidth, imgWidth/2, "Smallest standard deviation vs. window size")
		}
	}

	return pdf.OutputFileAndClose(filepath)
}

func statRow(name string, stats *analysis.StatisticsResult) []string {
	if stats == nil {
		return []string{name, "-", "-", "-"}
	}
	return []string{
		name,
		fmt.Sprintf("%.6f", stats.MeanAbs),
		fmt.Sprintf("%.3f", stats.StartTime),
		fmt.Sprintf("%.6f", stats.StdDev),
	}
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f", *v)
}
