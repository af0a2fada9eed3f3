package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/aat_analyzer_go/internal/analysis"
)

var (
	innerColor = color.RGBA{B: 255, A: 255}
	dragColor  = color.RGBA{R: 255, A: 255}
)

// PlotGravityLevel renders both sensors' gravity-level traces against their
// own time axes and returns the PNG bytes.
func PlotGravityLevel(inner, drag analysis.SensorSeries, title string) ([]byte, error) {
	if inner.Empty() && drag.Empty() {
		return nil, fmt.Errorf("no sensor data to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Gravity Level (G)"
	p.Add(plotter.NewGrid())

	if !inner.Empty() {
		line, err := plotter.NewLine(seriesXYs(inner.Time, inner.Value))
		if err != nil {
			return nil, fmt.Errorf("failed to create inner capsule line: %v", err)
		}
		line.Color = innerColor
		line.LineStyle.Width = vg.Points(0.8)
		p.Add(line)
		p.Legend.Add("Inner Capsule", line)
	}
	if !drag.Empty() {
		line, err := plotter.NewLine(seriesXYs(drag.Time, drag.Value))
		if err != nil {
			return nil, fmt.Errorf("failed to create drag shield line: %v", err)
		}
		line.Color = dragColor
		line.LineStyle.Width = vg.Points(0.8)
		p.Add(line)
		p.Legend.Add("Drag Shield", line)
	}
	p.Legend.Top = true

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

// PlotGQuality renders the minimum standard deviation of each sensor against
// window size and returns the PNG bytes.
func PlotGQuality(rows []analysis.GQualityRow, title string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no g-quality rows to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Window Size (s)"
	p.Y.Label.Text = "Smallest Standard Deviation (G)"
	p.Add(plotter.NewGrid())

	var innerPts, dragPts plotter.XYs
	for _, row := range rows {
		if row.StdIC != nil {
			innerPts = append(innerPts, plotter.XY{X: row.WindowSize, Y: *row.StdIC})
		}
		if row.StdDS != nil {
			dragPts = append(dragPts, plotter.XY{X: row.WindowSize, Y: *row.StdDS})
		}
	}

	plotted := false
	if len(innerPts) > 0 {
		line, err := plotter.NewLine(innerPts)
		if err != nil {
			return nil, fmt.Errorf("failed to create inner capsule line: %v", err)
		}
		line.Color = innerColor
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("Inner Capsule", line)
		plotted = true
	}
	if len(dragPts) > 0 {
		line, err := plotter.NewLine(dragPts)
		if err != nil {
			return nil, fmt.Errorf("failed to create drag shield line: %v", err)
		}
		line.Color = dragColor
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("Drag Shield", line)
		plotted = true
	}
	if !plotted {
		return nil, fmt.Errorf("g-quality rows contain no sensor results")
	}
	p.Legend.Top = true

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

func seriesXYs(time, value []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(value))
	for i := range value {
		pts = append(pts, plotter.XY{X: time[i], Y: value[i]})
	}
	return pts
}

func renderPNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}
