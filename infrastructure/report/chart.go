package report

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/helixml/taxseq/domain/sequence"
)

// Chart labels.
const (
	ChartTitle  = "Sequence Lengths by Accession Number"
	ChartXLabel = "Accession Number"
	ChartYLabel = "Sequence Length (bp)"
)

// Chart dimensions.
const (
	ChartWidth  = 12 * vg.Inch
	ChartHeight = 6 * vg.Inch
)

// NewChart builds a length-by-accession line chart with records sorted
// by descending length.
func NewChart(records []sequence.FilteredRecord) (*plot.Plot, error) {
	sorted := sequence.SortedByLengthDesc(records)

	p := plot.New()
	p.Title.Text = ChartTitle
	p.X.Label.Text = ChartXLabel
	p.Y.Label.Text = ChartYLabel
	p.Add(plotter.NewGrid())

	points := make(plotter.XYs, len(sorted))
	names := make([]string, len(sorted))
	for i, r := range sorted {
		points[i].X = float64(i)
		points[i].Y = float64(r.Length())
		names[i] = r.Accession()
	}

	line, markers, err := plotter.NewLinePoints(points)
	if err != nil {
		return nil, fmt.Errorf("build chart series: %w", err)
	}
	markers.Shape = draw.CircleGlyph{}
	markers.Radius = vg.Points(2)
	p.Add(line, markers)

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Tick.Label.Font.Size = vg.Points(6)
	p.Y.Min = 0

	return p, nil
}

// WriteChart renders the chart as PNG.
func WriteChart(w io.Writer, records []sequence.FilteredRecord) error {
	p, err := NewChart(records)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
