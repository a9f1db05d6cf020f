package eval

import (
	"path"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/voclab/voclass/stats"
)

// TailPlotFile is the fixed name of the tail accuracy chart.
const TailPlotFile = "tailacc.png"

// WriteTailPlot draws one tail-accuracy curve per class plus the mean
// curve and saves the chart as tailacc.png in dir.
func WriteTailPlot(curve *stats.TailCurve, classes []string, dir string) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = "tail accuracy"
	p.X.Label.Text = "score threshold"
	p.Y.Label.Text = "precision above threshold"
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())
	for c, name := range classes {
		line, err := plotter.NewLine(classPoints(curve, c))
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(c)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	mean, err := plotter.NewLine(meanPoints(curve))
	if err != nil {
		return err
	}
	mean.Width = 3
	p.Add(mean)
	p.Legend.Add("mean", mean)
	return p.Save(10*vg.Inch, 6*vg.Inch, path.Join(dir, TailPlotFile))
}

func classPoints(curve *stats.TailCurve, class int) plotter.XYs {
	pts := make(plotter.XYs, len(curve.Thresholds))
	for i, th := range curve.Thresholds {
		pts[i].X, pts[i].Y = th, curve.Acc[i][class]
	}
	return pts
}

func meanPoints(curve *stats.TailCurve) plotter.XYs {
	pts := make(plotter.XYs, len(curve.Thresholds))
	for i, th := range curve.Thresholds {
		pts[i].X, pts[i].Y = th, curve.Mean[i]
	}
	return pts
}
