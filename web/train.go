package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/voclab/voclass/nnet"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type TrainPage struct {
	*Templates
	net *Network
}

// Base data for handler functions to control training and display the stats
func NewTrainPage(t *Templates, net *Network) *TrainPage {
	return &TrainPage{net: net, Templates: t.Clone().Select("/train")}
}

// Handler function for the train template
func (p *TrainPage) Base() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p.net.Lock()
		defer p.net.Unlock()
		if err := p.ExecuteTemplate(w, "train", p); err != nil {
			logError(w, err)
		}
	}
}

// Handler function for the start and stop commands
func (p *TrainPage) Command() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		switch mux.Vars(r)["cmd"] {
		case "start":
			p.net.Train()
		case "stop":
			p.net.Stop()
		}
		http.Redirect(w, r, "/train", http.StatusFound)
	}
}

// Handler function for the stats fragment
func (p *TrainPage) Stats() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p.net.Lock()
		defer p.net.Unlock()
		if err := p.ExecuteTemplate(w, "stats", p); err != nil {
			logError(w, err)
		}
	}
}

// Handler function for websocket connection
func (p *TrainPage) Websocket() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logError(w, err)
			return
		}
		p.net.Lock()
		p.net.conn = conn
		p.net.Unlock()
	}
}

func (p *TrainPage) Heading() template.HTML {
	s := fmt.Sprintf(`%s: epoch <span id="epoch">%d</span> of %d`,
		p.net.Conf.Model, p.net.Epoch, p.net.Conf.MaxEpoch)
	return template.HTML(s)
}

func (p *TrainPage) Headers() []string {
	return p.net.base.Headers
}

func (p *TrainPage) LatestStats(n int) []nnet.Stats {
	last := len(p.net.base.Stats) - 1
	res := []nnet.Stats{}
	for i := last; i >= 0 && i > last-n; i-- {
		res = append(res, p.net.base.Stats[i])
	}
	return res
}

func (p *TrainPage) RunTime() string {
	if len(p.net.base.Stats) == 0 {
		return ""
	}
	elapsed := p.net.base.Stats[len(p.net.base.Stats)-1].Elapsed
	return fmt.Sprintf("run time: %s", elapsed.Round(10*time.Millisecond))
}

func (p *TrainPage) LossPlot(width, height int) template.HTML {
	plt := newPlot()
	line := newLinePlot(p.net.base.Stats, 0, 1)
	plt.Add(line)
	plt.Legend.Add("training loss ", line)
	return writePlot(plt, width, height)
}

func (p *TrainPage) ErrorPlot(width, height int) template.HTML {
	plt := newPlot()
	for i, name := range p.Headers()[1:] {
		line := newLinePlot(p.net.base.Stats, i+1, 100)
		plt.Add(line)
		plt.Legend.Add(name+" % ", line)
	}
	return writePlot(plt, width, height)
}

func newPlot() *plot.Plot {
	p, err := plot.New()
	if err != nil {
		log.Fatal("Plot error: ", err)
	}
	fontSmall := newFont(10)
	fontMedium := newFont(12)
	p.X.Padding, p.Y.Padding = 0, 0
	p.X.Tick.Label.Font = fontSmall
	p.Y.Tick.Label.Font = fontSmall
	p.Legend.Top = true
	p.Legend.Font = fontMedium
	p.Add(plotter.NewGrid())
	return p
}

func writePlot(p *plot.Plot, w, h int) template.HTML {
	var buf bytes.Buffer
	writer, err := p.WriterTo(vg.Inch*vg.Length(w)/vgsvg.DPI, vg.Inch*vg.Length(h)/vgsvg.DPI, "svg")
	if err != nil {
		log.Fatal("Error writing plot: ", err)
	}
	writer.WriteTo(&buf)
	return template.HTML(buf.String())
}

func newFont(size vg.Length) vg.Font {
	font, err := vg.MakeFont("Helvetica", size)
	if err != nil {
		log.Fatal("Plot: failed loading font", err)
	}
	return font
}

func newLinePlot(stats []nnet.Stats, ix int, scale float64) linePlot {
	var pt struct{ X, Y float64 }
	var pts plotter.XYs
	xmax, ymax := 1.0, 0.0
	for _, s := range stats {
		pt.X, pt.Y = float64(s.Epoch), s.Values[ix]*scale
		pts = append(pts, pt)
		if pt.X > xmax {
			xmax = pt.X
		}
		if pt.Y > ymax {
			ymax = pt.Y
		}
	}
	l, _ := plotter.NewLine(pts)
	l.Width = 2
	l.Color = plotutil.Color(ix)
	return linePlot{Line: l, xmin: 1, xmax: xmax, ymin: 0, ymax: ymax}
}

// modified plotter.Line with a fixed scale
type linePlot struct {
	*plotter.Line
	xmin, xmax, ymin, ymax float64
}

func (l linePlot) DataRange() (xmin, xmax, ymin, ymax float64) {
	return l.xmin, l.xmax, l.ymin, l.ymax
}
