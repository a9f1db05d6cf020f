package web

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/voclab/voclass/stats"
)

type ResultsPage struct {
	*Templates
	net *Network
}

// Per class row in the results table. A class with no positive labels has
// no AP so the cell stays blank.
type ClassRow struct {
	Name     string
	AP       string
	TopUrl   string
	LowerUrl string
}

func NewResultsPage(t *Templates, net *Network) *ResultsPage {
	return &ResultsPage{net: net, Templates: t.Clone().Select("/results")}
}

// Handler function for the results template
func (p *ResultsPage) Base() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p.net.Lock()
		defer p.net.Unlock()
		if err := p.ExecuteTemplate(w, "results", p); err != nil {
			logError(w, err)
		}
	}
}

func (p *ResultsPage) HaveResult() bool {
	return p.net.Result != nil
}

func (p *ResultsPage) Summary() []string {
	if p.net.Result == nil {
		return nil
	}
	return strings.Split(p.net.Result.Summary(p.net.Conf), "\n")
}

func (p *ResultsPage) Rows() []ClassRow {
	res := p.net.Result
	if res == nil {
		return nil
	}
	rows := make([]ClassRow, len(res.Classes))
	for c, name := range res.Classes {
		score := make([]float64, len(res.Pred))
		label := make([]float64, len(res.Pred))
		for i := range res.Pred {
			score[i] = res.Pred[i][c]
			label[i] = res.Labels[i][c]
		}
		row := ClassRow{
			Name:     name,
			TopUrl:   "/files/top/" + name + "/sheet.png",
			LowerUrl: "/files/bottom/" + name + "/sheet.png",
		}
		if ap := stats.AveragePrecision(score, label); !math.IsNaN(ap) {
			row.AP = fmt.Sprintf("%.2f%%", 100*ap)
		}
		rows[c] = row
	}
	return rows
}
