package eval

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/voclab/voclass/nnet"
)

func TestSummary(t *testing.T) {
	r := &Result{
		Classes: []string{"cat", "dog"},
		Paths:   []string{"a", "b"},
		Pred:    [][]float64{{0.9, 0.1}, {0.2, 0.8}},
		Labels:  [][]float64{{1, 0}, {0, 1}},
	}
	s := r.Summary(nnet.DefaultConfig())
	if !strings.Contains(s, "accuracy") || !strings.Contains(s, "100.00%") {
		t.Errorf("summary missing accuracy:\n%s", s)
	}
	if !strings.Contains(s, "mean AP") {
		t.Errorf("summary missing mean AP:\n%s", s)
	}
	if strings.Contains(s, "NaN") {
		t.Errorf("summary should never print NaN:\n%s", s)
	}
}

func TestSummaryExcludedClasses(t *testing.T) {
	r := &Result{
		Classes: []string{"cat", "dog"},
		Paths:   []string{"a", "b"},
		Pred:    [][]float64{{0.9, 0.1}, {0.2, 0.8}},
		Labels:  [][]float64{{1, 0}, {1, 0}},
	}
	s := r.Summary(nnet.DefaultConfig())
	if !strings.Contains(s, "excludes classes") || !strings.Contains(s, "dog") {
		t.Errorf("summary should name the excluded class:\n%s", s)
	}
	if strings.Contains(s, "cat ") && strings.Contains(s, "excludes classes with no positives: cat") {
		t.Errorf("cat has positives and must not be excluded:\n%s", s)
	}
}

func TestSummaryAllDegenerate(t *testing.T) {
	r := &Result{
		Classes: []string{"cat"},
		Paths:   []string{"a", "b"},
		Pred:    [][]float64{{0.9}, {0.2}},
		Labels:  [][]float64{{0}, {0}},
	}
	s := r.Summary(nnet.DefaultConfig())
	if strings.Contains(s, "NaN") {
		t.Errorf("summary should suppress a non-finite mean AP:\n%s", s)
	}
	if !strings.Contains(s, "cat") {
		t.Errorf("summary should still name the excluded class:\n%s", s)
	}
}

func TestWriteTailPlot(t *testing.T) {
	r := &Result{
		Classes: []string{"cat", "dog"},
		Pred:    [][]float64{{0.9, 0.1}, {0.2, 0.8}, {0.7, 0.6}},
		Labels:  [][]float64{{1, 0}, {0, 1}, {1, 1}},
	}
	conf := nnet.DefaultConfig()
	dir := t.TempDir()
	if err := WriteTailPlot(r.TailCurve(conf), r.Classes, dir); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path.Join(dir, TailPlotFile))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty plot file")
	}
}
