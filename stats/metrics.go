package stats

import (
	"math"
	"sort"
)

const (
	// probabilities are clamped to [clampEps, 1-clampEps] before the log
	clampEps = 1e-7
	// tail accuracy denominator guard
	tailEps = 1e-8
)

// BCE returns the binary cross-entropy between one class's predicted
// probabilities and its 0/1 labels, averaged over samples.
func BCE(pred, label []float64) float64 {
	total := 0.0
	for i, p := range pred {
		p = math.Min(math.Max(p, clampEps), 1-clampEps)
		total += label[i]*math.Log(p) + (1-label[i])*math.Log(1-p)
	}
	return -total / float64(len(pred))
}

// MultiLabelBCE computes the cross-entropy for each class independently
// and returns the unweighted mean across classes, so a dominant class
// cannot swamp the aggregate.
func MultiLabelBCE(pred, label [][]float64) float64 {
	classes := len(pred[0])
	total := 0.0
	for c := 0; c < classes; c++ {
		total += BCE(column(pred, c), column(label, c))
	}
	return total / float64(classes)
}

// Accuracy binarises the predictions at the threshold and returns the
// fraction of entries matching the label matrix.
func Accuracy(pred, label [][]float64, threshold float64) float64 {
	correct, total := 0, 0
	for i, row := range pred {
		for j, p := range row {
			val := 0.0
			if p > threshold {
				val = 1
			}
			if val == label[i][j] {
				correct++
			}
			total++
		}
	}
	return float64(correct) / float64(total)
}

// AveragePrecision returns the area under the precision-recall curve for
// one class, sweeping the decision threshold over the sorted scores.
// A class with no positive labels has no defined AP and yields NaN.
func AveragePrecision(score, label []float64) float64 {
	npos := 0.0
	for _, y := range label {
		npos += y
	}
	if npos == 0 {
		return math.NaN()
	}
	order := make([]int, len(score))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return score[order[i]] > score[order[j]]
	})
	hits, sum := 0.0, 0.0
	for rank, ix := range order {
		if label[ix] > 0 {
			hits++
			sum += hits / float64(rank+1)
		}
	}
	return sum / npos
}

// MeanAveragePrecision averages the per class APs, skipping classes with
// no positive labels. The indices of the skipped classes are returned so
// the caller can report them rather than silently averaging over a
// reduced set. If every class is degenerate the mean is NaN.
func MeanAveragePrecision(pred, label [][]float64) (float64, []int) {
	classes := len(pred[0])
	var excluded []int
	sum, n := 0.0, 0
	for c := 0; c < classes; c++ {
		ap := AveragePrecision(column(pred, c), column(label, c))
		if math.IsNaN(ap) {
			excluded = append(excluded, c)
			continue
		}
		sum += ap
		n++
	}
	if n == 0 {
		return math.NaN(), excluded
	}
	return sum / float64(n), excluded
}

// TailCurve is the per threshold, per class precision of the samples
// scoring above the threshold.
type TailCurve struct {
	Thresholds []float64
	Acc        [][]float64 // Acc[step][class]
	Mean       []float64   // mean over classes per step
}

// TailAccuracy sweeps thresholds from start up to just below the smallest
// per class maximum score, so every class keeps at least one sample above
// the final threshold. For each threshold and class it computes the
// fraction of samples above threshold whose label is positive, with a
// small epsilon in the denominator so an empty tail never divides by zero.
func TailAccuracy(pred, label [][]float64, start float64, steps int) *TailCurve {
	classes := len(pred[0])
	tmax := math.Inf(1)
	for c := 0; c < classes; c++ {
		cmax := math.Inf(-1)
		for i := range pred {
			cmax = math.Max(cmax, pred[i][c])
		}
		tmax = math.Min(tmax, cmax)
	}
	if tmax < start {
		tmax = start
	}
	t := &TailCurve{
		Thresholds: make([]float64, steps),
		Acc:        make([][]float64, steps),
		Mean:       make([]float64, steps),
	}
	for s := 0; s < steps; s++ {
		th := start + (tmax-start)*float64(s)/float64(steps)
		t.Thresholds[s] = th
		t.Acc[s] = make([]float64, classes)
		for c := 0; c < classes; c++ {
			pos, cnt := 0.0, 0.0
			for i := range pred {
				if pred[i][c] > th {
					cnt++
					pos += label[i][c]
				}
			}
			t.Acc[s][c] = pos / (cnt + tailEps)
			t.Mean[s] += t.Acc[s][c]
		}
		t.Mean[s] /= float64(classes)
	}
	return t
}

// Final returns the tail accuracy at the highest threshold, averaged
// across classes.
func (t *TailCurve) Final() float64 {
	return t.Mean[len(t.Mean)-1]
}

func column(m [][]float64, j int) []float64 {
	col := make([]float64, len(m))
	for i, row := range m {
		col[i] = row[j]
	}
	return col
}
