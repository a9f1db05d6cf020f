package nnet

import (
	"math"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec/anyvec32"

	"github.com/voclab/voclass/stats"
)

func TestMultiLabelCost(t *testing.T) {
	testCost(t, MultiLabelCost{}, []float32{
		1, 0.6, 0,
		0.2, 0, 0,
	}, []float32{
		1, 0, -50,
		2, -1, -50,
	}, []float32{
		(1.0 / 3) * (0.3132616875 + 0.6931471806),
		(1.0 / 3) * (0.02538560221 + 1.7015424088 + 0.3132616875),
	}, 2)
}

// The per-class averaged cost must agree with the framework's averaged
// sigmoid cross-entropy, since all classes have the same sample count.
func TestMultiLabelCostMatchesSigmoidCE(t *testing.T) {
	desired := anydiff.NewConst(anyvec32.MakeVectorData([]float32{
		1, 0, 1, 0.4,
		0, 1, 0, 0.9,
		1, 1, 0, 0,
	}))
	actual := anydiff.NewConst(anyvec32.MakeVectorData([]float32{
		0.5, -1, 2, 0,
		-2, 3, 1, -0.5,
		0.1, 0.2, -0.3, 4,
	}))
	got := MultiLabelCost{}.Cost(desired, actual, 3).Output().Data().([]float32)
	want := anynet.SigmoidCE{Average: true}.Cost(desired, actual, 3).Output().Data().([]float32)
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-4 {
			t.Errorf("sample %d: got %v want %v", i, got[i], want[i])
		}
	}
}

// A single class column must reduce to the plain per-column binary
// cross-entropy on the sigmoid probabilities.
func TestMultiLabelCostSingleClass(t *testing.T) {
	logits := []float64{1.5, -0.5, 0.25}
	labels := []float64{1, 0, 1}
	desired := anydiff.NewConst(anyvec32.MakeVectorData([]float32{1, 0, 1}))
	actual := anydiff.NewConst(anyvec32.MakeVectorData([]float32{1.5, -0.5, 0.25}))
	out := MultiLabelCost{}.Cost(desired, actual, 3).Output().Data().([]float32)
	mean := 0.0
	for _, v := range out {
		mean += float64(v) / float64(len(out))
	}
	probs := make([]float64, len(logits))
	for i, x := range logits {
		probs[i] = 1 / (1 + math.Exp(-x))
	}
	if want := stats.BCE(probs, labels); math.Abs(mean-want) > 1e-4 {
		t.Errorf("aggregated cost %v != per-column BCE %v", mean, want)
	}
}

func TestTrainingCostL2(t *testing.T) {
	if _, ok := TrainingCost(0, nil).(MultiLabelCost); !ok {
		t.Error("lambda 0 should not wrap the cost")
	}
	v := anydiff.NewVar(anyvec32.MakeVectorData([]float32{1, 2}))
	if _, ok := TrainingCost(0.1, []*anydiff.Var{v}).(*anynet.L2Reg); !ok {
		t.Error("lambda > 0 should add an L2 penalty")
	}
}

func testCost(t *testing.T, c anynet.Cost, desired, output, expected []float32, n int) {
	desiredRes := anydiff.NewConst(anyvec32.MakeVectorData(desired))
	outputRes := anydiff.NewConst(anyvec32.MakeVectorData(output))
	actual := c.Cost(desiredRes, outputRes, n).Output().Data().([]float32)
	for i, x := range expected {
		a := actual[i]
		if math.IsNaN(float64(a)) || math.Abs(float64(x-a)) > 1e-3 {
			t.Errorf("component %d: expected %f but got %f", i, x, a)
		}
	}
}
