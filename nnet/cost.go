package nnet

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
)

// MultiLabelCost is sigmoid cross-entropy computed per class and averaged
// unweighted across classes, so a frequent class cannot swamp the gradient
// signal the way a single flattened cross-entropy would.
//
// Working from the logits through LogSigmoid keeps the cost defined even
// for saturated outputs; the probability never reaches exactly 0 or 1.
type MultiLabelCost struct{}

// Cost returns one cost value per sample in the batch.
func (m MultiLabelCost) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	c := actual.Output().Creator()
	minusOne := c.MakeNumeric(-1)
	products := anydiff.Pool(desired, func(desired anydiff.Res) anydiff.Res {
		return anydiff.Pool(actual, func(actual anydiff.Res) anydiff.Res {
			logP := anydiff.LogSigmoid(actual)
			logQ := anydiff.LogSigmoid(anydiff.Scale(actual, minusOne))
			return anydiff.Add(
				anydiff.Mul(desired, logP),
				anydiff.Mul(anydiff.Complement(desired), logQ),
			)
		})
	})
	classes := actual.Output().Len() / n
	sums := anydiff.SumCols(&anydiff.Matrix{Data: products, Rows: n, Cols: classes})
	return anydiff.Scale(sums, c.MakeNumeric(-1.0/float64(classes)))
}

// TrainingCost wraps the multi-label cost with an L2 penalty on the given
// parameters when lambda is set.
func TrainingCost(lambda float64, params []*anydiff.Var) anynet.Cost {
	if lambda == 0 {
		return MultiLabelCost{}
	}
	return &anynet.L2Reg{Penalty: lambda, Params: params, Wrapped: MultiLabelCost{}}
}
