// Package eval runs post-hoc evaluation of a trained classifier:
// aggregate metrics, the tail-accuracy curve and qualitative export of
// extreme-scoring samples.
package eval

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/voclab/voclass/img"
	"github.com/voclab/voclass/nnet"
	"github.com/voclab/voclass/stats"
)

// Result holds the full prediction and label matrices for one evaluation
// pass. Everything is accumulated in memory before metrics are computed.
type Result struct {
	Classes []string
	Paths   []string
	Pred    [][]float64
	Labels  [][]float64
}

// Run evaluates the classifier over the whole sample list. With TenCrop
// set, each sample is scored as the average over its ten crops.
func Run(c *nnet.Classifier, list *nnet.SampleList, classes []string, conf nnet.Config) (*Result, error) {
	var pred [][]float64
	var err error
	if conf.TenCrop {
		pred, err = tenCropScores(c, list, conf.TestBatch)
	} else {
		pred, err = c.Scores(list, conf.TestBatch)
	}
	if err != nil {
		return nil, errors.Wrap(err, "eval")
	}
	return &Result{
		Classes: classes,
		Paths:   list.Paths(),
		Pred:    pred,
		Labels:  list.LabelMatrix(),
	}, nil
}

// tenCropScores packs the ten crops of each sample into one multi-crop
// batch so the classifier averages the crop scores per sample.
func tenCropScores(c *nnet.Classifier, list *nnet.SampleList, batchSize int) ([][]float64, error) {
	if batchSize <= 0 || batchSize > list.Len() {
		batchSize = list.Len()
	}
	creator := c.Creator()
	pred := make([][]float64, 0, list.Len())
	for i := 0; i < list.Len(); i += batchSize {
		end := i + batchSize
		if end > list.Len() {
			end = list.Len()
		}
		var packed []float64
		for _, s := range list.Samples[i:end] {
			src, err := img.Load(s.Path)
			if err != nil {
				return nil, errors.Wrap(err, "load "+s.Path)
			}
			crops, err := list.Trans.TenCrop(src)
			if err != nil {
				return nil, errors.Wrap(err, "crop "+s.Path)
			}
			for _, m := range crops {
				for _, v := range m.Vector() {
					packed = append(packed, float64(v))
				}
			}
		}
		in := creator.MakeVectorData(creator.MakeNumericList(packed))
		out := c.Predict(in, end-i)
		scores := out.Data()
		switch data := scores.(type) {
		case []float32:
			for j := 0; j < end-i; j++ {
				row := make([]float64, c.Classes)
				for k := range row {
					row[k] = float64(data[j*c.Classes+k])
				}
				pred = append(pred, row)
			}
		case []float64:
			for j := 0; j < end-i; j++ {
				pred = append(pred, data[j*c.Classes:(j+1)*c.Classes])
			}
		default:
			return nil, errors.Errorf("unsupported numeric type %T", data)
		}
	}
	return pred, nil
}

// Summary computes the aggregate metrics and formats them as log lines.
// A non-finite mean AP is never printed: degenerate classes are excluded
// from the mean and reported by name instead.
func (r *Result) Summary(conf nnet.Config) string {
	lines := []string{
		fmt.Sprintf("samples    : %d", len(r.Paths)),
		fmt.Sprintf("loss       : %.4f", stats.MultiLabelBCE(r.Pred, r.Labels)),
		fmt.Sprintf("accuracy   : %6.2f%%", 100*stats.Accuracy(r.Pred, r.Labels, 0.5)),
	}
	mAP, excluded := stats.MeanAveragePrecision(r.Pred, r.Labels)
	if len(excluded) < len(r.Classes) {
		lines = append(lines, fmt.Sprintf("mean AP    : %6.2f%%", 100*mAP))
	}
	if len(excluded) > 0 {
		names := make([]string, len(excluded))
		for i, c := range excluded {
			names[i] = r.Classes[c]
		}
		lines = append(lines, fmt.Sprintf("mean AP excludes classes with no positives: %s",
			strings.Join(names, " ")))
	}
	curve := r.TailCurve(conf)
	lines = append(lines, fmt.Sprintf("tail acc   : %6.2f%% at threshold %.3f",
		100*curve.Final(), curve.Thresholds[len(curve.Thresholds)-1]))
	return strings.Join(lines, "\n")
}

// TailCurve computes the tail-accuracy curve for the configured sweep.
func (r *Result) TailCurve(conf nnet.Config) *stats.TailCurve {
	return stats.TailAccuracy(r.Pred, r.Labels, conf.TailStart, conf.TailSteps)
}
