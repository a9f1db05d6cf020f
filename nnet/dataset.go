package nnet

import (
	"github.com/unixpickle/anynet/anyff"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"

	"github.com/voclab/voclass/img"
	"github.com/voclab/voclass/voc"
)

// SampleList adapts a VOC split to the anyff trainer. Images are decoded
// and transformed on demand; the trainer fetches batches with a worker
// pool so decoding overlaps gradient computation.
type SampleList struct {
	Samples []voc.Sample
	Trans   *img.Transformer
	creator anyvec.Creator
}

// NewSampleList wraps the dataset split with the given transform chain.
func NewSampleList(c anyvec.Creator, set *voc.Set, trans *img.Transformer) *SampleList {
	return &SampleList{Samples: set.Samples, Trans: trans, creator: c}
}

// Limit caps the list at n samples; n <= 0 leaves the list unchanged.
func (l *SampleList) Limit(n int) *SampleList {
	if n > 0 && n < len(l.Samples) {
		trimmed := *l
		trimmed.Samples = l.Samples[:n]
		return &trimmed
	}
	return l
}

func (l *SampleList) Len() int { return len(l.Samples) }

func (l *SampleList) Swap(i, j int) {
	l.Samples[i], l.Samples[j] = l.Samples[j], l.Samples[i]
}

func (l *SampleList) Slice(i, j int) anysgd.SampleList {
	sub := *l
	sub.Samples = append([]voc.Sample{}, l.Samples[i:j]...)
	return &sub
}

// GetSample decodes and transforms one image.
func (l *SampleList) GetSample(idx int) (*anyff.Sample, error) {
	s := l.Samples[idx]
	src, err := img.Load(s.Path)
	if err != nil {
		return nil, essentials.AddCtx("load "+s.Path, err)
	}
	m, err := l.Trans.Transform(src)
	if err != nil {
		return nil, essentials.AddCtx("transform "+s.Path, err)
	}
	return &anyff.Sample{
		Input:  floatVec(l.creator, m.Vector()),
		Output: floatVec(l.creator, s.Labels),
	}, nil
}

// Paths returns the image path per sample in current order.
func (l *SampleList) Paths() []string {
	p := make([]string, len(l.Samples))
	for i, s := range l.Samples {
		p[i] = s.Path
	}
	return p
}

// LabelMatrix exports the labels in current order for the stats package.
func (l *SampleList) LabelMatrix() [][]float64 {
	m := make([][]float64, len(l.Samples))
	for i, s := range l.Samples {
		row := make([]float64, len(s.Labels))
		for j, v := range s.Labels {
			row[j] = float64(v)
		}
		m[i] = row
	}
	return m
}

func floatVec(c anyvec.Creator, data []float32) anyvec.Vector {
	vals := make([]float64, len(data))
	for i, x := range data {
		vals[i] = float64(x)
	}
	return c.MakeVectorData(c.MakeNumericList(vals))
}
