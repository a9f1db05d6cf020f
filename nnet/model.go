// Package nnet wires the pretrained backbone, classifier head and training
// loop. The heavy lifting is delegated to the anynet framework: anydiff for
// gradients, anyvec for array storage and anysgd for the optimiser.
package nnet

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// Classifier is a pretrained backbone network whose final fully-connected
// layer has been replaced by a fresh head sized for the target classes.
// Raw network outputs are logits; Predict applies the sigmoid so scores
// are independent per-class probabilities.
type Classifier struct {
	Net     anynet.Net
	Head    *anynet.FC
	InSize  int
	Classes int
	creator anyvec.Creator
}

// NewClassifier loads the backbone blob and swaps its last fully-connected
// layer (and anything after it) for a new randomised head.
func NewClassifier(c anyvec.Creator, backbone string, inSize, classes int) (*Classifier, error) {
	var net anynet.Net
	if err := serializer.LoadAny(backbone, &net); err != nil {
		return nil, essentials.AddCtx("load backbone", err)
	}
	last := -1
	for i := len(net) - 1; i >= 0; i-- {
		if _, ok := net[i].(*anynet.FC); ok {
			last = i
			break
		}
	}
	if last < 0 {
		return nil, fmt.Errorf("backbone %s has no fully-connected layer to replace", backbone)
	}
	fc := net[last].(*anynet.FC)
	head := anynet.NewFC(c, fc.InCount, classes)
	net = append(net[:last:last], head)
	return &Classifier{Net: net, Head: head, InSize: inSize, Classes: classes, creator: c}, nil
}

// NewClassifierNet wraps an existing network as a classifier, used after
// loading a checkpoint.
func NewClassifierNet(c anyvec.Creator, net anynet.Net, inSize, classes int) *Classifier {
	cl := &Classifier{Net: net, InSize: inSize, Classes: classes, creator: c}
	for i := len(net) - 1; i >= 0; i-- {
		if fc, ok := net[i].(*anynet.FC); ok {
			cl.Head = fc
			break
		}
	}
	return cl
}

// Creator returns the vector creator the classifier was built with.
func (c *Classifier) Creator() anyvec.Creator { return c.creator }

// Params returns the variables the optimiser should update: just the new
// head by default, or the whole network when fine-tuning everything.
func (c *Classifier) Params(fineTuneAll bool) []*anydiff.Var {
	if fineTuneAll || c.Head == nil {
		return c.Net.Parameters()
	}
	return c.Head.Parameters()
}

// Predict runs the network on a packed batch and returns per-class
// probabilities. The input must be either batch single-crop vectors
// (batch*InSize values) or batch multi-crop stacks (batch*k*InSize values
// for integer k), in which case crop scores are averaged per sample.
// Any other length is a malformed input rank and panics.
func (c *Classifier) Predict(in anyvec.Vector, batch int) anyvec.Vector {
	n := in.Len()
	if batch > 0 && n == batch*c.InSize {
		return anydiff.Sigmoid(c.Net.Apply(anydiff.NewConst(in), batch)).Output().Copy()
	}
	if batch > 0 && n%(batch*c.InSize) == 0 {
		crops := n / (batch * c.InSize)
		out := anydiff.Sigmoid(c.Net.Apply(anydiff.NewConst(in), batch*crops)).Output()
		scores := vecToFloats(out)
		avg := make([]float64, batch*c.Classes)
		for i := 0; i < batch; i++ {
			for k := 0; k < crops; k++ {
				row := scores[(i*crops+k)*c.Classes : (i*crops+k+1)*c.Classes]
				for j, v := range row {
					avg[i*c.Classes+j] += v / float64(crops)
				}
			}
		}
		return c.creator.MakeVectorData(c.creator.MakeNumericList(avg))
	}
	panic(fmt.Sprintf("classifier: input length %d is not a single or multi-crop batch of %d", n, batch))
}

// Scores evaluates the whole sample list and returns the samples x classes
// probability matrix.
func (c *Classifier) Scores(list *SampleList, batchSize int) ([][]float64, error) {
	if batchSize <= 0 || batchSize > list.Len() {
		batchSize = list.Len()
	}
	fetcher := &anyff.Trainer{}
	pred := make([][]float64, 0, list.Len())
	for i := 0; i < list.Len(); i += batchSize {
		end := i + batchSize
		if end > list.Len() {
			end = list.Len()
		}
		batch, err := fetcher.Fetch(list.Slice(i, end))
		if err != nil {
			return nil, err
		}
		b := batch.(*anyff.Batch)
		out := vecToFloats(c.Predict(b.Inputs.Output(), end-i))
		for j := 0; j < end-i; j++ {
			pred = append(pred, out[j*c.Classes:(j+1)*c.Classes])
		}
	}
	return pred, nil
}

// Set random number seed, or random seed if seed <= 0
func SetSeed(seed int64) *rand.Rand {
	if seed <= 0 {
		seed = time.Now().UTC().UnixNano()
	}
	fmt.Println("random seed =", seed)
	return rand.New(rand.NewSource(seed))
}

// Exit in case of error
func CheckErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func vecToFloats(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float32:
		out := make([]float64, len(data))
		for i, x := range data {
			out[i] = float64(x)
		}
		return out
	case []float64:
		return data
	default:
		panic(fmt.Sprintf("unsupported numeric type %T", data))
	}
}

func numericToFloat(n anyvec.Numeric) float64 {
	switch x := n.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		panic(fmt.Sprintf("unsupported numeric type %T", n))
	}
}
