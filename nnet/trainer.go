package nnet

import (
	"fmt"
	"time"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anyff"
	"github.com/unixpickle/anynet/anysgd"

	"github.com/voclab/voclass/stats"
)

const emaN = 10

// DataTypes lists the dataset splits in evaluation order.
var DataTypes = []string{"train", "valid", "test"}

// Training statistics
type Stats struct {
	Epoch     int
	Values    []float64
	BestSince int
	Elapsed   time.Duration
}

func StatsHeaders(d map[string]*SampleList) []string {
	h := []string{"loss"}
	for _, key := range DataTypes {
		if _, ok := d[key]; ok {
			h = append(h, key+" error")
			if key == "valid" {
				h = append(h, "valid avg")
			}
		}
	}
	return h
}

func (s Stats) Format() []string {
	str := []string{fmt.Sprintf("%7.4f", s.Values[0])}
	for _, v := range s.Values[1:] {
		str = append(str, fmt.Sprintf("%6.2f%%", v*100))
	}
	return str
}

func (s Stats) String(headers []string) string {
	msg := fmt.Sprintf("epoch %3d:", s.Epoch)
	for i, val := range s.Format() {
		msg += fmt.Sprintf("  %s =%s", headers[i], val)
	}
	if s.BestSince >= 0 {
		msg += fmt.Sprintf(" [%d]", s.BestSince)
	}
	return msg
}

func (s Stats) Copy() Stats {
	c := s
	c.Values = append([]float64{}, s.Values...)
	return c
}

// Tester interface to evaluate the performance after each epoch, Test
// method returns true if training should stop.
type Tester interface {
	Test(c *Classifier, epoch int, loss float64, start time.Time) bool
}

// Tester which evaluates the error for each of the data sets and updates
// the stats.
type TestBase struct {
	Conf    Config
	Data    map[string]*SampleList
	Stats   []Stats
	Headers []string
	avgs    []float64
}

// Create a new base tester over the given data sets, limited to
// MaxSamples samples per set.
func NewTestBase(conf Config, data map[string]*SampleList) *TestBase {
	t := &TestBase{Conf: conf, Data: make(map[string]*SampleList), Headers: StatsHeaders(data)}
	for key, d := range data {
		t.Data[key] = d.Limit(conf.MaxSamples)
	}
	return t
}

// Reset stats prior to new run
func (t *TestBase) Reset() {
	t.Stats = t.Stats[:0]
	t.avgs = t.avgs[:0]
}

// Test performance of the network, called on completion of each epoch.
func (t *TestBase) Test(c *Classifier, epoch int, loss float64, start time.Time) bool {
	s := Stats{Epoch: epoch, Values: []float64{loss}, BestSince: -1}
	for _, key := range DataTypes {
		dset, ok := t.Data[key]
		if !ok {
			continue
		}
		pred, err := c.Scores(dset, t.Conf.TestBatch)
		if err != nil {
			fmt.Println("test error:", err)
			continue
		}
		errVal := 1 - stats.Accuracy(pred, dset.LabelMatrix(), 0.5)
		s.Values = append(s.Values, errVal)
		if key == "valid" {
			// smoothed validation error and epochs since improvement
			avgVal := 0.0
			if len(t.avgs) > 0 {
				avgVal = t.avgs[len(t.avgs)-1]
			}
			avgVal = stats.EMA(avgVal).Add(errVal, emaN)
			t.avgs = append(t.avgs, avgVal)
			s.Values = append(s.Values, avgVal)
			for ep := len(t.avgs) - 2; ep >= 0; ep-- {
				if t.avgs[ep] > avgVal {
					s.BestSince = len(t.avgs) - ep - 2
					break
				}
			}
		}
	}
	s.Elapsed = time.Since(start)
	t.Stats = append(t.Stats, s)
	return epoch >= t.Conf.MaxEpoch || loss <= t.Conf.MinLoss ||
		(t.Conf.StopAfter > 0 && s.BestSince >= t.Conf.StopAfter)
}

// Tester which also logs stats to stdout.
type TestLogger struct {
	*TestBase
}

func NewTestLogger(conf Config, data map[string]*SampleList) *TestLogger {
	return &TestLogger{TestBase: NewTestBase(conf, data)}
}

func (t *TestLogger) Test(c *Classifier, epoch int, loss float64, start time.Time) bool {
	done := t.TestBase.Test(c, epoch, loss, start)
	s := t.Stats[len(t.Stats)-1]
	if done || t.Conf.LogEvery == 0 || epoch%t.Conf.LogEvery == 0 {
		fmt.Println(s.String(t.Headers))
	}
	if done {
		fmt.Printf("run time: %s\n", s.Elapsed.Round(10*time.Millisecond))
	}
	return done
}

// Train fine-tunes the classifier on the training set, evaluating after
// each epoch until the tester signals to stop. Gradient computation and
// the Adam update are delegated to the anynet trainer; a message on stop
// ends training after the current epoch.
func Train(c *Classifier, conf Config, train *SampleList, test Tester, stop <-chan struct{}) error {
	params := c.Params(conf.FineTuneAll)
	t := &anyff.Trainer{
		Net:     c.Net,
		Cost:    TrainingCost(conf.Lambda, params),
		Params:  params,
		Average: true,
	}
	var trans anysgd.Transformer = &anysgd.Adam{}
	rater := anysgd.ConstRater(conf.Eta)
	start := time.Now()
	for epoch := 1; epoch <= conf.MaxEpoch; epoch++ {
		loss, err := TrainEpoch(t, trans, rater, train, conf.TrainBatch, epoch)
		if err != nil {
			return err
		}
		if test.Test(c, epoch, loss, start) {
			break
		}
		select {
		case <-stop:
			fmt.Println("interrupt: stopping after epoch", epoch)
			return nil
		default:
		}
	}
	return nil
}

// TrainEpoch makes one shuffled pass over the training samples and returns
// the mean batch cost.
func TrainEpoch(t *anyff.Trainer, trans anysgd.Transformer, rater anysgd.Rater,
	samples *SampleList, batchSize, epoch int) (float64, error) {
	anysgd.Shuffle(samples)
	if batchSize <= 0 || batchSize > samples.Len() {
		batchSize = samples.Len()
	}
	total, batches := 0.0, 0
	for i := 0; i < samples.Len(); i += batchSize {
		end := i + batchSize
		if end > samples.Len() {
			end = samples.Len()
		}
		batch, err := t.Fetch(samples.Slice(i, end))
		if err != nil {
			return 0, err
		}
		grad := t.Gradient(batch)
		grad = trans.Transform(grad)
		scaleGrad(grad, -rater.Rate(float64(epoch-1)))
		grad.AddToVars()
		total += numericToFloat(t.LastCost)
		batches++
	}
	return total / float64(batches), nil
}

func scaleGrad(g anydiff.Grad, s float64) {
	for _, v := range g {
		g.Scale(v.Creator().MakeNumeric(s))
		return
	}
}
