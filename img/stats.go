package img

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/voclab/voclass/stats"
)

// Stats holds the per channel normalisation constants for a dataset.
type Stats struct {
	Mean []float32
	Std  []float32
}

// GetStats calculates the per channel mean and stddev from a set of images.
func GetStats(images []*RGBImage) (mean, std []float32) {
	stat := make([]*stats.Average, 3)
	for i := range stat {
		stat[i] = new(stats.Average)
	}
	for _, m := range images {
		for ch, s := range stat {
			for _, val := range m.Pixels(ch) {
				s.Add(float64(val))
			}
		}
	}
	mean = make([]float32, 3)
	std = make([]float32, 3)
	for i, s := range stat {
		mean[i] = float32(s.Mean)
		std[i] = float32(s.StdDev)
	}
	fmt.Printf("mean = %.3f stddev = %.3f\n", mean, std)
	return mean, std
}

// Encode stats in gob format and save to file
func (s *Stats) Save(file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(s)
}

// Read back gob encoded stats file
func LoadStats(file string) (*Stats, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := new(Stats)
	return s, gob.NewDecoder(f).Decode(s)
}
