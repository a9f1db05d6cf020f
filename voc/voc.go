// Package voc loads the PASCAL VOC dataset for multi-label classification.
package voc

import (
	"bufio"
	"encoding/xml"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Classes lists the 20 VOC object categories in canonical order.
var Classes = []string{
	"aeroplane", "bicycle", "bird", "boat", "bottle",
	"bus", "car", "cat", "chair", "cow",
	"diningtable", "dog", "horse", "motorbike", "person",
	"pottedplant", "sheep", "sofa", "train", "tvmonitor",
}

var classIndex = make(map[string]int)

func init() {
	for i, name := range Classes {
		classIndex[name] = i
	}
}

// Sample is one image together with its multi-label class vector.
// Labels has one entry per class, 1 if any object of that class is present.
type Sample struct {
	Path   string
	Labels []float32
}

// Set is one dataset split, e.g. train or val.
type Set struct {
	Name    string
	Dir     string
	Samples []Sample
}

type annotation struct {
	Objects []struct {
		Name      string `xml:"name"`
		Difficult int    `xml:"difficult"`
	} `xml:"object"`
}

// Load reads the given split from a VOC directory tree. The directory is
// expected to contain JPEGImages, ImageSets/Main and Annotations in the
// standard layout. Objects flagged as difficult do not set a label.
func Load(dir, split string) (*Set, error) {
	ids, err := readImageSet(path.Join(dir, "ImageSets", "Main", split+".txt"))
	if err != nil {
		return nil, errors.Wrapf(err, "voc: load split %s", split)
	}
	s := &Set{Name: split, Dir: dir, Samples: make([]Sample, 0, len(ids))}
	for _, id := range ids {
		labels, err := readAnnotation(path.Join(dir, "Annotations", id+".xml"))
		if err != nil {
			return nil, errors.Wrapf(err, "voc: sample %s", id)
		}
		s.Samples = append(s.Samples, Sample{
			Path:   path.Join(dir, "JPEGImages", id+".jpg"),
			Labels: labels,
		})
	}
	return s, nil
}

// Len returns the number of samples in the split.
func (s *Set) Len() int { return len(s.Samples) }

// Paths returns the image file path for each sample in order.
func (s *Set) Paths() []string {
	p := make([]string, len(s.Samples))
	for i, sam := range s.Samples {
		p[i] = sam.Path
	}
	return p
}

// LabelMatrix exports the labels as a samples x classes matrix for the
// stats package.
func (s *Set) LabelMatrix() [][]float64 {
	m := make([][]float64, len(s.Samples))
	for i, sam := range s.Samples {
		row := make([]float64, len(sam.Labels))
		for j, v := range sam.Labels {
			row[j] = float64(v)
		}
		m[i] = row
	}
	return m
}

// Slice returns a copy of the set restricted to samples [start, end).
func (s *Set) Slice(start, end int) *Set {
	set := *s
	set.Samples = append([]Sample{}, s.Samples[start:end]...)
	return &set
}

// ClassCounts returns the number of positive samples per class.
func (s *Set) ClassCounts() []int {
	counts := make([]int, len(Classes))
	for _, sam := range s.Samples {
		for j, v := range sam.Labels {
			if v > 0 {
				counts[j]++
			}
		}
	}
	return counts
}

func readImageSet(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// per-class membership lists carry a second -1/0/1 column
		if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
			ids = append(ids, fields[0])
		}
	}
	return ids, scanner.Err()
}

func readAnnotation(file string) ([]float32, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var ann annotation
	if err := xml.Unmarshal(data, &ann); err != nil {
		return nil, errors.Wrap(err, "parse annotation")
	}
	labels := make([]float32, len(Classes))
	for _, obj := range ann.Objects {
		if obj.Difficult != 0 {
			continue
		}
		ix, ok := classIndex[obj.Name]
		if !ok {
			return nil, errors.Errorf("unknown class %q", obj.Name)
		}
		labels[ix] = 1
	}
	return labels, nil
}
