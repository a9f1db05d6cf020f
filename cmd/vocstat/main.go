package main

import (
	"flag"
	"fmt"
	"path"

	"github.com/voclab/voclass/img"
	"github.com/voclab/voclass/nnet"
	"github.com/voclab/voclass/voc"
)

// Verify the VOC dataset and compute the per channel normalisation stats
// from the training split.
func main() {
	conf := nnet.DefaultConfig()
	flag.StringVar(&conf.DataDir, "datadir", conf.DataDir, "VOC dataset directory")
	flag.IntVar(&conf.MaxSamples, "samples", 1000, "max images for the stats estimate")
	flag.Parse()

	for _, split := range []string{"train", "val"} {
		set, err := voc.Load(conf.DataDir, split)
		nnet.CheckErr(err)
		fmt.Printf("== %s: %d samples ==\n", split, set.Len())
		for i, count := range set.ClassCounts() {
			fmt.Printf("%-12s: %4d\n", voc.Classes[i], count)
		}
	}

	set, err := voc.Load(conf.DataDir, "train")
	nnet.CheckErr(err)
	if conf.MaxSamples > 0 && set.Len() > conf.MaxSamples {
		set = set.Slice(0, conf.MaxSamples)
	}
	trans := img.NewTransformer(conf.ImageScale, conf.CropSize, img.NoTrans, nil)
	images := make([]*img.RGBImage, set.Len())
	for i, s := range set.Samples {
		src, err := img.Load(s.Path)
		nnet.CheckErr(err)
		images[i], err = trans.Transform(src)
		nnet.CheckErr(err)
	}
	mean, std := img.GetStats(images)
	stats := &img.Stats{Mean: mean, Std: std}
	file := path.Join(conf.DataDir, "stats.dat")
	nnet.CheckErr(stats.Save(file))
	fmt.Println("saved stats to", file)
}
