package main

import (
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/unixpickle/anyvec/anyvec32"

	"github.com/voclab/voclass/eval"
	"github.com/voclab/voclass/img"
	"github.com/voclab/voclass/nnet"
	"github.com/voclab/voclass/voc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: eval [opts] <model>")
		os.Exit(1)
	}
	model := os.Args[len(os.Args)-1]
	conf, err := nnet.LoadConfig(model + ".conf")
	if err != nil && !os.IsNotExist(err) {
		nnet.CheckErr(err)
	}
	conf.Model = model

	split := "val"
	flag.StringVar(&split, "split", split, "VOC split to evaluate")
	flag.StringVar(&conf.DataDir, "datadir", conf.DataDir, "VOC dataset directory")
	flag.StringVar(&conf.OutDir, "outdir", conf.OutDir, "output directory")
	flag.IntVar(&conf.TestBatch, "testbatch", conf.TestBatch, "test batch size")
	flag.IntVar(&conf.TopBottomK, "topk", conf.TopBottomK, "images to export per class")
	flag.IntVar(&conf.RankClasses, "rank", conf.RankClasses, "classes to export, 0 for none")
	flag.Int64Var(&conf.RandSeed, "seed", conf.RandSeed, "random number seed")
	flag.BoolVar(&conf.TenCrop, "tencrop", conf.TenCrop, "average scores over ten crops")
	flag.Parse()

	rng := nnet.SetSeed(conf.RandSeed)
	creator := anyvec32.CurrentCreator()

	// load the fine-tuned network
	modelFile := path.Join(conf.OutDir, conf.Model)
	net, err := nnet.LoadNet(modelFile)
	nnet.CheckErr(err)
	c := nnet.NewClassifierNet(creator, net, 3*conf.CropSize*conf.CropSize, len(voc.Classes))

	// centre crop evaluation transform
	ttype := img.NoTrans
	if conf.Normalise {
		ttype = img.Normalise
	}
	trans := img.NewTransformer(conf.ImageScale, conf.CropSize, ttype, nil)
	if conf.Normalise {
		st, err := img.LoadStats(path.Join(conf.DataDir, "stats.dat"))
		nnet.CheckErr(err)
		trans.SetNorm(st.Mean, st.Std)
	}
	set, err := voc.Load(conf.DataDir, split)
	nnet.CheckErr(err)
	list := nnet.NewSampleList(creator, set, trans)

	res, err := eval.Run(c, list, voc.Classes, conf)
	nnet.CheckErr(err)
	fmt.Println(res.Summary(conf))

	nnet.CheckErr(eval.WriteTailPlot(res.TailCurve(conf), voc.Classes, conf.OutDir))
	fmt.Println("saved tail accuracy plot to", path.Join(conf.OutDir, eval.TailPlotFile))

	if conf.RankClasses > 0 && conf.TopBottomK > 0 {
		classes := eval.RandomClasses(rng, len(voc.Classes), conf.RankClasses)
		nnet.CheckErr(eval.ExportTopBottom(res, conf.OutDir, classes, conf.TopBottomK))
		for _, class := range classes {
			fmt.Println("exported top and bottom images for", voc.Classes[class])
		}
	}
}
