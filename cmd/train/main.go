package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/rip"

	"github.com/voclab/voclass/img"
	"github.com/voclab/voclass/nnet"
	"github.com/voclab/voclass/voc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: train [opts] <model>")
		os.Exit(1)
	}
	model := os.Args[len(os.Args)-1]
	conf, err := nnet.LoadConfig(model + ".conf")
	if err != nil && !os.IsNotExist(err) {
		nnet.CheckErr(err)
	}
	conf.Model = model

	// override config settings from command line
	flag.Float64Var(&conf.Eta, "eta", conf.Eta, "learning rate")
	flag.Float64Var(&conf.Lambda, "lambda", conf.Lambda, "weight decay parameter")
	flag.Int64Var(&conf.RandSeed, "seed", conf.RandSeed, "random number seed")
	flag.IntVar(&conf.MaxEpoch, "epochs", conf.MaxEpoch, "max epochs")
	flag.IntVar(&conf.MaxSamples, "samples", conf.MaxSamples, "max samples per test set")
	flag.IntVar(&conf.TrainBatch, "batch", conf.TrainBatch, "train batch size")
	flag.IntVar(&conf.TestBatch, "testbatch", conf.TestBatch, "test batch size")
	flag.IntVar(&conf.DebugLevel, "debug", conf.DebugLevel, "debug logging level")
	flag.StringVar(&conf.DataDir, "datadir", conf.DataDir, "VOC dataset directory")
	flag.StringVar(&conf.OutDir, "outdir", conf.OutDir, "output directory")
	flag.StringVar(&conf.Backbone, "backbone", conf.Backbone, "pretrained backbone file")
	flag.BoolVar(&conf.FineTuneAll, "finetune", conf.FineTuneAll, "update all weights, not just the head")
	flag.Parse()
	if conf.DebugLevel >= 1 {
		fmt.Println(conf)
	}

	rng := nnet.SetSeed(conf.RandSeed)
	creator := anyvec32.CurrentCreator()

	// load training and validation data
	trainList, data, err := loadData(conf, rng, creator)
	nnet.CheckErr(err)

	c, err := nnet.NewClassifier(creator, conf.Backbone, 3*conf.CropSize*conf.CropSize, len(voc.Classes))
	nnet.CheckErr(err)

	// fine-tune the classifier, SIGINT stops after the current epoch
	tester := nnet.NewTestLogger(conf, data)
	err = nnet.Train(c, conf, trainList, tester, rip.NewRIP().Chan())
	nnet.CheckErr(err)

	// save the network and the run stats
	nnet.CheckErr(os.MkdirAll(conf.OutDir, 0755))
	modelFile := path.Join(conf.OutDir, conf.Model)
	nnet.CheckErr(nnet.SaveNet(modelFile, c.Net))
	run := &nnet.RunData{Conf: conf, Headers: tester.Headers, Stats: tester.Stats, Classes: voc.Classes}
	nnet.CheckErr(run.Save(modelFile + ".run"))
	fmt.Println("saved model to", modelFile)
}

func loadData(conf nnet.Config, rng *rand.Rand, creator anyvec.Creator) (
	*nnet.SampleList, map[string]*nnet.SampleList, error) {
	trainTrans := img.NewTransformer(conf.ImageScale, conf.CropSize, trainType(conf), rng)
	testTrans := img.NewTransformer(conf.ImageScale, conf.CropSize, testType(conf), nil)
	if conf.Normalise {
		st, err := img.LoadStats(path.Join(conf.DataDir, "stats.dat"))
		if err != nil {
			return nil, nil, err
		}
		trainTrans.SetNorm(st.Mean, st.Std)
		testTrans.SetNorm(st.Mean, st.Std)
	}
	trainSet, err := voc.Load(conf.DataDir, "train")
	if err != nil {
		return nil, nil, err
	}
	validSet, err := voc.Load(conf.DataDir, "val")
	if err != nil {
		return nil, nil, err
	}
	data := map[string]*nnet.SampleList{
		"train": nnet.NewSampleList(creator, trainSet, testTrans),
		"valid": nnet.NewSampleList(creator, validSet, testTrans),
	}
	return nnet.NewSampleList(creator, trainSet, trainTrans), data, nil
}

func trainType(c nnet.Config) img.TransType {
	t := img.NoTrans
	if c.Distort {
		t |= img.TrainTrans
	}
	if c.Normalise {
		t |= img.Normalise
	}
	return t
}

func testType(c nnet.Config) img.TransType {
	if c.Normalise {
		return img.Normalise
	}
	return img.NoTrans
}
