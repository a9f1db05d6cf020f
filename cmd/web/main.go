package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"

	"github.com/voclab/voclass/img"
	"github.com/voclab/voclass/nnet"
	"github.com/voclab/voclass/voc"
	"github.com/voclab/voclass/web"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Println("usage: web [opts] <model>")
		os.Exit(1)
	}
	model := os.Args[len(os.Args)-1]
	conf, err := nnet.LoadConfig(model + ".conf")
	if err != nil && !os.IsNotExist(err) {
		nnet.CheckErr(err)
	}
	conf.Model = model

	flag.StringVar(&conf.WebAddr, "addr", conf.WebAddr, "web listen address")
	flag.StringVar(&conf.WebUser, "user", conf.WebUser, "basic auth user, blank for no auth")
	flag.StringVar(&conf.WebPass, "pass", conf.WebPass, "basic auth password")
	flag.StringVar(&conf.DataDir, "datadir", conf.DataDir, "VOC dataset directory")
	flag.StringVar(&conf.OutDir, "outdir", conf.OutDir, "output directory")
	flag.StringVar(&conf.Backbone, "backbone", conf.Backbone, "pretrained backbone file")
	flag.Parse()

	rng := nnet.SetSeed(conf.RandSeed)
	creator := anyvec32.CurrentCreator()

	c, err := loadModel(conf, creator)
	nnet.CheckErr(err)
	trainList, data, err := loadData(conf, rng, creator)
	nnet.CheckErr(err)

	net := web.NewNetwork(conf, c, trainList, data)
	server := web.NewServer(net)
	nnet.CheckErr(server.ListenAndServe(conf))
}

// load the fine-tuned model if it has been saved, else start from the backbone
func loadModel(conf nnet.Config, creator anyvec.Creator) (*nnet.Classifier, error) {
	inSize := 3 * conf.CropSize * conf.CropSize
	modelFile := path.Join(conf.OutDir, conf.Model)
	if _, err := os.Stat(modelFile); err == nil {
		net, err := nnet.LoadNet(modelFile)
		if err != nil {
			return nil, err
		}
		log.Println("loaded model from", modelFile)
		return nnet.NewClassifierNet(creator, net, inSize, len(voc.Classes)), nil
	}
	return nnet.NewClassifier(creator, conf.Backbone, inSize, len(voc.Classes))
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
