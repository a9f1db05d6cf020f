package nnet

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// SaveNet writes the network weights to file as a single blob. An
// existing checkpoint is never overwritten.
func SaveNet(file string, net anynet.Net) error {
	if _, err := os.Stat(file); err == nil {
		return fmt.Errorf("checkpoint %s already exists, refusing to overwrite", file)
	}
	fmt.Println("saving checkpoint to", file)
	if err := serializer.SaveAny(file, net); err != nil {
		return essentials.AddCtx("save checkpoint", err)
	}
	return nil
}

// LoadNet restores network weights saved with SaveNet.
func LoadNet(file string) (anynet.Net, error) {
	var net anynet.Net
	if err := serializer.LoadAny(file, &net); err != nil {
		return nil, essentials.AddCtx("load checkpoint", err)
	}
	return net, nil
}

// RunData is the persisted outcome of a training run, consumed by the web
// monitor and the evaluation tool.
type RunData struct {
	Conf    Config
	Headers []string
	Stats   []Stats
	Classes []string
}

// Save encodes the run in gob format, replacing any previous version.
func (d *RunData) Save(file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Println("saving run data to", file)
	return gob.NewEncoder(f).Encode(d)
}

// LoadRunData decodes a run saved with Save.
func LoadRunData(file string) (*RunData, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d := new(RunData)
	if err := gob.NewDecoder(f).Decode(d); err != nil {
		return nil, fmt.Errorf("error decoding run data: %s", err)
	}
	return d, nil
}
