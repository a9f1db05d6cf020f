package nnet

import (
	"bytes"
	"os"
	"path"
	"reflect"
	"testing"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec/anyvec32"
)

func TestSaveLoadNet(t *testing.T) {
	file := path.Join(t.TempDir(), "model.net")
	net := anynet.Net{
		anynet.NewFC(anyvec32.CurrentCreator(), 4, 3),
		anynet.Sigmoid,
	}
	if err := SaveNet(file, net); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadNet(file)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(net, loaded) {
		t.Error("loaded network differs from saved network")
	}
}

func TestSaveNetNoOverwrite(t *testing.T) {
	file := path.Join(t.TempDir(), "model.net")
	contents := []byte("precious weights")
	if err := os.WriteFile(file, contents, 0644); err != nil {
		t.Fatal(err)
	}
	net := anynet.Net{anynet.NewFC(anyvec32.CurrentCreator(), 2, 2)}
	if err := SaveNet(file, net); err == nil {
		t.Fatal("expected error saving over existing file")
	}
	after, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(contents, after) {
		t.Error("existing file contents were modified")
	}
}

func TestRunData(t *testing.T) {
	file := path.Join(t.TempDir(), "run.dat")
	d := &RunData{
		Conf:    DefaultConfig(),
		Headers: []string{"loss", "valid error"},
		Stats:   []Stats{{Epoch: 1, Values: []float64{0.5, 0.2}, BestSince: -1}},
		Classes: []string{"cat", "dog"},
	}
	if err := d.Save(file); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadRunData(file)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d, loaded) {
		t.Error("loaded run data differs")
	}
}
