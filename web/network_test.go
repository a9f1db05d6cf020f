package web

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec/anyvec32"

	"github.com/voclab/voclass/img"
	"github.com/voclab/voclass/nnet"
	"github.com/voclab/voclass/voc"
)

func writePNG(t *testing.T, file string) {
	t.Helper()
	m := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, color.RGBA{R: uint8(64 * x), G: uint8(64 * y), A: 255})
		}
	}
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, m); err != nil {
		t.Fatal(err)
	}
}

func testNetwork(t *testing.T) *Network {
	t.Helper()
	dir := t.TempDir()
	set := &voc.Set{Name: "train", Dir: dir}
	for i := 0; i < 2; i++ {
		file := path.Join(dir, fmt.Sprintf("im%d.png", i))
		writePNG(t, file)
		labels := make([]float32, 3)
		labels[i%3] = 1
		set.Samples = append(set.Samples, voc.Sample{Path: file, Labels: labels})
	}
	creator := anyvec32.CurrentCreator()
	list := nnet.NewSampleList(creator, set, img.NewTransformer(4, 4, img.NoTrans, nil))
	c := nnet.NewClassifierNet(creator, anynet.Net{anynet.NewFC(creator, 48, 3)}, 48, 3)
	conf := nnet.DefaultConfig()
	conf.MaxEpoch = 1
	conf.TrainBatch = 2
	conf.TestBatch = 2
	return NewNetwork(conf, c, list, map[string]*nnet.SampleList{"train": list})
}

func waitDone(t *testing.T, n *Network) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if !n.Running() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("training run did not finish")
}

// A stopped run stays marked as running until its goroutine exits, so a
// restart in that window must be refused rather than overlap the old run.
func TestStopRestartGuard(t *testing.T) {
	net := testNetwork(t)
	net.Lock()
	net.running = true
	net.stop = make(chan struct{})
	net.base.Stats = []nnet.Stats{{Epoch: 1}}
	net.Unlock()

	net.Stop()
	if !net.Running() {
		t.Error("run should stay running until the goroutine exits")
	}
	select {
	case <-net.stop:
	default:
		t.Error("stop channel should be closed")
	}
	net.Stop() // repeated stop must not close the channel again

	net.Train()
	net.Lock()
	defer net.Unlock()
	if len(net.base.Stats) != 1 {
		t.Error("restart during shutdown must not reset the previous run")
	}
	if !net.running || !net.stopping {
		t.Error("refused start must leave the shutdown state unchanged")
	}
}

func TestTrainLifecycle(t *testing.T) {
	net := testNetwork(t)
	net.Train()
	waitDone(t, net)
	net.Lock()
	if len(net.base.Stats) == 0 {
		t.Error("no stats recorded by the run")
	}
	if net.stopping {
		t.Error("stopping flag should be cleared when the run exits")
	}
	net.Unlock()

	// a finished run can be restarted from scratch
	net.Train()
	waitDone(t, net)
	net.Lock()
	if len(net.base.Stats) == 0 {
		t.Error("restarted run recorded no stats")
	}
	net.Unlock()
}

func TestWebsocketStoresConn(t *testing.T) {
	net := testNetwork(t)
	p := NewTrainPage(NewTemplates(), net)
	srv := httptest.NewServer(http.HandlerFunc(p.Websocket()))
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	for i := 0; i < 100; i++ {
		net.Lock()
		ok := net.conn != nil
		net.Unlock()
		if ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("websocket connection was not stored")
}
