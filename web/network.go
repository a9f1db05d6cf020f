package web

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voclab/voclass/eval"
	"github.com/voclab/voclass/nnet"
)

// Network couples the classifier with its training data and run state so
// the handlers can start, stop and observe a run.
type Network struct {
	sync.Mutex
	Conf     nnet.Config
	Model    *nnet.Classifier
	Result   *eval.Result
	Epoch    int
	base     *nnet.TestBase
	train    *nnet.SampleList
	conn     *websocket.Conn
	running  bool
	stopping bool
	stop     chan struct{}
}

// Create a new network monitor over the given training set and test sets.
func NewNetwork(conf nnet.Config, model *nnet.Classifier, train *nnet.SampleList,
	data map[string]*nnet.SampleList) *Network {
	return &Network{
		Conf:  conf,
		Model: model,
		train: train,
		base:  nnet.NewTestBase(conf, data),
	}
}

// Test evaluates the epoch, records the stats and notifies any connected
// websocket client so the page refreshes.
func (n *Network) Test(c *nnet.Classifier, epoch int, loss float64, start time.Time) bool {
	n.Lock()
	done := n.base.Test(c, epoch, loss, start)
	n.Epoch = epoch
	s := n.base.Stats[len(n.base.Stats)-1]
	conn := n.conn
	n.Unlock()
	fmt.Println(s.String(n.base.Headers))
	if conn != nil {
		msg := []byte(strconv.Itoa(epoch))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Println("error writing to websocket:", err)
		}
	}
	return done
}

// Train starts a training run in the background. A run which is already in
// progress is left alone.
func (n *Network) Train() {
	n.Lock()
	defer n.Unlock()
	if n.running {
		log.Println("skip start - already running")
		return
	}
	n.base.Reset()
	n.Epoch = 0
	n.stop = make(chan struct{})
	n.running = true
	n.stopping = false
	go n.run()
}

func (n *Network) run() {
	if err := nnet.Train(n.Model, n.Conf, n.train, n, n.stop); err != nil {
		log.Println("train error:", err)
	}
	n.Lock()
	n.running = false
	n.stopping = false
	n.Unlock()
}

// Stop requests the current run to end after the epoch in progress. The
// run stays marked as running until the training goroutine exits, so a
// restart cannot overlap with a run that is still finishing its epoch.
func (n *Network) Stop() {
	n.Lock()
	defer n.Unlock()
	if n.running && !n.stopping {
		close(n.stop)
		n.stopping = true
	}
}

func (n *Network) Running() bool {
	n.Lock()
	defer n.Unlock()
	return n.running
}

// SetResult publishes an evaluation result to the results page.
func (n *Network) SetResult(res *eval.Result) {
	n.Lock()
	n.Result = res
	n.Unlock()
}
