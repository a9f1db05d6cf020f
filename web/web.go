// Package web has a web based interface to monitor training and browse
// the evaluation results.
package web

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/voclab/voclass/nnet"
)

// Template and main menu definition
type Templates struct {
	*template.Template
	Menu []Link
}

type Link struct {
	Url      string
	Name     string
	Selected bool
}

// Parse templates and initialise the main menu
func NewTemplates() *Templates {
	t := &Templates{Menu: []Link{}}
	t.Template = template.Must(template.New("pages").Parse(pageHTML))
	t.AddMenuItem(Link{Name: "train", Url: "/train"})
	t.AddMenuItem(Link{Name: "results", Url: "/results"})
	return t
}

func (t *Templates) Clone() *Templates {
	return &Templates{
		Template: t.Template,
		Menu:     append([]Link{}, t.Menu...),
	}
}

func (t *Templates) Select(url string) *Templates {
	for i, key := range t.Menu {
		t.Menu[i].Selected = strings.HasPrefix(key.Url, url)
	}
	return t
}

func (t *Templates) AddMenuItem(l Link) *Templates {
	t.Menu = append(t.Menu, l)
	return t
}

// Server routes requests to the training monitor and results pages.
type Server struct {
	net *Network
}

func NewServer(net *Network) *Server {
	return &Server{net: net}
}

// Router builds the route table. Exported images are served directly from
// the output directory.
func (s *Server) Router() *mux.Router {
	t := NewTemplates()
	train := NewTrainPage(t, s.net)
	results := NewResultsPage(t, s.net)
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/train", http.StatusFound)
	})
	r.HandleFunc("/train", train.Base())
	r.HandleFunc("/train/stats", train.Stats())
	r.HandleFunc("/train/{cmd:start|stop}", train.Command())
	r.HandleFunc("/ws", train.Websocket())
	r.HandleFunc("/results", results.Base())
	r.PathPrefix("/files/").Handler(http.StripPrefix("/files/",
		http.FileServer(http.Dir(s.net.Conf.OutDir))))
	return r
}

// ListenAndServe starts the server, wrapping the routes in the auth
// middleware when a web user is configured.
func (s *Server) ListenAndServe(conf nnet.Config) error {
	var handler http.Handler = s.Router()
	if conf.WebUser != "" {
		handler = NewAuthMiddleware(conf.WebUser, conf.WebPass).Middleware(handler)
	}
	log.Println("serving web interface at http://" + conf.WebAddr)
	return http.ListenAndServe(conf.WebAddr, handler)
}

func logError(w http.ResponseWriter, err error) {
	log.Println(err)
	http.Error(w, fmt.Sprint(err), http.StatusInternalServerError)
}
