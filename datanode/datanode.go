package datanode

import (
	"log"
	"net/http"

	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cube2222/octodist/config"
	"github.com/cube2222/octodist/objectstore"
	"github.com/cube2222/octodist/table"
)

// Datanode wires the object store, the tables in it and the Flight server together.
type Datanode struct {
	cfg    config.DatanodeConfig
	tables *table.Provider
	server *Server
}

func New(cfg config.DatanodeConfig) (*Datanode, error) {
	store, err := objectstore.New(cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create object store")
	}
	tables := table.NewProvider(store, memory.DefaultAllocator)

	return &Datanode{
		cfg:    cfg,
		tables: tables,
		server: NewServer(NewInstance(tables, cfg.MaterializeLimit)),
	}, nil
}

func (d *Datanode) Tables() *table.Provider {
	return d.tables
}

func (d *Datanode) Server() *Server {
	return d.server
}

// Start binds the Flight server to the configured address.
func (d *Datanode) Start() error {
	return d.server.Listen(d.cfg.Addr)
}

// Serve blocks serving requests until Shutdown is called.
func (d *Datanode) Serve() error {
	return d.server.Serve()
}

func (d *Datanode) Shutdown() {
	d.server.Shutdown()
}

// MetricsServer returns nil if no metrics address is configured.
func (d *Datanode) MetricsServer() *http.Server {
	if d.cfg.MetricsAddr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("serving metrics on %s", d.cfg.MetricsAddr)
	return &http.Server{
		Addr:    d.cfg.MetricsAddr,
		Handler: mux,
	}
}
