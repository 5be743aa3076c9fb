package client

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/cube2222/octodist/meta"
)

// Pool hands out plan executors for peers.
type Pool interface {
	GetClient(ctx context.Context, peer meta.Peer) (PlanExecutor, error)
}

// DatanodeClients caches one client per peer.
type DatanodeClients struct {
	opts []Option

	mu      sync.Mutex
	clients map[meta.Peer]*Client
	closed  bool
}

func NewDatanodeClients(opts ...Option) *DatanodeClients {
	return &DatanodeClients{
		opts:    opts,
		clients: make(map[meta.Peer]*Client),
	}
}

func (d *DatanodeClients) GetClient(ctx context.Context, peer meta.Peer) (PlanExecutor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.New("datanode client pool is closed")
	}
	if c, ok := d.clients[peer]; ok {
		return c, nil
	}

	c, err := NewClient([]string{peer.Addr}, d.opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't create client for %s", peer)
	}
	d.clients[peer] = c
	return c, nil
}

func (d *DatanodeClients) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	var outErr error
	for peer, c := range d.clients {
		if err := c.Close(); err != nil && outErr == nil {
			outErr = errors.Wrapf(err, "couldn't close client for %s", peer)
		}
	}
	d.clients = make(map[meta.Peer]*Client)
	return outErr
}
