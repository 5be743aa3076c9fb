package client

import (
	"context"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/flight"
	"github.com/apache/arrow/go/v13/arrow/ipc"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/serialization"
)

// PlanExecutor executes serialized logical plans remotely.
type PlanExecutor interface {
	ExecutePlan(ctx context.Context, catalog, schema string, plan []byte) (*Output, error)
}

type LoadBalancer interface {
	Pick(addrs []string) string
}

type RandomLoadBalancer struct{}

func (RandomLoadBalancer) Pick(addrs []string) string {
	return addrs[rand.Intn(len(addrs))]
}

type Option func(c *Client)

func WithLoadBalancer(balancer LoadBalancer) Option {
	return func(c *Client) {
		c.balancer = balancer
	}
}

func WithAllocator(allocator memory.Allocator) Option {
	return func(c *Client) {
		c.allocator = allocator
	}
}

// Client talks to a single datanode, which may be reachable under multiple addresses.
type Client struct {
	addrs     []string
	conns     map[string]flight.Client
	balancer  LoadBalancer
	allocator memory.Allocator
}

func NewClient(addrs []string, opts ...Option) (*Client, error) {
	if len(addrs) == 0 {
		return nil, errors.New("no datanode addresses given")
	}
	c := &Client{
		addrs:     addrs,
		conns:     make(map[string]flight.Client, len(addrs)),
		balancer:  RandomLoadBalancer{},
		allocator: memory.DefaultAllocator,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, addr := range addrs {
		conn, err := flight.NewClientWithMiddleware(addr, nil, nil, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			c.Close()
			return nil, errors.Wrapf(err, "couldn't create flight client for %s", addr)
		}
		c.conns[addr] = conn
	}
	return c, nil
}

func (c *Client) ExecutePlan(ctx context.Context, catalog, schema string, plan []byte) (_ *Output, outErr error) {
	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
		if outErr != nil {
			requestsTotal.WithLabelValues("error").Inc()
		}
	}()

	addr := c.balancer.Pick(c.addrs)
	req := serialization.NewRequest(catalog, schema, plan)
	ticket, err := serialization.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	log.Printf("sending request %s to datanode %s", req.ID, addr)

	callCtx, cancel := context.WithCancel(ctx)
	stream, err := c.conns[addr].DoGet(callCtx, &flight.Ticket{Ticket: ticket})
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "couldn't call datanode %s", addr)
	}
	md, err := stream.Header()
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "couldn't read response header from datanode %s", addr)
	}
	outputType, affectedRows, ok, err := parseOutputHeader(md)
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "invalid response header from datanode %s", addr)
	}
	if !ok {
		// The datanode failed before producing any output, the status carries the reason.
		_, err := stream.Recv()
		cancel()
		if err == nil || err == io.EOF {
			err = errors.New("response is missing the output type header")
		}
		return nil, errors.Wrapf(err, "couldn't execute plan on datanode %s", addr)
	}
	requestsTotal.WithLabelValues(outputType.headerValue()).Inc()

	switch outputType {
	case OutputTypeAffectedRows:
		cancel()
		return NewAffectedRowsOutput(affectedRows), nil

	case OutputTypeRecordBatches:
		defer cancel()
		reader, err := flight.NewRecordReader(stream, ipc.WithAllocator(c.allocator))
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't read response from datanode %s", addr)
		}
		defer reader.Release()

		var batches []arrow.Record
		for reader.Next() {
			rec := reader.Record()
			rec.Retain()
			batches = append(batches, rec)
		}
		if err := reader.Err(); err != nil {
			return nil, errors.Wrapf(err, "couldn't read record batches from datanode %s", addr)
		}
		return NewRecordBatchesOutput(reader.Schema(), batches), nil

	case OutputTypeStream:
		reader, err := flight.NewRecordReader(stream, ipc.WithAllocator(c.allocator))
		if err != nil {
			cancel()
			return nil, errors.Wrapf(err, "couldn't read response from datanode %s", addr)
		}
		return NewStreamOutput(&flightStream{
			addr:   addr,
			reader: reader,
			cancel: cancel,
		}), nil
	}
	panic("unexhaustive output type match")
}

func (c *Client) Close() error {
	var outErr error
	for addr, conn := range c.conns {
		if err := conn.Close(); err != nil && outErr == nil {
			outErr = errors.Wrapf(err, "couldn't close connection to %s", addr)
		}
	}
	return outErr
}

// flightStream lazily reads record batches from a datanode.
type flightStream struct {
	addr   string
	reader *flight.Reader
	cancel context.CancelFunc
	err    error
}

func (s *flightStream) Schema() *arrow.Schema {
	return s.reader.Schema()
}

func (s *flightStream) Next(ctx context.Context) (arrow.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.reader.Next() {
		if err := s.reader.Err(); err != nil {
			s.err = errors.Wrapf(err, "couldn't read record batch from datanode %s", s.addr)
		} else {
			s.err = execution.ErrEndOfStream
		}
		return nil, s.err
	}
	rec := s.reader.Record()
	rec.Retain()
	return rec, nil
}

func (s *flightStream) Close() error {
	s.cancel()
	s.reader.Release()
	return nil
}
