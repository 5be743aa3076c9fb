package datanode

import (
	"context"
	"log"
	"net"
	"time"

	"github.com/apache/arrow/go/v13/arrow/flight"
	"github.com/apache/arrow/go/v13/arrow/ipc"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cube2222/octodist/client"
	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/logical"
	"github.com/cube2222/octodist/serialization"
	"github.com/cube2222/octodist/table"
)

// QueryEngine executes the resolved logical plans received from frontends.
type QueryEngine interface {
	Execute(ctx context.Context, catalog, schema string, plan logical.Node) (*client.Output, error)
}

// Server serves plan execution requests over Arrow Flight.
// The ticket of a DoGet call is an encoded request, the output type is sent in the response headers.
type Server struct {
	flight.BaseFlightServer
	engine QueryEngine
	server flight.Server
}

func NewServer(engine QueryEngine) *Server {
	return &Server{
		engine: engine,
	}
}

// Listen binds the server to the given address, use port 0 to pick a free one.
func (s *Server) Listen(addr string) error {
	s.server = flight.NewServerWithMiddleware(nil)
	if err := s.server.Init(addr); err != nil {
		return errors.Wrapf(err, "couldn't listen on %s", addr)
	}
	s.server.RegisterFlightService(s)
	return nil
}

func (s *Server) Addr() net.Addr {
	return s.server.Addr()
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	log.Printf("datanode listening on %s", s.server.Addr())
	return s.server.Serve()
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
}

func (s *Server) DoGet(tkt *flight.Ticket, fs flight.FlightService_DoGetServer) (outErr error) {
	ctx := fs.Context()
	start := time.Now()
	outputType := "none"
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
		if outErr != nil {
			requestsTotal.WithLabelValues(outputType, "error").Inc()
		} else {
			requestsTotal.WithLabelValues(outputType, "ok").Inc()
		}
	}()

	req, err := serialization.DecodeRequest(tkt.GetTicket())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "couldn't decode request: %s", err)
	}
	plan, err := serialization.DecodePlan(req.Plan)
	if err != nil {
		code := codes.InvalidArgument
		if errors.Is(err, serialization.ErrUnsupportedVersion) {
			code = codes.FailedPrecondition
		}
		return status.Errorf(code, "couldn't decode plan of request %s: %s", req.ID, err)
	}
	log.Printf("executing request %s in %s.%s", req.ID, req.Catalog, req.Schema)

	output, err := s.engine.Execute(ctx, req.Catalog, req.Schema, plan)
	if err != nil {
		log.Printf("request %s failed: %s", req.ID, err)
		return status.Error(errorCode(err), err.Error())
	}
	outputType = output.OutputType.String()

	if err := fs.SendHeader(client.OutputHeader(output.OutputType, output.AffectedRows)); err != nil {
		closeOutput(output)
		return errors.Wrap(err, "couldn't send response header")
	}

	switch output.OutputType {
	case client.OutputTypeAffectedRows:
		return nil

	case client.OutputTypeRecordBatches:
		defer closeOutput(output)
		w := flight.NewRecordWriter(fs, ipc.WithSchema(output.RecordBatches.Schema))
		for _, rec := range output.RecordBatches.Batches {
			if err := w.Write(rec); err != nil {
				w.Close()
				return errors.Wrap(err, "couldn't write record batch")
			}
		}
		return w.Close()

	case client.OutputTypeStream:
		defer closeOutput(output)
		w := flight.NewRecordWriter(fs, ipc.WithSchema(output.Stream.Schema()))
		for {
			rec, err := output.Stream.Next(ctx)
			if err == execution.ErrEndOfStream {
				break
			} else if err != nil {
				w.Close()
				log.Printf("request %s failed mid-stream: %s", req.ID, err)
				return status.Error(errorCode(err), err.Error())
			}
			err = w.Write(rec)
			rec.Release()
			if err != nil {
				w.Close()
				return errors.Wrap(err, "couldn't write record batch")
			}
		}
		return w.Close()
	}
	return status.Errorf(codes.Internal, "unknown output type %d", int(output.OutputType))
}

func errorCode(err error) codes.Code {
	switch {
	case errors.Is(err, table.ErrTableNotFound):
		return codes.NotFound
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

func closeOutput(output *client.Output) {
	switch output.OutputType {
	case client.OutputTypeRecordBatches:
		for _, rec := range output.RecordBatches.Batches {
			rec.Release()
		}
	case client.OutputTypeStream:
		if err := output.Stream.Close(); err != nil {
			log.Printf("couldn't close output stream: %s", err)
		}
	}
}
