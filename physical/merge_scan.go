package physical

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/client"
	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/graph"
	"github.com/cube2222/octodist/meta"
)

// MergeScanExec sends the same serialized sub-plan to every peer owning a table
// and concatenates their results into a single stream.
// Peers are queried one after another, in order.
type MergeScanExec struct {
	table   meta.TableName
	peers   []meta.Peer
	plan    []byte
	schema  *arrow.Schema
	clients client.Pool
}

func NewMergeScanExec(table meta.TableName, peers []meta.Peer, plan []byte, schema *arrow.Schema, clients client.Pool) *MergeScanExec {
	peersCopy := make([]meta.Peer, len(peers))
	copy(peersCopy, peers)
	planCopy := make([]byte, len(plan))
	copy(planCopy, plan)

	return &MergeScanExec{
		table:   table,
		peers:   peersCopy,
		plan:    planCopy,
		schema:  schema,
		clients: clients,
	}
}

func (e *MergeScanExec) Table() meta.TableName {
	return e.table
}

func (e *MergeScanExec) Peers() []meta.Peer {
	return e.peers
}

func (e *MergeScanExec) Schema() *arrow.Schema {
	return e.schema
}

func (e *MergeScanExec) OutputPartitioning() Partitioning {
	return UnknownPartitioning(1)
}

func (e *MergeScanExec) OutputOrdering() []SortExpr {
	return nil
}

func (e *MergeScanExec) Children() []ExecutionPlan {
	return nil
}

func (e *MergeScanExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	return nil, errors.Wrap(ErrPlanningInvariantViolation, "merge scan is a leaf and its children can't be replaced")
}

// Execute returns a lazy stream. No peer is contacted before the first call to Next.
// Every call returns an independent stream which queries all peers again.
func (e *MergeScanExec) Execute(ctx context.Context, partition int) (execution.RecordStream, error) {
	if err := checkSinglePartition("merge scan", partition); err != nil {
		return nil, err
	}
	if _, err := datatypes.FromArrowSchema(e.schema); err != nil {
		return nil, &SchemaConversionError{Err: err}
	}

	return &mergeStream{
		ctx:     ctx,
		table:   e.table,
		peers:   e.peers,
		plan:    e.plan,
		schema:  e.schema,
		clients: e.clients,
	}, nil
}

func (e *MergeScanExec) String() string {
	peers := make([]string, len(e.peers))
	for i := range e.peers {
		peers[i] = e.peers[i].String()
	}
	return fmt.Sprintf("MergeScanExec: peers=[%s]", strings.Join(peers, ", "))
}

func (e *MergeScanExec) Visualize() *graph.Node {
	n := graph.NewNode("MergeScanExec")
	n.AddField("table", e.table.String())
	peers := make([]string, len(e.peers))
	for i := range e.peers {
		peers[i] = e.peers[i].String()
	}
	n.AddField("peers", fmt.Sprintf("[%s]", strings.Join(peers, ", ")))
	return n
}

// mergeStream drains peers one by one.
// The first error terminates the stream, later calls to Next return it again.
type mergeStream struct {
	ctx     context.Context
	table   meta.TableName
	peers   []meta.Peer
	plan    []byte
	schema  *arrow.Schema
	clients client.Pool

	nextPeer int
	current  *peerOutput
	err      error
	closed   bool
}

type peerOutput struct {
	peer    meta.Peer
	batches []arrow.Record
	stream  execution.RecordStream
	cancel  context.CancelFunc
}

func (o *peerOutput) next(ctx context.Context) (arrow.Record, error) {
	if o.stream != nil {
		return o.stream.Next(ctx)
	}
	if len(o.batches) == 0 {
		return nil, execution.ErrEndOfStream
	}
	rec := o.batches[0]
	o.batches = o.batches[1:]
	return rec, nil
}

func (o *peerOutput) close() error {
	defer o.cancel()
	for _, rec := range o.batches {
		rec.Release()
	}
	o.batches = nil
	if o.stream != nil {
		return o.stream.Close()
	}
	return nil
}

func (s *mergeStream) Schema() *arrow.Schema {
	return s.schema
}

func (s *mergeStream) Next(ctx context.Context) (arrow.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.closed {
		return nil, execution.ErrEndOfStream
	}

	for {
		if s.current == nil {
			if s.nextPeer >= len(s.peers) {
				return nil, execution.ErrEndOfStream
			}
			peer := s.peers[s.nextPeer]
			s.nextPeer++

			current, err := s.open(peer)
			if err != nil {
				return nil, s.fail(err)
			}
			s.current = current
		}

		rec, err := s.current.next(ctx)
		if errors.Is(err, execution.ErrEndOfStream) {
			if err := s.current.close(); err != nil {
				log.Printf("couldn't close output stream of %s: %s", s.current.peer, err)
			}
			s.current = nil
			continue
		} else if err != nil {
			mergeScanFailures.WithLabelValues("remote").Inc()
			return nil, s.fail(execution.NewExternalError(&RemoteRequestError{Peer: s.current.peer, Err: err}))
		}

		out, err := s.conform(rec)
		if err != nil {
			return nil, s.fail(err)
		}
		mergeScanBatches.Inc()
		mergeScanRows.Add(float64(out.NumRows()))
		return out, nil
	}
}

func (s *mergeStream) open(peer meta.Peer) (*peerOutput, error) {
	log.Printf("merge scan of %s: querying %s", s.table, peer)
	mergeScanPeersContacted.Inc()

	peerCtx, cancel := context.WithCancel(s.ctx)
	executor, err := s.clients.GetClient(peerCtx, peer)
	if err != nil {
		cancel()
		mergeScanFailures.WithLabelValues("remote").Inc()
		return nil, execution.NewExternalError(&RemoteRequestError{Peer: peer, Err: errors.Wrap(err, "couldn't get client")})
	}

	db := client.NewDatabase(s.table.Catalog, s.table.Schema, executor)
	output, err := db.LogicalPlan(peerCtx, s.plan)
	if err != nil {
		cancel()
		mergeScanFailures.WithLabelValues("remote").Inc()
		return nil, execution.NewExternalError(&RemoteRequestError{Peer: peer, Err: err})
	}
	if output == nil {
		cancel()
		mergeScanFailures.WithLabelValues("remote").Inc()
		return nil, execution.NewExternalError(&RemoteRequestError{Peer: peer, Err: errors.New("empty response")})
	}

	switch output.OutputType {
	case client.OutputTypeRecordBatches:
		return &peerOutput{
			peer:    peer,
			batches: output.RecordBatches.Batches,
			cancel:  cancel,
		}, nil
	case client.OutputTypeStream:
		return &peerOutput{
			peer:   peer,
			stream: output.Stream,
			cancel: cancel,
		}, nil
	default:
		cancel()
		mergeScanFailures.WithLabelValues("output_kind").Inc()
		return nil, execution.NewExternalError(&UnexpectedOutputKindError{
			Expected: "RecordBatches or Stream",
			Got:      output.OutputType.String(),
		})
	}
}

// conform tags the batch with the declared schema.
// Batches with matching column types but e.g. different field names are accepted.
func (s *mergeStream) conform(rec arrow.Record) (arrow.Record, error) {
	if rec.Schema().Equal(s.schema) {
		return rec, nil
	}
	if !datatypes.SameColumnTypes(rec.Schema(), s.schema) {
		mergeScanFailures.WithLabelValues("schema").Inc()
		err := &SchemaMismatchError{
			Peer:     s.current.peer,
			Expected: s.schema.String(),
			Got:      rec.Schema().String(),
		}
		rec.Release()
		return nil, execution.NewExternalError(err)
	}
	out := array.NewRecord(s.schema, rec.Columns(), rec.NumRows())
	rec.Release()
	return out, nil
}

func (s *mergeStream) fail(err error) error {
	s.err = err
	if s.current != nil {
		if closeErr := s.current.close(); closeErr != nil {
			log.Printf("couldn't close output stream of %s: %s", s.current.peer, closeErr)
		}
		s.current = nil
	}
	return err
}

// Close aborts any in-flight peer request. No further peers are contacted.
func (s *mergeStream) Close() error {
	s.closed = true
	if s.current == nil {
		return nil
	}
	err := s.current.close()
	s.current = nil
	if err != nil {
		return errors.Wrap(err, "couldn't close peer output stream")
	}
	return nil
}
