package physical

import (
	"context"
	"fmt"
	"sync"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/client"
	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/meta"
)

var testSchema = arrow.NewSchema(
	[]arrow.Field{
		{Name: "host", Type: arrow.BinaryTypes.String},
		{Name: "value", Type: arrow.PrimitiveTypes.Int64},
	},
	nil,
)

var testTable = meta.NewTableName("greptime", "public", "cpu")

func makeBatch(schema *arrow.Schema, host string, values ...int64) arrow.Record {
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	for _, v := range values {
		b.Field(0).(*array.StringBuilder).Append(host)
		b.Field(1).(*array.Int64Builder).Append(v)
	}
	return b.NewRecord()
}

func values(records []arrow.Record) []int64 {
	var out []int64
	for _, rec := range records {
		out = append(out, rec.Column(1).(*array.Int64).Int64Values()...)
	}
	return out
}

// fakeStream returns its batches, then err (or the end of stream if err is nil).
type fakeStream struct {
	batches []arrow.Record
	err     error
	closed  bool
}

func (s *fakeStream) Schema() *arrow.Schema {
	return testSchema
}

func (s *fakeStream) Next(ctx context.Context) (arrow.Record, error) {
	if len(s.batches) > 0 {
		rec := s.batches[0]
		s.batches = s.batches[1:]
		return rec, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, execution.ErrEndOfStream
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type executedPlan struct {
	peer            meta.Peer
	catalog, schema string
	plan            []byte
}

// fakePool records every peer contact.
type fakePool struct {
	mu         sync.Mutex
	responders map[uint64]func(ctx context.Context) (*client.Output, error)
	getErrs    map[uint64]error
	contacted  []uint64
	executed   []executedPlan
}

func newFakePool() *fakePool {
	return &fakePool{
		responders: make(map[uint64]func(ctx context.Context) (*client.Output, error)),
		getErrs:    make(map[uint64]error),
	}
}

func (p *fakePool) GetClient(ctx context.Context, peer meta.Peer) (client.PlanExecutor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contacted = append(p.contacted, peer.ID)
	if err := p.getErrs[peer.ID]; err != nil {
		return nil, err
	}
	respond, ok := p.responders[peer.ID]
	if !ok {
		return nil, errors.Errorf("unknown peer %s", peer)
	}
	return &recordingExecutor{pool: p, peer: peer, respond: respond}, nil
}

func (p *fakePool) contactedPeers() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint64, len(p.contacted))
	copy(out, p.contacted)
	return out
}

type recordingExecutor struct {
	pool    *fakePool
	peer    meta.Peer
	respond func(ctx context.Context) (*client.Output, error)
}

func (e *recordingExecutor) ExecutePlan(ctx context.Context, catalog, schema string, plan []byte) (*client.Output, error) {
	e.pool.mu.Lock()
	e.pool.executed = append(e.pool.executed, executedPlan{peer: e.peer, catalog: catalog, schema: schema, plan: plan})
	e.pool.mu.Unlock()
	return e.respond(ctx)
}

func recordBatchesResponder(schema *arrow.Schema, host string, batches ...[]int64) func(ctx context.Context) (*client.Output, error) {
	return func(ctx context.Context) (*client.Output, error) {
		records := make([]arrow.Record, len(batches))
		for i := range batches {
			records[i] = makeBatch(schema, host, batches[i]...)
		}
		return client.NewRecordBatchesOutput(schema, records), nil
	}
}

func streamResponder(stream func() *fakeStream) func(ctx context.Context) (*client.Output, error) {
	return func(ctx context.Context) (*client.Output, error) {
		return client.NewStreamOutput(stream()), nil
	}
}

func peers(ids ...uint64) []meta.Peer {
	out := make([]meta.Peer, len(ids))
	for i, id := range ids {
		out[i] = meta.Peer{ID: id, Addr: fmt.Sprintf("127.0.0.1:%d", 4000+id)}
	}
	return out
}

func makeFloatBatch(schema *arrow.Schema) arrow.Record {
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).Append("a")
	b.Field(1).(*array.Float64Builder).Append(1.5)
	return b.NewRecord()
}
