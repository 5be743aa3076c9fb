package logical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/meta"
)

var cpuSchema = datatypes.NewSchema(
	datatypes.Field{Name: "host", Type: datatypes.TypeString},
	datatypes.Field{Name: "ts", Type: datatypes.TypeTimestamp},
	datatypes.Field{Name: "usage", Type: datatypes.TypeFloat64, Nullable: true},
)

var cpuTable = meta.NewTableName("greptime", "public", "cpu")

func cpuFilter() Node {
	return NewFilter(
		NewTableScan(cpuTable, cpuSchema, nil),
		NewBinaryOp(OpGreater, NewColumnIndex(2, "usage"), NewFloat(0.5)),
	)
}

func TestMergeScan_WrapUnwrap(t *testing.T) {
	input := cpuFilter()
	node := NewMergeScan(input, true)

	mergeScan, ok := UnwrapMergeScan(node)
	require.True(t, ok)
	assert.True(t, mergeScan.IsPlaceholder)
	assert.True(t, mergeScan.Input.Equal(input))

	_, ok = UnwrapMergeScan(input)
	assert.False(t, ok)
}

func TestMergeScan_ForwardsInput(t *testing.T) {
	input := cpuFilter()
	node := NewMergeScan(input, false)

	children := node.Children()
	require.Len(t, children, 1)
	assert.True(t, children[0].Equal(input))
	assert.Equal(t, input.Schema(), node.Schema())
	assert.Equal(t, input.Expressions(), node.Expressions())
	assert.Len(t, node.Expressions(), 1)
}

func TestMergeScan_WithNewChildren(t *testing.T) {
	for _, placeholder := range []bool{true, false} {
		node := NewMergeScan(NewTableScan(cpuTable, cpuSchema, nil), placeholder)
		replacement := cpuFilter()

		out, err := node.WithNewChildren([]Node{replacement})
		require.NoError(t, err)
		assert.Equal(t, placeholder, out.MergeScan.IsPlaceholder)
		assert.True(t, out.MergeScan.Input.Equal(replacement))

		_, err = node.WithNewChildren(nil)
		assert.Error(t, err)
		_, err = node.WithNewChildren([]Node{replacement, replacement})
		assert.Error(t, err)
	}
}

func TestNode_EqualAndHash(t *testing.T) {
	a := NewMergeScan(cpuFilter(), true)
	b := NewMergeScan(cpuFilter(), true)
	c := NewMergeScan(cpuFilter(), false)
	d := NewMergeScan(NewTableScan(cpuTable, cpuSchema, nil), true)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))

	hashA, err := a.Hash()
	require.NoError(t, err)
	hashB, err := b.Hash()
	require.NoError(t, err)
	hashC, err := c.Hash()
	require.NoError(t, err)
	hashD, err := d.Hash()
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
	assert.NotEqual(t, hashA, hashC)
	assert.NotEqual(t, hashA, hashD)
}

func TestNode_EqualAndHashTerminate(t *testing.T) {
	deepPlan := func(placeholder bool) Node {
		return NewLimit(
			NewMergeScan(
				NewProjection(
					NewMergeScan(cpuFilter(), placeholder),
					[]Expression{NewColumnIndex(0, "host")},
					[]string{"h"},
				),
				placeholder,
			),
			5,
		)
	}

	type result struct {
		equal, different bool
		hashes           [2]uint64
		err              error
	}
	done := make(chan result, 1)
	go func() {
		var res result
		res.equal = deepPlan(true).Equal(deepPlan(true))
		res.different = deepPlan(true).Equal(deepPlan(false))
		for i, placeholder := range []bool{true, false} {
			hash, err := deepPlan(placeholder).Hash()
			if err != nil {
				res.err = err
			}
			res.hashes[i] = hash
		}
		done <- res
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.True(t, res.equal)
		assert.False(t, res.different)
		assert.NotEqual(t, res.hashes[0], res.hashes[1])
	case <-time.After(5 * time.Second):
		t.Fatal("comparing and hashing plans didn't finish")
	}
}

func TestNode_String(t *testing.T) {
	node := NewLimit(NewMergeScan(cpuFilter(), false), 10)
	expected := `Limit [limit=10]
  source: MergeScan [is_placeholder=false]
    input: Filter [predicate=(usage > 0.5)]
      source: TableScan [table=greptime.public.cpu]`
	assert.Equal(t, expected, node.String())
}

func TestNode_Schema(t *testing.T) {
	projected := NewTableScan(cpuTable, cpuSchema, []int{2, 0})
	assert.Equal(t, []string{"usage", "host"}, fieldNames(projected.Schema()))

	projection := NewProjection(
		NewTableScan(cpuTable, cpuSchema, nil),
		[]Expression{
			NewColumnIndex(0, "host"),
			NewBinaryOp(OpMultiply, NewColumnIndex(2, "usage"), NewFloat(100)),
		},
		[]string{"", "percent"},
	)
	schema := projection.Schema()
	assert.Equal(t, []string{"host", "percent"}, fieldNames(schema))
	assert.Equal(t, datatypes.TypeFloat64, schema.Fields[1].Type)
	assert.True(t, schema.Fields[1].Nullable)
}

func TestNode_Validate(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		wantErr bool
	}{
		{
			name: "valid",
			node: NewLimit(NewMergeScan(cpuFilter(), false), 5),
		},
		{
			name:    "column out of range",
			node:    NewFilter(NewTableScan(cpuTable, cpuSchema, nil), NewBinaryOp(OpEqual, NewColumnIndex(7, "x"), NewInt(1))),
			wantErr: true,
		},
		{
			name:    "non-boolean predicate",
			node:    NewFilter(NewTableScan(cpuTable, cpuSchema, nil), NewColumnIndex(2, "usage")),
			wantErr: true,
		},
		{
			name:    "mismatched comparison",
			node:    NewFilter(NewTableScan(cpuTable, cpuSchema, nil), NewBinaryOp(OpEqual, NewColumnIndex(0, "host"), NewInt(1))),
			wantErr: true,
		},
		{
			name:    "negative limit",
			node:    NewLimit(NewTableScan(cpuTable, cpuSchema, nil), -1),
			wantErr: true,
		},
		{
			name:    "missing payload",
			node:    Node{NodeType: NodeTypeMergeScan},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.node.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpression_SplitByAnd(t *testing.T) {
	a := NewBinaryOp(OpGreater, NewColumnIndex(2, "usage"), NewFloat(0.5))
	b := NewBinaryOp(OpEqual, NewColumnIndex(0, "host"), NewString("h1"))
	c := NewBinaryOp(OpLess, NewColumnIndex(1, "ts"), NewTimestamp(1000))

	assert.Equal(t, []Expression{a, b, c}, NewAnd(a, b, c).SplitByAnd())
	assert.Equal(t, []Expression{a}, a.SplitByAnd())
	assert.Equal(t, `((usage > 0.5) AND (host = "h1"))`, NewAnd(a, b).String())
}

func fieldNames(schema datatypes.Schema) []string {
	out := make([]string, len(schema.Fields))
	for i := range schema.Fields {
		out[i] = schema.Fields[i].Name
	}
	return out
}
