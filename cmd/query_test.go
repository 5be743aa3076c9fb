package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octodist/catalog"
	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/logical"
	"github.com/cube2222/octodist/meta"
	"github.com/cube2222/octodist/physical"
)

func TestBuildQuery(t *testing.T) {
	route := catalog.TableRoute{
		Table: meta.NewTableName("greptime", "public", "cpu"),
		Schema: datatypes.NewSchema(
			datatypes.Field{Name: "host", Type: datatypes.TypeString},
			datatypes.Field{Name: "usage", Type: datatypes.TypeFloat64},
		),
	}
	defer func() {
		where, columns, limit = "", nil, -1
	}()

	where, columns, limit = "usage > 0.5", []string{"host"}, 10
	plan, err := buildQuery(route)
	require.NoError(t, err)

	scan := logical.NewTableScan(route.Table, route.Schema, nil)
	want := logical.NewLimit(
		logical.NewProjection(
			logical.NewFilter(scan, logical.NewBinaryOp(logical.OpGreater, logical.NewColumnIndex(1, "usage"), logical.NewFloat(0.5))),
			[]logical.Expression{logical.NewColumnIndex(0, "host")},
			[]string{""},
		),
		10,
	)
	assert.True(t, want.Equal(plan), "want:\n%s\ngot:\n%s", want, plan)

	where, columns, limit = "", []string{"region"}, -1
	_, err = buildQuery(route)
	assert.EqualError(t, err, "unknown column: region")
}

func TestGraphSource(t *testing.T) {
	schema := datatypes.NewSchema(
		datatypes.Field{Name: "host", Type: datatypes.TypeString},
		datatypes.Field{Name: "usage", Type: datatypes.TypeFloat64},
	)
	arrowSchema, err := datatypes.ToArrowSchema(schema)
	require.NoError(t, err)
	predicate, err := logical.ParsePredicate(schema, "usage > 0.5")
	require.NoError(t, err)

	peers := []meta.Peer{{ID: 1, Addr: "127.0.0.1:4001"}}
	mergeScan := physical.NewMergeScanExec(meta.NewTableName("greptime", "public", "cpu"), peers, []byte("{}"), arrowSchema, nil)
	filter, err := physical.NewFilterExec(mergeScan, predicate)
	require.NoError(t, err)

	source, err := graphSource(filter)
	require.NoError(t, err)
	assert.Contains(t, source, "digraph")
	assert.Contains(t, source, "MergeScanExec_0")
	assert.Contains(t, source, `(usage \> 0.5)`)
}
