package serialization

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/logical"
	"github.com/cube2222/octodist/meta"
)

func testPlan() logical.Node {
	schema := datatypes.NewSchema(
		datatypes.Field{Name: "host", Type: datatypes.TypeString},
		datatypes.Field{Name: "ts", Type: datatypes.TypeTimestamp},
		datatypes.Field{Name: "usage", Type: datatypes.TypeFloat64, Nullable: true},
	)
	return logical.NewLimit(
		logical.NewProjection(
			logical.NewFilter(
				logical.NewTableScan(meta.NewTableName("greptime", "public", "cpu"), schema, []int{0, 1, 2}),
				logical.NewAnd(
					logical.NewBinaryOp(logical.OpGreaterEqual, logical.NewColumnIndex(1, "ts"), logical.NewTimestamp(1000)),
					logical.NewBinaryOp(logical.OpNotEqual, logical.NewColumnIndex(0, "host"), logical.NewString("h2")),
				),
			),
			[]logical.Expression{
				logical.NewColumnIndex(0, "host"),
				logical.NewBinaryOp(logical.OpMultiply, logical.NewColumnIndex(2, "usage"), logical.NewFloat(100)),
			},
			[]string{"", "percent"},
		),
		20,
	)
}

func TestPlanEncoding(t *testing.T) {
	plan := testPlan()

	data, err := EncodePlan(plan)
	require.NoError(t, err)

	decoded, err := DecodePlan(data)
	require.NoError(t, err)
	assert.True(t, plan.Equal(decoded), "got:\n%s", decoded)
}

func TestDecodePlan_Version(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr error
	}{
		{name: "same", version: "1.0.0"},
		{name: "newer minor", version: "1.3.0"},
		{name: "newer major", version: "2.0.0", wantErr: ErrUnsupportedVersion},
		{name: "garbage", version: "latest", wantErr: ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(encodedPlan{Version: tt.version, Plan: testPlan()})
			require.NoError(t, err)

			_, err = DecodePlan(data)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodePlan_Invalid(t *testing.T) {
	_, err := DecodePlan([]byte(`{"version": "1.0.0", "plan": {"type": 4}}`))
	assert.Error(t, err)

	_, err = DecodePlan([]byte(`not json`))
	assert.Error(t, err)
}

func TestRequestEncoding(t *testing.T) {
	req := NewRequest("greptime", "public", []byte(`{"version":"1.0.0"}`))
	assert.Len(t, req.ID, 26)

	data, err := EncodeRequest(req)
	require.NoError(t, err)
	decoded, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)

	_, err = DecodeRequest([]byte(`{"catalog": "greptime"}`))
	assert.Error(t, err)
}
