package serialization

import (
	"crypto/rand"
	"encoding/json"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

// Request is the envelope of a sub-plan sent to a datanode.
type Request struct {
	ID      string `json:"id"`
	Catalog string `json:"catalog"`
	Schema  string `json:"schema"`
	Plan    []byte `json:"plan"`
}

func NewRequest(catalog, schema string, plan []byte) Request {
	return Request{
		ID:      ulid.MustNew(ulid.Now(), rand.Reader).String(),
		Catalog: catalog,
		Schema:  schema,
		Plan:    plan,
	}
}

func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't marshal request")
	}
	return data, nil
}

func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, errors.Wrap(err, "couldn't unmarshal request")
	}
	if len(req.Plan) == 0 {
		return Request{}, errors.New("request is missing a plan")
	}
	return req, nil
}
