package meta

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultCatalog = "greptime"
	DefaultSchema  = "public"
)

// TableName fully qualifies a table.
type TableName struct {
	Catalog string `json:"catalog" yaml:"catalog"`
	Schema  string `json:"schema" yaml:"schema"`
	Table   string `json:"table" yaml:"table"`
}

func NewTableName(catalog, schema, table string) TableName {
	return TableName{
		Catalog: catalog,
		Schema:  schema,
		Table:   table,
	}
}

// ParseTableName accepts "table", "schema.table" and "catalog.schema.table".
// Missing parts are filled in with the defaults.
func ParseTableName(name string) (TableName, error) {
	parts := strings.Split(name, ".")
	for _, part := range parts {
		if part == "" {
			return TableName{}, errors.Errorf("invalid table name: '%s'", name)
		}
	}
	switch len(parts) {
	case 1:
		return NewTableName(DefaultCatalog, DefaultSchema, parts[0]), nil
	case 2:
		return NewTableName(DefaultCatalog, parts[0], parts[1]), nil
	case 3:
		return NewTableName(parts[0], parts[1], parts[2]), nil
	}
	return TableName{}, errors.Errorf("invalid table name: '%s'", name)
}

func (t TableName) String() string {
	return fmt.Sprintf("%s.%s.%s", t.Catalog, t.Schema, t.Table)
}

// Peer identifies a datanode which can execute sub-plans.
type Peer struct {
	ID   uint64 `json:"id" yaml:"id"`
	Addr string `json:"addr" yaml:"addr"`
}

func (p Peer) String() string {
	return fmt.Sprintf("peer-%d(%s)", p.ID, p.Addr)
}
