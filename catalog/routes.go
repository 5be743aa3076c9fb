package catalog

import (
	"context"
	"sync"

	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/config"
	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/meta"
)

var ErrTableNotFound = errors.New("table not found")

// TableRoute tells where the data of a table lives.
type TableRoute struct {
	Table  meta.TableName
	Schema datatypes.Schema
	Peers  []meta.Peer
}

func (r *TableRoute) Less(than btree.Item) bool {
	return lessTableName(r.Table, than.(*TableRoute).Table)
}

func lessTableName(a, b meta.TableName) bool {
	if a.Catalog != b.Catalog {
		return a.Catalog < b.Catalog
	}
	if a.Schema != b.Schema {
		return a.Schema < b.Schema
	}
	return a.Table < b.Table
}

// Routes is the frontend's registry of distributed tables, ordered by name.
type Routes struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

func NewRoutes() *Routes {
	return &Routes{
		tree: btree.New(16),
	}
}

// FromConfig builds the routes of all tables configured for the frontend.
func FromConfig(cfg config.FrontendConfig) (*Routes, error) {
	peers := make(map[uint64]meta.Peer, len(cfg.Peers))
	for _, peer := range cfg.Peers {
		peers[peer.ID] = peer
	}

	routes := NewRoutes()
	for _, table := range cfg.Tables {
		route := TableRoute{
			Table:  table.Name(),
			Schema: datatypes.Schema{Fields: table.Fields},
			Peers:  make([]meta.Peer, len(table.Peers)),
		}
		for i, id := range table.Peers {
			peer, ok := peers[id]
			if !ok {
				return nil, errors.Errorf("table %s references unknown peer %d", route.Table, id)
			}
			route.Peers[i] = peer
		}
		if err := routes.Register(route); err != nil {
			return nil, err
		}
	}
	return routes, nil
}

func (r *Routes) Register(route TableRoute) error {
	if len(route.Schema.Fields) == 0 {
		return errors.Errorf("table %s has no fields", route.Table)
	}
	if _, err := datatypes.ToArrowSchema(route.Schema); err != nil {
		return errors.Wrapf(err, "invalid schema of table %s", route.Table)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tree.Has(&TableRoute{Table: route.Table}) {
		return errors.Errorf("table %s is already registered", route.Table)
	}
	r.tree.ReplaceOrInsert(&route)
	return nil
}

func (r *Routes) Route(table meta.TableName) (TableRoute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item := r.tree.Get(&TableRoute{Table: table})
	if item == nil {
		return TableRoute{}, errors.Wrapf(ErrTableNotFound, "%s", table)
	}
	return *item.(*TableRoute), nil
}

func (r *Routes) Peers(ctx context.Context, table meta.TableName) ([]meta.Peer, error) {
	route, err := r.Route(table)
	if err != nil {
		return nil, err
	}
	return route.Peers, nil
}

func (r *Routes) IsDistributed(table meta.TableName) bool {
	_, err := r.Route(table)
	return err == nil
}

// List returns the routes of all tables in the given schema, ordered by table name.
// An empty schema lists the whole catalog, an empty catalog lists everything.
func (r *Routes) List(catalog, schema string) []TableRoute {
	if catalog == "" {
		schema = ""
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []TableRoute
	pivot := &TableRoute{Table: meta.NewTableName(catalog, schema, "")}
	r.tree.AscendGreaterOrEqual(pivot, func(i btree.Item) bool {
		route := i.(*TableRoute)
		if catalog != "" && route.Table.Catalog != catalog {
			return false
		}
		if schema != "" && route.Table.Schema != schema {
			return false
		}
		out = append(out, *route)
		return true
	})
	return out
}
