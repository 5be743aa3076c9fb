package table

import (
	"context"
	"log"
	"path"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datasources"
	"github.com/cube2222/octodist/datasources/csv"
	"github.com/cube2222/octodist/datasources/json"
	"github.com/cube2222/octodist/datasources/parquet"
	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/meta"
	"github.com/cube2222/octodist/objectstore"
)

var ErrTableNotFound = errors.New("table not found")

// Provider serves the tables kept in an object store.
type Provider struct {
	store     objectstore.Store
	allocator memory.Allocator
}

func NewProvider(store objectstore.Store, allocator memory.Allocator) *Provider {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	return &Provider{
		store:     store,
		allocator: allocator,
	}
}

func (p *Provider) Manifest(ctx context.Context, table meta.TableName) (*Manifest, error) {
	data, err := p.store.Read(ctx, manifestKey(table))
	if errors.Is(err, objectstore.ErrNotFound) {
		return nil, errors.Wrapf(ErrTableNotFound, "%s", table)
	} else if err != nil {
		return nil, errors.Wrapf(err, "couldn't read manifest of table %s", table)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, errors.Wrapf(err, "table %s", table)
	}
	return manifest, nil
}

// Create writes the manifest of a new or existing table.
func (p *Provider) Create(ctx context.Context, table meta.TableName, manifest *Manifest) error {
	data, err := manifest.Encode()
	if err != nil {
		return err
	}
	if err := p.store.Write(ctx, manifestKey(table), data); err != nil {
		return errors.Wrapf(err, "couldn't write manifest of table %s", table)
	}
	return nil
}

// PutFile stores a data file of the table under data/.
func (p *Provider) PutFile(ctx context.Context, table meta.TableName, name string, data []byte) error {
	if err := p.store.Write(ctx, dataPrefix(table)+name, data); err != nil {
		return errors.Wrapf(err, "couldn't write data file %s of table %s", name, table)
	}
	return nil
}

// List returns the names of all tables in the store, sorted.
func (p *Provider) List(ctx context.Context) ([]meta.TableName, error) {
	keys, err := p.store.List(ctx, "")
	if err != nil {
		return nil, errors.Wrap(err, "couldn't list tables")
	}
	var out []meta.TableName
	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) != 4 || parts[3] != manifestFileName {
			continue
		}
		out = append(out, meta.NewTableName(parts[0], parts[1], parts[2]))
	}
	return out, nil
}

// Scan reads the table's files one after another.
// Fields of the requested schema are matched to the table's by name and must have the same types.
func (p *Provider) Scan(ctx context.Context, table meta.TableName, schema datatypes.Schema, projection []int) (execution.RecordStream, error) {
	manifest, err := p.Manifest(ctx, table)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(manifest.Schema(), schema); err != nil {
		return nil, errors.Wrapf(err, "table %s", table)
	}

	files, err := p.files(ctx, table, manifest)
	if err != nil {
		return nil, err
	}

	fileSchema, err := datatypes.ToArrowSchema(manifest.Schema())
	if err != nil {
		return nil, err
	}

	sources := make([]execution.StreamOpener, len(files))
	for i := range files {
		key := files[i]
		sources[i] = func(ctx context.Context) (execution.RecordStream, error) {
			return p.openFile(ctx, manifest, key, fileSchema)
		}
	}
	stream := execution.NewConcatStream(fileSchema, sources...)

	output := schema
	if projection != nil {
		if output, err = schema.Project(projection); err != nil {
			return nil, err
		}
	}
	if sameFields(manifest.Schema(), output) {
		return stream, nil
	}

	outputSchema, err := datatypes.ToArrowSchema(output)
	if err != nil {
		return nil, err
	}
	exprs := make([]execution.Expression, len(output.Fields))
	for i, field := range output.Fields {
		exprs[i] = execution.NewRecordVariable(manifest.Schema().FieldIndex(field.Name))
	}
	return execution.NewProjectionStream(stream, outputSchema, exprs), nil
}

func (p *Provider) files(ctx context.Context, table meta.TableName, manifest *Manifest) ([]string, error) {
	if len(manifest.Files) > 0 {
		out := make([]string, len(manifest.Files))
		for i, file := range manifest.Files {
			out[i] = path.Join(tableDir(table), file)
		}
		return out, nil
	}
	keys, err := p.store.List(ctx, dataPrefix(table))
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't list data files of table %s", table)
	}
	return keys, nil
}

func (p *Provider) openFile(ctx context.Context, manifest *Manifest, key string, schema *arrow.Schema) (execution.RecordStream, error) {
	data, err := p.store.Read(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read data file %s", key)
	}
	log.Printf("reading %s file %s (%d bytes)", manifest.Format, key, len(data))

	switch manifest.Format {
	case datasources.FormatCSV:
		return csv.Open(p.allocator, data, schema, manifest.CSV)
	case datasources.FormatJSON:
		return json.Open(p.allocator, data, schema)
	case datasources.FormatParquet:
		return parquet.Open(ctx, p.allocator, data, schema)
	}
	return nil, errors.Errorf("unknown file format: '%s'", manifest.Format)
}

func checkSchema(table, requested datatypes.Schema) error {
	for _, field := range requested.Fields {
		index := table.FieldIndex(field.Name)
		if index == -1 {
			return errors.Errorf("no such field: %s", field.Name)
		}
		if t := table.Fields[index].Type; t != field.Type {
			return errors.Errorf("field %s has type %s, requested %s", field.Name, t, field.Type)
		}
	}
	return nil
}

func sameFields(a, b datatypes.Schema) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i] != b.Fields[i] {
			return false
		}
	}
	return true
}
