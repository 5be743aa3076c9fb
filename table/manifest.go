package table

import (
	"path"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cube2222/octodist/datasources"
	"github.com/cube2222/octodist/datasources/csv"
	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/meta"
)

const manifestFileName = "manifest.yml"

// Manifest describes a table stored on a datanode.
// The table lives under <catalog>/<schema>/<table>/ in the object store.
type Manifest struct {
	Format datasources.Format `yaml:"format"`
	Fields []datatypes.Field  `yaml:"fields"`
	CSV    csv.Options        `yaml:"csv,omitempty"`
	// Files are relative to the table directory.
	// All objects under data/ are read if empty.
	Files []string `yaml:"files,omitempty"`
}

func (m *Manifest) Schema() datatypes.Schema {
	return datatypes.NewSchema(m.Fields...)
}

func (m *Manifest) Validate() error {
	if err := m.Format.Validate(); err != nil {
		return err
	}
	if len(m.Fields) == 0 {
		return errors.New("table must have at least one field")
	}
	seen := make(map[string]bool, len(m.Fields))
	for _, field := range m.Fields {
		if field.Name == "" {
			return errors.New("field name must not be empty")
		}
		if seen[field.Name] {
			return errors.Errorf("duplicate field %s", field.Name)
		}
		seen[field.Name] = true
	}
	return nil
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "couldn't decode table manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid table manifest")
	}
	return &m, nil
}

func (m *Manifest) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid table manifest")
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't encode table manifest")
	}
	return data, nil
}

func tableDir(table meta.TableName) string {
	return path.Join(table.Catalog, table.Schema, table.Table)
}

func manifestKey(table meta.TableName) string {
	return path.Join(tableDir(table), manifestFileName)
}

func dataPrefix(table meta.TableName) string {
	return path.Join(tableDir(table), "data") + "/"
}
