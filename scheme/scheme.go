package scheme

import (
	"encoding/json"
	"fmt"
	"io"
)

// Column is one effective column: its name, the type tag used to look up
// its codec, and a free-form description.
type Column struct {
	Name string
	Type string
	Desc string
}

// Descriptor is the on-disk shape of a scheme, before resolution.  The
// JSON form matches the GDC scheme files: "columns" holds [name, type] or
// [name, type, description] tuples, "extends" and "filtered" may hold the
// literal "None".
type Descriptor struct {
	Version        string     `json:"version"`
	AnnotationSpec string     `json:"annotation-spec"`
	Extends        string     `json:"extends"`
	Columns        [][]string `json:"columns"`
	Filtered       []string   `json:"filtered"`
}

// ParseDescriptor reads one JSON descriptor.
func ParseDescriptor(r io.Reader) (*Descriptor, error) {
	var raw struct {
		Version        string          `json:"version"`
		AnnotationSpec string          `json:"annotation-spec"`
		Extends        string          `json:"extends"`
		Columns        [][]string      `json:"columns"`
		Filtered       json.RawMessage `json:"filtered"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	d := &Descriptor{
		Version:        raw.Version,
		AnnotationSpec: raw.AnnotationSpec,
		Columns:        raw.Columns,
	}
	if raw.Extends != "" && raw.Extends != "None" {
		d.Extends = raw.Extends
	}
	// "filtered" is either absent, the literal string "None", or a list of
	// column names.
	if len(raw.Filtered) > 0 {
		var s string
		if err := json.Unmarshal(raw.Filtered, &s); err == nil {
			if s != "None" {
				return nil, fmt.Errorf("scheme %s: bad filtered value %q", d.AnnotationSpec, s)
			}
		} else if err := json.Unmarshal(raw.Filtered, &d.Filtered); err != nil {
			return nil, fmt.Errorf("scheme %s: bad filtered list: %v", d.AnnotationSpec, err)
		}
	}
	return d, nil
}

// columns converts the raw tuples, validating their arity.
func (d *Descriptor) columns() ([]Column, error) {
	cols := make([]Column, 0, len(d.Columns))
	for _, tuple := range d.Columns {
		if len(tuple) < 2 || len(tuple) > 3 {
			return nil, &ResolutionError{
				ID:  d.AnnotationSpec,
				Msg: fmt.Sprintf("column tuple %v did not have two or three elements", tuple),
			}
		}
		col := Column{Name: tuple[0], Type: tuple[1]}
		if len(tuple) == 3 {
			col.Desc = tuple[2]
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// Scheme is a resolved, immutable effective column list.  Two Schemes
// resolved from the same Registry for the same annotation spec are the same
// pointer, so scheme identity is pointer identity.
type Scheme struct {
	version        string
	annotationSpec string
	columns        []Column
	index          map[string]int
}

func newScheme(version, annotationSpec string, columns []Column) *Scheme {
	s := &Scheme{
		version:        version,
		annotationSpec: annotationSpec,
		columns:        columns,
		index:          make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		s.index[c.Name] = i
	}
	return s
}

// Version returns the scheme format version string.
func (s *Scheme) Version() string { return s.version }

// AnnotationSpec returns the scheme's unique id.
func (s *Scheme) AnnotationSpec() string { return s.annotationSpec }

// Len returns the number of effective columns.
func (s *Scheme) Len() int { return len(s.columns) }

// Columns returns the effective columns in order.  The caller must not
// mutate the returned slice.
func (s *Scheme) Columns() []Column { return s.columns }

// Column returns the definition of the named column.
func (s *Scheme) Column(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Index returns the position of the named column, or -1.
func (s *Scheme) Index(name string) int {
	i, ok := s.index[name]
	if !ok {
		return -1
	}
	return i
}

// ColumnNames returns the effective column names in order.
func (s *Scheme) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

func (s *Scheme) String() string { return s.annotationSpec }
