package scheme

import (
	"fmt"
	"strings"
	"sync"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/maf/column"
	"github.com/pkg/errors"
)

// ResolutionError reports a malformed, cyclic, or conflicting scheme
// definition.  It is not recoverable without fixing the descriptors.
type ResolutionError struct {
	ID  string // annotation spec of the scheme being resolved
	Msg string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("scheme %s: %s", e.ID, e.Msg)
}

// Registry holds scheme descriptors and caches their resolutions.  It is
// the only process-wide shared state in the library: the cache is populated
// lazily, entries are immutable once stored, and all methods are safe for
// concurrent use.  Pass the Registry to consumers explicitly rather than
// relying on a package-level instance.
type Registry struct {
	types *column.Registry

	mu          sync.Mutex
	descriptors map[string]*Descriptor
	resolved    map[string]*Scheme
}

// NewRegistry returns a registry holding the builtin GDC descriptors,
// using the given codec registry to validate column types at resolution
// time.  If types is nil a fresh codec registry is used.
func NewRegistry(types *column.Registry) *Registry {
	if types == nil {
		types = column.NewRegistry()
	}
	r := &Registry{
		types:       types,
		descriptors: make(map[string]*Descriptor),
		resolved:    make(map[string]*Scheme),
	}
	for _, d := range builtinDescriptors() {
		if err := r.Add(d); err != nil {
			panic(err) // builtin descriptors are compiled in; must be valid
		}
	}
	return r
}

// Types returns the codec registry schemes are validated against.
func (r *Registry) Types() *column.Registry { return r.types }

// Add registers a descriptor.  The annotation spec must be unique.
func (r *Registry) Add(d *Descriptor) error {
	if d.AnnotationSpec == "" {
		return &ResolutionError{ID: "?", Msg: "descriptor has no annotation-spec"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.descriptors[d.AnnotationSpec]; ok {
		return &ResolutionError{ID: d.AnnotationSpec, Msg: "duplicate annotation-spec"}
	}
	r.descriptors[d.AnnotationSpec] = d
	return nil
}

// AddFile loads one JSON descriptor from a path.
func (r *Registry) AddFile(path string) error {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "scheme: open %s", path)
	}
	defer f.Close(ctx) // nolint: errcheck
	d, err := ParseDescriptor(f.Reader(ctx))
	if err != nil {
		return errors.Wrapf(err, "scheme: parse %s", path)
	}
	return r.Add(d)
}

// AnnotationSpecs returns the ids of all registered descriptors.
func (r *Registry) AnnotationSpecs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.descriptors))
	for id := range r.descriptors {
		ids = append(ids, id)
	}
	return ids
}

// Resolve returns the effective scheme for the given annotation spec,
// following the extends chain.  The first successful resolution of an id is
// cached for the life of the Registry.
func (r *Registry) Resolve(annotationSpec string) (*Scheme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(annotationSpec)
}

func (r *Registry) resolveLocked(annotationSpec string) (*Scheme, error) {
	if s, ok := r.resolved[annotationSpec]; ok {
		return s, nil
	}
	chain, err := r.chain(annotationSpec)
	if err != nil {
		return nil, err
	}
	// Fold the chain root-first onto the effective column list.
	var effective []Column
	for _, d := range chain {
		own, err := d.columns()
		if err != nil {
			return nil, err
		}
		if effective, err = fold(d, effective, own); err != nil {
			return nil, err
		}
	}
	// Validate every declared type tag against the codec registry.  This is
	// the only place an unknown type surfaces; per-record decoding can then
	// assume every tag resolves.
	for _, c := range effective {
		if _, err := r.types.Lookup(c.Type); err != nil {
			return nil, errors.Wrapf(err, "scheme %s: column %s", annotationSpec, c.Name)
		}
	}
	d := chain[len(chain)-1]
	s := newScheme(d.Version, d.AnnotationSpec, effective)
	r.resolved[annotationSpec] = s
	return s, nil
}

// chain collects the extends chain for an id, root first, detecting missing
// parents and cycles.
func (r *Registry) chain(annotationSpec string) ([]*Descriptor, error) {
	var rev []*Descriptor
	seen := make(map[string]bool)
	id := annotationSpec
	for {
		d, ok := r.descriptors[id]
		if !ok {
			if id == annotationSpec {
				return nil, &ResolutionError{ID: annotationSpec, Msg: "no such scheme"}
			}
			return nil, &ResolutionError{ID: annotationSpec, Msg: fmt.Sprintf("missing parent scheme %q", id)}
		}
		if seen[id] {
			return nil, &ResolutionError{ID: annotationSpec, Msg: fmt.Sprintf("cyclic extends chain through %q", id)}
		}
		seen[id] = true
		rev = append(rev, d)
		if d.Extends == "" {
			break
		}
		id = d.Extends
	}
	chain := make([]*Descriptor, len(rev))
	for i, d := range rev {
		chain[len(rev)-1-i] = d
	}
	return chain, nil
}

// fold applies one descriptor's own columns and filtered set to the
// inherited effective list.  Overrides replace in place, new columns
// append, and filtering runs after overrides so a scheme that both
// redefines and filters the same name is rejected.
func fold(d *Descriptor, inherited, own []Column) ([]Column, error) {
	index := make(map[string]int, len(inherited))
	out := make([]Column, len(inherited))
	copy(out, inherited)
	for i, c := range out {
		index[c.Name] = i
	}
	declared := make(map[string]bool, len(own))
	for _, c := range own {
		if declared[c.Name] {
			return nil, &ResolutionError{ID: d.AnnotationSpec,
				Msg: fmt.Sprintf("duplicate column %q", c.Name)}
		}
		declared[c.Name] = true
		if i, ok := index[c.Name]; ok {
			out[i] = c
		} else {
			index[c.Name] = len(out)
			out = append(out, c)
		}
	}
	if len(d.Filtered) == 0 {
		return out, nil
	}
	var missing []string
	drop := make(map[string]bool, len(d.Filtered))
	for _, name := range d.Filtered {
		if declared[name] {
			return nil, &ResolutionError{ID: d.AnnotationSpec,
				Msg: fmt.Sprintf("column %q is both declared and filtered", name)}
		}
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
			continue
		}
		drop[name] = true
	}
	if len(missing) > 0 {
		return nil, &ResolutionError{ID: d.AnnotationSpec,
			Msg: "filtered columns not found in the scheme it extends: " + strings.Join(missing, ", ")}
	}
	kept := out[:0:0]
	for _, c := range out {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
