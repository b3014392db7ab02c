/*Package maf reads and writes Mutation Annotation Format files: a block of
  '#'-prefixed pragma lines, one tab-delimited line naming the effective
  columns in scheme order, and one tab-delimited data line per record.
  Null is the empty token; multi-valued columns delimit elements with ';'.
*/
package maf

import (
	"fmt"
	"strings"
)

// Pragma keys understood by this package.  Unknown pragmas are preserved
// but not interpreted.
const (
	// VersionKey names the scheme format version pragma.
	VersionKey = "version"
	// AnnotationSpecKey names the scheme id pragma.
	AnnotationSpecKey = "annotation.spec"
	// SortOrderKey names the declared sort order pragma.
	SortOrderKey = "sort.order"
	// ContigsKey names the comma-separated contig list pragma.
	ContigsKey = "contigs"
)

// HeaderLinePrefix starts every pragma line.
const HeaderLinePrefix = "#"

// HeaderRecord is one pragma line: a key and a value separated by the
// first space.
type HeaderRecord struct {
	Key   string
	Value string
}

// Header is the ordered pragma block of a MAF file.
type Header struct {
	records []HeaderRecord
	index   map[string]int
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{index: make(map[string]int)}
}

// Set adds or replaces a pragma, preserving first-insertion order.
func (h *Header) Set(key, value string) {
	if i, ok := h.index[key]; ok {
		h.records[i].Value = value
		return
	}
	h.index[key] = len(h.records)
	h.records = append(h.records, HeaderRecord{Key: key, Value: value})
}

// Get returns a pragma value.
func (h *Header) Get(key string) (string, bool) {
	i, ok := h.index[key]
	if !ok {
		return "", false
	}
	return h.records[i].Value, true
}

// Records returns the pragmas in order.  The caller must not mutate the
// returned slice.
func (h *Header) Records() []HeaderRecord { return h.records }

// Version returns the version pragma, or "".
func (h *Header) Version() string {
	v, _ := h.Get(VersionKey)
	return v
}

// AnnotationSpec returns the annotation.spec pragma, falling back to the
// version pragma for basic schemes, which omit it.
func (h *Header) AnnotationSpec() string {
	if v, ok := h.Get(AnnotationSpecKey); ok {
		return v
	}
	return h.Version()
}

// SortOrderName returns the sort.order pragma, or "Unsorted".
func (h *Header) SortOrderName() string {
	if v, ok := h.Get(SortOrderKey); ok {
		return v
	}
	return "Unsorted"
}

// Contigs returns the contigs pragma as a list, or nil.
func (h *Header) Contigs() []string {
	v, ok := h.Get(ContigsKey)
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// SetContigs sets the contigs pragma.
func (h *Header) SetContigs(contigs []string) {
	h.Set(ContigsKey, strings.Join(contigs, ","))
}

// parsePragma parses one '#key value' line.
func (h *Header) parsePragma(line string, lineno int64) error {
	if !strings.HasPrefix(line, HeaderLinePrefix) {
		return fmt.Errorf("maf: line %d: pragma line missing %q prefix", lineno, HeaderLinePrefix)
	}
	body := line[len(HeaderLinePrefix):]
	sep := strings.IndexByte(body, ' ')
	if sep < 0 {
		return fmt.Errorf("maf: line %d: pragma line missing space separator", lineno)
	}
	key, value := body[:sep], body[sep+1:]
	if key == "" {
		return fmt.Errorf("maf: line %d: pragma has an empty key", lineno)
	}
	if value == "" {
		return fmt.Errorf("maf: line %d: pragma %q has an empty value", lineno, key)
	}
	if _, ok := h.index[key]; ok {
		return fmt.Errorf("maf: line %d: duplicate pragma %q", lineno, key)
	}
	h.Set(key, value)
	return nil
}

// encode renders the pragma block, one line per record, without a trailing
// newline.
func (h *Header) encode() string {
	lines := make([]string, len(h.records))
	for i, rec := range h.records {
		lines[i] = HeaderLinePrefix + rec.Key + " " + rec.Value
	}
	return strings.Join(lines, "\n")
}
