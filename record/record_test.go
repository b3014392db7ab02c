package record_test

import (
	"testing"

	"github.com/grailbio/maf/column"
	"github.com/grailbio/maf/record"
	"github.com/grailbio/maf/scheme"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScheme(t *testing.T) (*scheme.Scheme, *column.Registry) {
	r := scheme.NewRegistry(nil)
	require.NoError(t, r.Add(&scheme.Descriptor{
		Version:        "test-1.0",
		AnnotationSpec: "test-1.0",
		Columns: [][]string{
			{"Hugo_Symbol", "NullableString"},
			{"Chromosome", "String"},
			{"Start_Position", "OneBasedInteger"},
			{"End_Position", "OneBasedInteger"},
			{"Strand", "Strand"},
			{"t_depth", "NullableInteger"},
		},
	}))
	s, err := r.Resolve("test-1.0")
	require.NoError(t, err)
	return s, r.Types()
}

func TestDecode(t *testing.T) {
	s, types := testScheme(t)
	rec, err := record.Decode(s, types, []string{"TP53", "chr17", "7675000", "7675001", "+", "120"}, record.Strict, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Line())
	assert.Empty(t, rec.Warnings())

	v, err := rec.Get("Hugo_Symbol")
	require.NoError(t, err)
	assert.Equal(t, "TP53", v.Str())
	v, err = rec.Get("Start_Position")
	require.NoError(t, err)
	assert.Equal(t, int64(7675000), v.Int())

	_, err = rec.Get("Tumor_Sample_Barcode")
	require.Error(t, err)
	assert.IsType(t, &record.UnknownColumnError{}, err)

	assert.Equal(t, []string{"TP53", "chr17", "7675000", "7675001", "+", "120"}, rec.Encode())
}

func TestDecodeTokenCount(t *testing.T) {
	s, types := testScheme(t)
	_, err := record.Decode(s, types, []string{"TP53", "chr17"}, record.Strict, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 6 columns, found 2 tokens")
	// Lenient policy does not forgive a wrong token count.
	_, err = record.Decode(s, types, []string{"TP53", "chr17"}, record.Lenient, 1)
	require.Error(t, err)
}

func TestDecodeStrict(t *testing.T) {
	s, types := testScheme(t)
	_, err := record.Decode(s, types, []string{"TP53", "chr17", "zero", "7675001", "+", ""}, record.Strict, 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 9, column Start_Position")
	assert.IsType(t, &column.ParseError{}, errors.Cause(err))
}

func TestDecodeLenient(t *testing.T) {
	s, types := testScheme(t)
	// Strand "*" is out of vocabulary: the value becomes null and decoding
	// continues with a warning.
	rec, err := record.Decode(s, types, []string{"TP53", "chr17", "7675000", "7675001", "*", "nan"}, record.Lenient, 9)
	require.NoError(t, err)
	require.Len(t, rec.Warnings(), 2)
	assert.Equal(t, "Strand", rec.Warnings()[0].Column)
	assert.Equal(t, int64(9), rec.Warnings()[0].Line)
	assert.Equal(t, "t_depth", rec.Warnings()[1].Column)

	v, err := rec.Get("Strand")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.Equal(t, column.KindEnum, v.Kind())
}

func TestWithValue(t *testing.T) {
	s, types := testScheme(t)
	rec, err := record.Decode(s, types, []string{"TP53", "chr17", "7675000", "7675001", "+", "120"}, record.Strict, 0)
	require.NoError(t, err)
	mod, err := rec.WithValue("Hugo_Symbol", column.String("KRAS"))
	require.NoError(t, err)

	v, _ := mod.Get("Hugo_Symbol")
	assert.Equal(t, "KRAS", v.Str())
	v, _ = rec.Get("Hugo_Symbol")
	assert.Equal(t, "TP53", v.Str(), "the original record must be unchanged")

	_, err = rec.WithValue("nope", column.String("x"))
	require.Error(t, err)
}

func TestEqualHash(t *testing.T) {
	s, types := testScheme(t)
	tokens := []string{"TP53", "chr17", "7675000", "7675001", "+", "120"}
	a, err := record.Decode(s, types, tokens, record.Strict, 1)
	require.NoError(t, err)
	b, err := record.Decode(s, types, tokens, record.Strict, 2)
	require.NoError(t, err)
	assert.True(t, a.Equal(b), "line numbers do not affect equality")
	assert.Equal(t, a.Hash(), b.Hash())

	c, err := a.WithValue("t_depth", column.Int(121))
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}

func TestLocatable(t *testing.T) {
	s, types := testScheme(t)
	rec, err := record.Decode(s, types, []string{"TP53", "chr17", "7675000", "7675001", "+", "120"}, record.Strict, 0)
	require.NoError(t, err)
	span, err := rec.Locatable()
	require.NoError(t, err)
	assert.Equal(t, record.Span{Chromosome: "chr17", Start: 7675000, End: 7675001, Strand: "+"}, span)
	assert.Equal(t, "chr17:7675000-7675001", span.String())
}

func TestNotLocatable(t *testing.T) {
	r := scheme.NewRegistry(nil)
	require.NoError(t, r.Add(&scheme.Descriptor{
		Version:        "bare-1.0",
		AnnotationSpec: "bare-1.0",
		Columns:        [][]string{{"Hugo_Symbol", "String"}},
	}))
	s, err := r.Resolve("bare-1.0")
	require.NoError(t, err)
	rec, err := record.Decode(s, r.Types(), []string{"TP53"}, record.Strict, 0)
	require.NoError(t, err)
	_, err = rec.Locatable()
	require.Error(t, err)
	nle, ok := err.(*record.NotLocatableError)
	require.True(t, ok)
	assert.Equal(t, "Chromosome", nle.Missing)
}

func TestSpanOverlaps(t *testing.T) {
	a := record.Span{Chromosome: "chr1", Start: 10, End: 20}
	assert.True(t, a.Overlaps(record.Span{Chromosome: "chr1", Start: 20, End: 30}), "touching endpoints overlap")
	assert.True(t, a.Overlaps(record.Span{Chromosome: "chr1", Start: 1, End: 10}))
	assert.False(t, a.Overlaps(record.Span{Chromosome: "chr1", Start: 21, End: 30}))
	assert.False(t, a.Overlaps(record.Span{Chromosome: "chr2", Start: 10, End: 20}))
}

func TestSliceIterator(t *testing.T) {
	s, types := testScheme(t)
	rec, err := record.Decode(s, types, []string{"TP53", "chr17", "7675000", "7675001", "+", "120"}, record.Strict, 0)
	require.NoError(t, err)
	it := record.NewSliceIterator([]*record.Record{rec, rec})
	n := 0
	for it.Scan() {
		assert.True(t, rec.Equal(it.Record()))
		n++
	}
	assert.Equal(t, 2, n)
	assert.NoError(t, it.Err())
	assert.NoError(t, it.Close())
}
