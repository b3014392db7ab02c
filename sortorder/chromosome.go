package sortorder

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/pkg/errors"
)

// Ranks of the conventional non-numeric chromosomes.  Numeric chromosomes
// rank as their number, so these must start above any plausible autosome
// count.
const (
	rankX       = 1000
	rankY       = 1001
	rankMT      = 1002
	rankUnknown = 1 << 30
)

// CanonicalChromosomeRank maps a chromosome name to its position in the
// canonical genomic ordering: numeric chromosomes ascending, then X, Y,
// and the mitochondrial chromosome (M or MT).  A "chr" prefix is accepted
// case-insensitively.  Unknown names all share the same large rank and
// known=false; callers break those ties lexically.
func CanonicalChromosomeRank(name string) (rank int, known bool) {
	s := name
	if len(s) >= 3 && strings.EqualFold(s[:3], "chr") {
		s = s[3:]
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 && n < rankX {
		return n, true
	}
	switch strings.ToUpper(s) {
	case "X":
		return rankX, true
	case "Y":
		return rankY, true
	case "M", "MT":
		return rankMT, true
	}
	return rankUnknown, false
}

// CompareChromosomes orders two chromosome names canonically, breaking
// ties among unknown names lexically.
func CompareChromosomes(a, b string) int {
	ra, ka := CanonicalChromosomeRank(a)
	rb, kb := CanonicalChromosomeRank(b)
	if c := compareInt64(int64(ra), int64(rb)); c != 0 {
		return c
	}
	if !ka && !kb {
		return strings.Compare(a, b)
	}
	return 0
}

// ContigsFromIndex reads the contig names (first column) from a FASTA
// .fai index, preserving file order.  The result is suitable for
// Order.WithContigs.
func ContigsFromIndex(path string) ([]string, error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "sortorder: open FASTA index %s", path)
	}
	defer in.Close(ctx) // nolint: errcheck
	var contigs []string
	scanner := bufio.NewScanner(in.Reader(ctx))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if i := strings.IndexByte(line, '\t'); i >= 0 {
			line = line[:i]
		}
		contigs = append(contigs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "sortorder: read FASTA index %s", path)
	}
	return contigs, nil
}
