package main

// maf-view validates a MAF file and prints selected columns.
//
// Usage: maf-view [-columns Hugo_Symbol,Chromosome] input.maf

import (
	"bufio"
	"flag"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/maf/column"
	"github.com/grailbio/maf/encoding/maf"
	"github.com/grailbio/maf/interval"
	"github.com/grailbio/maf/record"
)

var (
	columnsFlag  = flag.String("columns", "", "Comma-separated column names to print; all columns if empty")
	lenientFlag  = flag.Bool("lenient", false, "Collect value-parse failures as warnings instead of failing")
	validateFlag = flag.Bool("validate-only", false, "Validate the file without printing records")
	checkSort    = flag.Bool("check-sort", false, "Verify records follow the sort order declared in the header")
	regionsFlag  = flag.String("regions", "", "BED file; print only records overlapping its intervals")
)

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage: maf-view [flags] <input.maf>

Decodes every record of a MAF file against its declared scheme and prints
the selected columns as tab-delimited text. With -validate-only, nothing is
printed and the exit status reports whether the file decoded cleanly.
`)
		flag.PrintDefaults()
	}
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}
	inPath := args[0]

	policy := record.Strict
	if *lenientFlag {
		policy = record.Lenient
	}
	in, err := maf.Open(inPath, maf.ReaderOpts{Policy: policy, EnforceSortOrder: *checkSort})
	if err != nil {
		log.Panicf("open %v: %v", inPath, err)
	}
	defer in.Close()

	var regions *interval.BEDUnion
	if *regionsFlag != "" {
		if regions, err = interval.Load(*regionsFlag, interval.Opts{}); err != nil {
			log.Panicf("load %v: %v", *regionsFlag, err)
		}
	}

	names := in.Scheme().ColumnNames()
	if *columnsFlag != "" {
		names = strings.Split(*columnsFlag, ",")
		for _, name := range names {
			if in.Scheme().Index(name) < 0 {
				log.Panicf("%v: scheme %v has no column %q", inPath, in.Scheme(), name)
			}
		}
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if !*validateFlag {
		w.WriteString(strings.Join(names, "\t") + "\n")
	}
	nRecs := 0
	for in.Scan() {
		rec := in.Record()
		if regions != nil {
			span, err := rec.Locatable()
			if err != nil {
				log.Panicf("%v: %v", inPath, err)
			}
			if !regions.OverlapsSpan(span) {
				continue
			}
		}
		nRecs++
		if *validateFlag {
			continue
		}
		tokens := make([]string, len(names))
		for i, name := range names {
			v, err := rec.Get(name)
			if err != nil {
				log.Panicf("%v: %v", inPath, err)
			}
			tokens[i] = column.Encode(v)
		}
		w.WriteString(strings.Join(tokens, "\t") + "\n")
	}
	if err := in.Err(); err != nil {
		log.Panicf("%v: %v", inPath, err)
	}
	for _, warning := range in.Warnings() {
		log.Printf("warning: %v", warning)
	}
	if *validateFlag {
		log.Printf("%v: %d records, %d warnings", inPath, nRecs, len(in.Warnings()))
	}
}
