package main

// maf-sort sorts a MAF file into coordinate order.
//
// Usage: maf-sort input.maf output.maf

import (
	"flag"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/maf/encoding/maf"
	"github.com/grailbio/maf/record"
	"github.com/grailbio/maf/sorter"
	"github.com/grailbio/maf/sortorder"
)

var (
	batchSizeFlag  = flag.Int("batch-size", sorter.DefaultBatchCapacity, "Number of records to hold in memory before spilling to disk")
	tmpDirFlag     = flag.String("tmp-dir", "", "Directory for spill runs; system default if empty")
	lenientFlag    = flag.Bool("lenient", false, "Collect value-parse failures as warnings instead of failing")
	fastaIndexFlag = flag.String("fasta-index", "", "FASTA .fai index defining chromosome order; canonical order if empty")
)

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage: maf-sort [flags] <input.maf> <output.maf>

Reads a MAF file, sorts its records by chromosome, start, and end position,
and writes a sorted MAF. Inputs and outputs with a .gz suffix are
compressed. Input '-' is not supported; spill files are placed in -tmp-dir.
`)
		flag.PrintDefaults()
	}
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inPath, outPath := args[0], args[1]

	policy := record.Strict
	if *lenientFlag {
		policy = record.Lenient
	}
	in, err := maf.Open(inPath, maf.ReaderOpts{Policy: policy})
	if err != nil {
		log.Panicf("open %v: %v", inPath, err)
	}
	defer in.Close()

	order := sortorder.Coordinate()
	hdr := maf.NewHeader()
	if *fastaIndexFlag != "" {
		contigs, err := sortorder.ContigsFromIndex(*fastaIndexFlag)
		if err != nil {
			log.Panicf("read %v: %v", *fastaIndexFlag, err)
		}
		order = order.WithContigs(contigs)
		hdr.SetContigs(contigs)
	} else if contigs := in.Header().Contigs(); contigs != nil {
		order = order.WithContigs(contigs)
		hdr.SetContigs(contigs)
	}
	hdr.Set(maf.SortOrderKey, order.Name())

	out, err := maf.Create(outPath, in.Scheme(), hdr)
	if err != nil {
		log.Panicf("create %v: %v", outPath, err)
	}

	sorted := sorter.Sort(in, order, sorter.Options{
		BatchCapacity: *batchSizeFlag,
		TmpDir:        *tmpDirFlag,
	})
	if err := out.WriteAll(sorted); err != nil {
		log.Panicf("sort %v: %v", inPath, err)
	}
	if err := out.Close(); err != nil {
		log.Panicf("close %v: %v", outPath, err)
	}
	for _, w := range in.Warnings() {
		log.Printf("warning: %v", w)
	}
}
