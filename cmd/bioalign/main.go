package main

// bioalign seeds, harmonizes, and extends every read in a FASTQ file
// against a FASTA reference, streaming SAM records to stdout.
//
// Usage: bioalign [OPTIONS] reference.fa reads.fastq

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/grailbio/bioalign/align"
	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/fmindex"
	"github.com/grailbio/bioalign/pack"
	"github.com/grailbio/bioalign/pipeline"
	"github.com/grailbio/bioalign/seq"
)

var (
	stripWidth      = flag.Int64("strip-width", config.Default().StripWidth, "Strip-of-consideration diagonal width")
	matchScore      = flag.Int("match-score", int(config.Default().MatchScore), "Score added per matched base")
	mismatchPenalty = flag.Int("mismatch-penalty", int(config.Default().MismatchPenalty), "Score subtracted per mismatched base")
	gapOpen         = flag.Int("gap-open", int(config.Default().GapOpen), "Score subtracted to open a gap")
	gapExtend       = flag.Int("gap-extend", int(config.Default().GapExtend), "Score subtracted per base of an open gap")
	bandwidth       = flag.Int("bandwidth", config.Default().BandwidthDPExtension, "DP extension bandwidth")
	ambiguityCap    = flag.Int("ambiguity-cap", config.Default().AmbiguityCap, "Maximum SA-interval size resolved per seed segment")
	reportNBest     = flag.Int("report-n-best", config.Default().ReportNBest, "Number of top-scoring alignments to report per read")
	parallelism     = flag.Int("parallelism", 0, "Number of concurrent read-alignment workers; 0 = runtime.NumCPU()")
)

func bioalignUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] reference.fa reads.fastq\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Other options:\n")
	flag.PrintDefaults()
}

// loadPack streams every record of a FASTA reference into a packed
// reference (spec §3/§6).
func loadPack(ctx context.Context, path string) *pack.Pack {
	f, err := file.Open(ctx, path)
	if err != nil {
		log.Fatalf("open %v: %v", path, err)
	}
	defer f.Close(ctx)

	r, err := seq.OpenMaybeGzip(bufio.NewReader(f.Reader(ctx)))
	if err != nil {
		log.Fatalf("open %v: %v", path, err)
	}
	fr := seq.NewFastaReader(r)
	b := pack.NewBuilder()
	for {
		rec, err := fr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("read %v: %v", path, err)
		}
		if err := b.AddContig(rec.Name, "", rec.Seq.Bases); err != nil {
			log.Fatalf("%v: contig %v: %v", path, rec.Name, err)
		}
	}
	return b.Build()
}

// buildHeader builds a sam.Header carrying one sam.Reference per contig, in the
// same order pack.Builder assigned RefIDs.
func buildHeader(p *pack.Pack) *sam.Header {
	h, err := sam.NewHeader(nil, nil)
	if err != nil {
		log.Fatalf("build SAM header: %v", err)
	}
	for _, c := range p.Contigs() {
		ref, err := sam.NewReference(c.Name, "", "", int(c.Length), nil, nil)
		if err != nil {
			log.Fatalf("build reference %v: %v", c.Name, err)
		}
		if err := h.AddReference(ref); err != nil {
			log.Fatalf("add reference %v: %v", c.Name, err)
		}
	}
	return h
}

// writeSAMHeader emits the minimal @HD/@SQ header lines samtools expects,
// one @SQ per contig in RefID order.
func writeSAMHeader(w *bufio.Writer, h *sam.Header) {
	fmt.Fprintf(w, "@HD\tVN:1.6\tSO:unsorted\n")
	for _, ref := range h.Refs() {
		fmt.Fprintf(w, "@SQ\tSN:%s\tLN:%d\n", ref.Name(), ref.Len())
	}
}

// writeSAMRecord formats one alignment (or unmapped placeholder) as a
// single tab-separated SAM line (mandatory columns only; no aux fields).
func writeSAMRecord(w *bufio.Writer, r *sam.Record) {
	refName, pos := "*", 0
	if r.Ref != nil {
		refName, pos = r.Ref.Name(), r.Pos+1
	}
	cigar := "*"
	if len(r.Cigar) > 0 {
		cigar = r.Cigar.String()
	}
	fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%s\t*\t0\t0\t*\t*\n",
		r.Name, r.Flags, refName, pos, r.MapQ, cigar)
}

// runQueries feeds every FASTQ record of path into the driver and writes
// each result out as SAM.
func runQueries(ctx context.Context, path string, d *pipeline.Driver, h *sam.Header, w *bufio.Writer, numWorkers int) {
	f, err := file.Open(ctx, path)
	if err != nil {
		log.Fatalf("open %v: %v", path, err)
	}
	defer f.Close(ctx)

	r, err := seq.OpenMaybeGzip(bufio.NewReader(f.Reader(ctx)))
	if err != nil {
		log.Fatalf("open %v: %v", path, err)
	}
	fr := seq.NewFastqReader(r)

	queries := make(chan pipeline.Query, numWorkers)
	go func() {
		defer close(queries)
		for {
			rec, err := fr.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				log.Fatalf("read %v: %v", path, err)
			}
			select {
			case queries <- pipeline.Query{Name: rec.Name, Bases: rec.Seq.Bases}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for res := range d.Run(ctx, queries, numWorkers) {
		if res.Err != nil {
			log.Error.Printf("bioalign: query %q failed: %v", res.Name, res.Err)
			continue
		}
		if len(res.Alignments) == 0 {
			writeSAMRecord(w, unmappedRecord(res.Name))
			continue
		}
		for _, rec := range toSAMRecords(res.Name, res.Alignments, h) {
			writeSAMRecord(w, rec)
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("flush SAM output: %v", err)
	}
}

func unmappedRecord(name string) *sam.Record {
	return &sam.Record{Name: name, Ref: nil, Pos: -1, MapQ: 0, Cigar: nil, Flags: sam.Unmapped}
}

func toSAMRecords(name string, alignments []*align.Alignment, h *sam.Header) []*sam.Record {
	out := make([]*sam.Record, 0, len(alignments))
	for _, a := range alignments {
		flags := sam.Flags(0)
		if !a.OnForward {
			flags |= sam.Reverse
		}
		if a.Supplementary() {
			flags |= sam.Supplementary
		}
		out = append(out, &sam.Record{
			Name:  name,
			Ref:   h.Refs()[a.RefID],
			Pos:   int(a.RefStart),
			MapQ:  mapQToByte(a.MapQ()),
			Cigar: a.Ops(),
			Flags: flags,
		})
	}
	return out
}

func mapQToByte(q float64) byte {
	if q != q { // NaN: no confidence assigned
		return 0
	}
	scaled := q * 60
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 60 {
		scaled = 60
	}
	return byte(scaled)
}

func main() {
	flag.Usage = bioalignUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		bioalignUsage()
		os.Exit(1)
	}
	refPath, readsPath := flag.Arg(0), flag.Arg(1)

	cfg := config.Default()
	cfg.StripWidth = *stripWidth
	cfg.MatchScore = int32(*matchScore)
	cfg.MismatchPenalty = int32(*mismatchPenalty)
	cfg.GapOpen = int32(*gapOpen)
	cfg.GapExtend = int32(*gapExtend)
	cfg.BandwidthDPExtension = *bandwidth
	cfg.AmbiguityCap = *ambiguityCap
	cfg.ReportNBest = *reportNBest

	numWorkers := *parallelism
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx := vcontext.Background()
	p := loadPack(ctx, refPath)
	idx := fmindex.NewNaiveFromPack(p)
	h := buildHeader(p)

	w := bufio.NewWriter(os.Stdout)
	writeSAMHeader(w, h)

	d := pipeline.New(p, idx, cfg)
	runQueries(ctx, readsPath, d, h, w, numWorkers)

	snap := d.Stats.Snapshot()
	log.Printf("bioalign: %d queries processed, %d failed, %d cancelled", snap.QueriesProcessed, snap.QueriesFailed, snap.QueriesCancelled)
}
