// Package pipeline implements the driver (C10, spec §4.9/§5): it wires
// C1-C9 into a per-query flow (seed -> strip -> harmonize -> extend ->
// mapping quality), runs a worker pool over independent queries the way
// encoding/bamprovider's sharded-copy benchmarks fan work out across a
// channel of jobs, and reports typed failures per query rather than
// aborting the run.
package pipeline

import (
	"context"
	"sync"

	"github.com/grailbio/base/log"

	"github.com/grailbio/bioalign/align"
	"github.com/grailbio/bioalign/bioalignerr"
	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/dp"
	"github.com/grailbio/bioalign/fmindex"
	"github.com/grailbio/bioalign/harmonize"
	"github.com/grailbio/bioalign/mapq"
	"github.com/grailbio/bioalign/pack"
	"github.com/grailbio/bioalign/seed"
	"github.com/grailbio/bioalign/seeder"
	"github.com/grailbio/bioalign/soc"
)

// Query is one unit of pipeline work: a named, already symbol-encoded
// sequence (spec §6's "Input stream contract", already translated per
// seq.EncodeByte before reaching the core).
type Query struct {
	Name  string
	Bases []byte
}

// Result is what the driver hands back per query: either a ranked list of
// alignments, or a fatal error (spec §7: "a fatally failing query produces
// no alignment record; the driver reports the failing query name and
// kind").
type Result struct {
	Name       string
	Alignments []*align.Alignment
	Err        error
}

// Stats holds the diagnostic counters of spec §5 ("Counters for
// diagnostics... protected by a single mutex, updated once per query"),
// grounded in markduplicates' flat counter-struct idiom.
type Stats struct {
	mu sync.Mutex

	QueriesProcessed                  int64
	QueriesFailed                     int64
	QueriesCancelled                  int64
	StripsTried                       int64
	NumSeedsEliminatedAmbiguityFilter int64
}

func (s *Stats) addQuery(failed, cancelled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.QueriesProcessed++
	if failed {
		s.QueriesFailed++
	}
	if cancelled {
		s.QueriesCancelled++
	}
}

func (s *Stats) addStripsTried(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StripsTried += int64(n)
}

// Snapshot returns a copy of the counters, safe to read concurrently with
// an in-flight Run.
func (s *Stats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		QueriesProcessed:                  s.QueriesProcessed,
		QueriesFailed:                     s.QueriesFailed,
		QueriesCancelled:                  s.QueriesCancelled,
		StripsTried:                       s.StripsTried,
		NumSeedsEliminatedAmbiguityFilter: s.NumSeedsEliminatedAmbiguityFilter,
	}
}

// Driver wires C1-C9 for repeated per-query use. The Pack and FM-index are
// shared read-only across every worker (spec §5); everything else a worker
// touches is allocated fresh per query.
type Driver struct {
	Pack   *pack.Pack
	Index  fmindex.Index
	Config config.Options
	Stats  *Stats
}

// New constructs a Driver over a shared Pack/Index with the given
// configuration and a freshly allocated Stats.
func New(p *pack.Pack, index fmindex.Index, cfg config.Options) *Driver {
	return &Driver{Pack: p, Index: index, Config: cfg, Stats: &Stats{}}
}

// Run processes queries from the input channel with numWorkers concurrent
// goroutines, each running one query end to end through C4-C9 without
// sharing mutable state with its peers (spec §5: "Each worker processes one
// query end-to-end... without sharing mutable state with peers"). The
// returned channel is closed once every query has been processed or ctx is
// cancelled; output order across queries is not guaranteed (spec §5).
func (d *Driver) Run(ctx context.Context, queries <-chan Query, numWorkers int) <-chan Result {
	if numWorkers < 1 {
		numWorkers = 1
	}
	out := make(chan Result, numWorkers)
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for q := range queries {
				select {
				case <-ctx.Done():
					return
				default:
				}
				out <- d.processQuery(ctx, q)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// processQuery runs one query through the strict C4->C5->C6->C7->C8->C9
// order of spec §5, applying the extraction break criteria of spec §4.5
// between strip pops and the cooperative cancellation point of spec §5
// ("checks a cooperative cancel flag after each pop from C6").
func (d *Driver) processQuery(ctx context.Context, q Query) Result {
	defer func() {
		if r := recover(); r != nil {
			log.Error.Printf("pipeline: query %q panicked: %v", q.Name, r)
		}
	}()

	if len(q.Bases) == 0 {
		d.Stats.addQuery(false, false)
		return Result{Name: q.Name}
	}

	seg := seeder.NewBinarySeeder(d.Index).Seed(q.Bases)
	seeds := seeder.ExpandSegments(seg, d.Index, d.Pack, d.Config.AmbiguityCap)
	if len(seeds) == 0 {
		d.Stats.addQuery(false, false)
		return Result{Name: q.Name}
	}

	pq := soc.NewBuilder(d.Config.StripWidth).Build(seeds)

	var (
		alignments []*align.Alignment
		best       int64 = -1
		tries      int
		lookback   []int64
	)
	for {
		select {
		case <-ctx.Done():
			d.Stats.addQuery(false, true)
			return Result{Name: q.Name, Alignments: finish(alignments, d.Config)}
		default:
		}

		entry, err := pq.Pop()
		if err != nil {
			break // heap empty (spec §4.5 break criterion (i))
		}
		tries++
		d.Stats.addStripsTried(1)

		chain, err := harmonize.Harmonize(entry.Seeds(pq.Seeds()), int64(len(q.Bases)), d.Pack.TotalSize(), d.Config)
		if err != nil {
			if bioalignerr.Is(err, bioalignerr.EmptyResult) {
				continue // spec §4.9: recovered, try the next strip
			}
			d.Stats.addQuery(true, false)
			return Result{Name: q.Name, Err: err}
		}

		a, err := dp.ExtendChain(chain, q.Bases, d.Pack, refIDOf(d.Pack, chain), d.Config)
		if err != nil {
			// DP extension has no locally-recoverable error kind (spec
			// §4.9 lists only EmptyResult and RANSAC-degenerate as
			// recovered); any failure here aborts the query.
			d.Stats.addQuery(true, false)
			return Result{Name: q.Name, Err: err}
		}
		alignments = append(alignments, a)

		score := int64(a.Score())
		if score > best {
			best = score
		}
		lookback = append(lookback, score)
		if len(lookback) > d.Config.MaxEqualScoreLookahead {
			lookback = lookback[len(lookback)-d.Config.MaxEqualScoreLookahead:]
		}

		if tries >= d.Config.MaxTries {
			break // spec §4.5 break criterion (ii)
		}
		if tries >= d.Config.MinTries && float64(best-score) > d.Config.ScoreTolerance*float64(best) {
			break // spec §4.5 break criterion (iii)
		}
		if int64(len(q.Bases)) > d.Config.SwitchQueryLen &&
			len(lookback) == d.Config.MaxEqualScoreLookahead &&
			allWithinTolerance(lookback, best, d.Config.ScoreDiffTolerance) {
			break // spec §4.5 break criterion (iv), switched to (iii)'s spirit
		}
	}

	d.Stats.addQuery(false, false)
	return Result{Name: q.Name, Alignments: finish(alignments, d.Config)}
}

// finish runs MappingQuality (C9) over the accumulated alignments of one
// query, ranking and marking supplementaries (spec §4.7).
func finish(alignments []*align.Alignment, cfg config.Options) []*align.Alignment {
	if len(alignments) == 0 {
		return nil
	}
	return mapq.Assign(alignments, cfg)
}

// allWithinTolerance reports whether every score in window sits within
// tol*best of best (spec §4.5 break criterion (iv): "the last
// uiMaxEqualScoreLookahead strips all have scores within
// fScoreDiffTolerance * bestScore").
func allWithinTolerance(window []int64, best int64, tol float64) bool {
	for _, s := range window {
		if float64(best-s) > tol*float64(best) {
			return false
		}
	}
	return true
}

// refIDOf resolves the contig index a chain's first seed lands in, for use
// as an Alignment's RefID. Chains are monotone within a single reference
// range by construction (spec §8), so the first seed's contig is
// authoritative for the whole alignment.
func refIDOf(p *pack.Pack, chain seed.Set) int {
	ci, err := p.ContigOf(chain[0].RBegin())
	if err != nil {
		return 0
	}
	return ci
}
