package harmonize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bioalign/bioalignerr"
	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/harmonize"
	"github.com/grailbio/bioalign/seed"
)

func mkSeed(qStart int32, rStart int64, length int32) seed.Seed {
	return seed.Seed{QStart: qStart, RStart: rStart, Length: length, OnForwardStrand: true}
}

func noRANSAC(cfg config.Options) config.Options {
	cfg.RANSACEnabled = false
	return cfg
}

// A clean same-diagonal chain of strictly increasing seed lengths should
// survive harmonization intact, in query order, with no seeds dropped for
// contradiction. (Shadow-interval nesting is sensitive to seed length: two
// equal-length seeds on the same diagonal are mutually nested by
// construction, so this fixture uses increasing lengths to stay clear of
// that degenerate boundary -- see harmonize/shadow.go's contains().)
func TestHarmonizeCleanChainSurvivesMonotone(t *testing.T) {
	cfg := noRANSAC(config.Default())
	cfg.CurrHarmScoreMin = 1
	cfg.CurrHarmScoreMinRel = 0

	seeds := seed.Set{
		mkSeed(0, 1000, 10),
		mkSeed(10, 1010, 20),
		mkSeed(30, 1030, 30),
	}
	out, err := harmonize.Harmonize(seeds, 100, 1_000_000, cfg)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i].QStart, out[i-1].QEnd())
		assert.GreaterOrEqual(t, out[i].RBegin(), out[i-1].REnd())
	}
}

// A seed whose query AND reference interval is fully nested inside another
// on the same diagonal trend is a contradiction and must be dropped by
// Stage A.
func TestHarmonizeDropsNestedContradiction(t *testing.T) {
	cfg := noRANSAC(config.Default())
	cfg.CurrHarmScoreMin = 1
	cfg.CurrHarmScoreMinRel = 0
	cfg.MaxDeltaDistanceInCluster = 1000

	outer := mkSeed(0, 1000, 100)
	nested := mkSeed(10, 1050, 5) // query/ref both inside outer's span but off the outer's diagonal

	out, err := harmonize.Harmonize(seed.Set{outer, nested}, 200, 1_000_000, cfg)
	require.NoError(t, err)
	for _, s := range out {
		assert.NotEqual(t, nested.QStart, s.QStart, "nested contradictory seed should have been removed")
	}
}

// Running Harmonize again on its own (already monotone, non-contradictory)
// output should be a no-op: nothing further gets dropped.
func TestHarmonizeIdempotent(t *testing.T) {
	cfg := noRANSAC(config.Default())
	cfg.CurrHarmScoreMin = 1
	cfg.CurrHarmScoreMinRel = 0

	seeds := seed.Set{
		mkSeed(0, 1000, 10),
		mkSeed(10, 1010, 20),
		mkSeed(30, 1030, 30),
	}
	first, err := harmonize.Harmonize(seeds, 100, 1_000_000, cfg)
	require.NoError(t, err)

	second, err := harmonize.Harmonize(first, 100, 1_000_000, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// RANSAC with fewer than two seeds is degenerate and must not filter
// anything out; harmonization should still proceed through the remaining
// stages rather than erroring.
func TestHarmonizeRANSACDegenerateSingleSeed(t *testing.T) {
	cfg := config.Default()
	cfg.CurrHarmScoreMin = 1
	cfg.CurrHarmScoreMinRel = 0

	out, err := harmonize.Harmonize(seed.Set{mkSeed(0, 1000, 20)}, 20, 1_000_000, cfg)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

// A strip whose surviving score never reaches the minimum floor must report
// bioalignerr.EmptyResult (spec §4.9: "Empty strip after harmonization:
// recovered").
func TestHarmonizeBelowScoreFloorIsEmptyResult(t *testing.T) {
	cfg := noRANSAC(config.Default())
	cfg.CurrHarmScoreMin = 10_000
	cfg.CurrHarmScoreMinRel = 0

	_, err := harmonize.Harmonize(seed.Set{mkSeed(0, 1000, 5)}, 5, 1_000_000, cfg)
	require.Error(t, err)
	assert.True(t, bioalignerr.Is(err, bioalignerr.EmptyResult))
}

// An empty input strip must also report EmptyResult rather than panicking
// or silently returning an empty, nil-error result.
func TestHarmonizeEmptyStripIsEmptyResult(t *testing.T) {
	cfg := config.Default()
	_, err := harmonize.Harmonize(seed.Set{}, 100, 1_000_000, cfg)
	require.Error(t, err)
	assert.True(t, bioalignerr.Is(err, bioalignerr.EmptyResult))
}

// Stage D must split seeds into separate clusters when the diagonal jump
// between consecutive seeds exceeds MaxDeltaDistanceInCluster, keeping only
// the better-scoring cluster when combined coverage stays below the
// minimal-query-coverage threshold. Seed lengths are chosen large, and
// their difference large relative to the diagonal jump, so that neither
// Stage A's shadow nesting nor Stage C's gap-tolerance truncation eliminate
// a seed before Stage D ever sees both clusters.
func TestHarmonizeStageDKeepsBestCluster(t *testing.T) {
	cfg := noRANSAC(config.Default())
	cfg.CurrHarmScoreMin = 1
	cfg.CurrHarmScoreMinRel = 0
	cfg.MaxDeltaDistanceInCluster = 5
	cfg.MinimalQueryCoverage = 0.99

	seeds := seed.Set{
		mkSeed(0, 1000, 1000),
		mkSeed(1010, 2020, 1020),
	}
	out, err := harmonize.Harmonize(seeds, 3000, 1_000_000, cfg)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int32(1010), out[0].QStart)
}
