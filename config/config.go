// Package config defines the immutable configuration value threaded through
// every stage constructor (Design Notes §9: "Global mutable parameter
// structs are accessed via a selected-preset singleton. Port as an explicit
// immutable configuration value threaded through stage constructors."),
// replacing the teacher's per-package DefaultOpts + package-level flag.Var
// pattern (see pileup/snp.DefaultOpts and cmd/bio-pileup/main.go) with a
// single struct built once per run.
package config

// GapModel selects the gap-penalty estimation strategy of spec §4.5 Stage C.
// Per spec §9's Open Question, the optimistic/pessimistic choice couples
// both scoring and seed-retention behavior; this single enum preserves that
// coupling rather than exposing the two effects separately.
type GapModel int

const (
	// GapModelOptimistic uses a tight lower bound on gap cost, based on the
	// shorter of the ref/query gap.
	GapModelOptimistic GapModel = iota
	// GapModelPessimistic charges the longer of the ref/query gap as a run of
	// mismatches; no share of that gap is scored as matches.
	GapModelPessimistic
)

// Options is the immutable configuration threaded through C1-C10. Field
// names mirror the symbols used in spec.md so a reader can cross-reference
// directly.
type Options struct {
	// Strip-of-Consideration (C5).
	StripWidth int64 // W

	// Extraction break criteria (C7 caller loop, spec §4.5).
	MaxTries              int     // uiMaxTries
	MinTries              int     // uiMinTries
	ScoreTolerance        float64 // fScoreTolerace
	MaxEqualScoreLookahead int    // uiMaxEqualScoreLookahead
	ScoreDiffTolerance    float64 // fScoreDiffTolerance
	SwitchQueryLen        int64   // uiSwitchQLen

	// Harmonization (C7).
	GapModel                    GapModel
	MaxDeltaDistanceInCluster   int64   // uiMaxDeltaDistanceInCLuster
	MinimalQueryCoverage        float64 // fMinimalQueryCoverage
	CurrHarmScoreMin            int64   // uiCurrHarmScoreMin
	CurrHarmScoreMinRel         float64 // fCurrHarmScoreMinRel
	RANSACEnabled               bool
	RANSACIterations            int     // fixed at 32 per spec §9 Open Question
	RANSACMaxDeltaDist          float64 // dMaxDeltaDist
	RANSACMinDeltaDist          float64 // uiMinDeltaDist

	// DP extension (C8).
	MatchScore            int32 // m
	MismatchPenalty       int32 // x
	GapOpen               int32 // o
	GapExtend             int32 // e
	GapOpen2              int32 // o2, second affine piece; 0 disables it
	GapExtend2            int32 // e2
	MinBandwidthGapFilling int   // iMinBandwidthGapFilling
	BandwidthDPExtension  int     // iBandwidthDPExtension
	Padding               int64   // uiPadding
	ZDrop                 int32   // uiZDrop

	// Seeding (C4).
	AmbiguityCap int // max SA-interval size enumerated per segment

	// Mapping quality (C9).
	ReportNBest              int     // uiReportNBest
	MaxOverlapSupplementary  float64 // dMaxOverlapSupplementary
	MaxSupplementaryPerPrim  int     // uiMaxSupplementaryPerPrim
}

// Default returns a reasonable, fully-populated Options value. Callers
// should copy and override individual fields rather than mutate the result
// of a shared instance, since Options is meant to be treated as immutable
// once constructed.
func Default() Options {
	return Options{
		StripWidth: 64,

		MaxTries:               50,
		MinTries:               2,
		ScoreTolerance:         0.1,
		MaxEqualScoreLookahead: 3,
		ScoreDiffTolerance:     0.02,
		SwitchQueryLen:         800,

		GapModel:                  GapModelOptimistic,
		MaxDeltaDistanceInCluster: 16,
		MinimalQueryCoverage:      0.5,
		CurrHarmScoreMin:          18,
		CurrHarmScoreMinRel:       0.002,
		RANSACEnabled:             true,
		RANSACIterations:          32,
		RANSACMaxDeltaDist:        0.001,
		RANSACMinDeltaDist:        16,

		MatchScore:             1,
		MismatchPenalty:        4,
		GapOpen:                6,
		GapExtend:              1,
		GapOpen2:               0,
		GapExtend2:             0,
		MinBandwidthGapFilling: 16,
		BandwidthDPExtension:   100,
		Padding:                100,
		ZDrop:                  100,

		AmbiguityCap: 500,

		ReportNBest:             3,
		MaxOverlapSupplementary: 0.1,
		MaxSupplementaryPerPrim: 2,
	}
}
