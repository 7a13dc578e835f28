package harmonize

import (
	"github.com/grailbio/bioalign/bioalignerr"
	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/seed"
)

// Harmonize runs the full Harmonization pipeline of spec §4.5 over the
// seeds of one popped strip, returning a monotone, chainable seed set or a
// bioalignerr.EmptyResult error if the strip yields nothing (spec §4.9:
// "Empty strip after harmonization: recovered (skipped, next strip
// tried)").
func Harmonize(strip seed.Set, queryLen, refLen int64, cfg config.Options) (seed.Set, error) {
	survivors := stageA(strip, queryLen, refLen)
	if len(survivors) == 0 {
		return nil, bioalignerr.New(bioalignerr.EmptyResult, "harmonize: stage A eliminated every seed")
	}

	if cfg.RANSACEnabled {
		survivors = stageB(survivors, cfg.RANSACIterations, cfg.RANSACMaxDeltaDist, cfg.RANSACMinDeltaDist, queryLen)
		if len(survivors) == 0 {
			return nil, bioalignerr.New(bioalignerr.EmptyResult, "harmonize: stage B eliminated every seed")
		}
	}

	survivors.SortByQuery()
	survivors = stageC(survivors, cfg)
	if len(survivors) == 0 {
		return nil, bioalignerr.New(bioalignerr.EmptyResult, "harmonize: stage C eliminated every seed")
	}

	survivors = stageD(survivors, cfg, queryLen)
	if len(survivors) == 0 {
		return nil, bioalignerr.New(bioalignerr.EmptyResult, "harmonize: stage D eliminated every seed")
	}

	floor := cfg.CurrHarmScoreMin
	if rel := int64(cfg.CurrHarmScoreMinRel * float64(queryLen)); rel > floor {
		floor = rel
	}
	if survivors.Score() < floor {
		return nil, bioalignerr.New(bioalignerr.EmptyResult, "harmonize: surviving score %d below floor %d", survivors.Score(), floor)
	}

	return survivors, nil
}
