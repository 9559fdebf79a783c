package search

import (
	"math"
	"sort"
	"strings"

	"github.com/HavenAI/haven-mvp/engine/catalog"
	"github.com/HavenAI/haven-mvp/engine/domain"
	"github.com/HavenAI/haven-mvp/engine/semantic"
	"github.com/HavenAI/haven-mvp/pkg/geo"
	"github.com/HavenAI/haven-mvp/pkg/propertynlp"
)

// Result is a scored listing in a search response. Scores are renormalized
// to 0–100 over the returned slice.
type Result struct {
	Listing    domain.Listing `json:"listing"`
	Score      float64        `json:"score"`
	ExactMatch bool           `json:"exactMatch"`
	DistanceKM *float64       `json:"distanceKm,omitempty"`
}

// Boost weights for attribute matches.
const (
	typeBoost        = 0.2
	priceBoundBoost  = 0.2
	priceTier5       = 0.35
	priceTier10      = 0.25
	priceTier20      = 0.15
	locationSubstr   = 0.15
	locationExactKM  = 2.0
	locationExactAdd = 0.2
	roomBoost        = 0.3
	allExactBonus    = 0.5
)

// proximityTiers maps great-circle distance to a boost, closest tier first.
var proximityTiers = []struct {
	withinKM float64
	boost    float64
}{
	{1, 0.4},
	{5, 0.3},
	{20, 0.2},
	{50, 0.1},
}

// Rank joins raw vector hits against the catalog, applies attribute boosts,
// and returns the ordered, capped, rescaled result list. Hits whose listing
// cannot be found are dropped.
func Rank(hits []semantic.Hit, cat *catalog.Catalog, attrs propertynlp.Attributes, limit int) []Result {
	scored := make([]Result, 0, len(hits))
	for _, h := range hits {
		l, ok := cat.ByID(h.ID)
		if !ok {
			continue
		}
		scored = append(scored, Result{Listing: l, Score: float64(h.Score)})
	}
	return rankScored(scored, attrs, limit)
}

// rankScored applies the attribute boosting pass to pre-scored results,
// partitions exact matches first, truncates, and renormalizes. Shared by
// the vector path and the text fallback.
func rankScored(scored []Result, attrs propertynlp.Attributes, limit int) []Result {
	if attrs.Empty() {
		// No extracted constraints: pure similarity order.
		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
		return finalize(scored, limit)
	}

	for i := range scored {
		boost, exact, dist := scoreAttributes(scored[i].Listing, attrs)
		scored[i].Score += boost
		scored[i].ExactMatch = exact
		scored[i].DistanceKM = dist
	}

	// Exact matches first as a block, each group by descending score.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].ExactMatch != scored[j].ExactMatch {
			return scored[i].ExactMatch
		}
		return scored[i].Score > scored[j].Score
	})
	return finalize(scored, limit)
}

// scoreAttributes computes the boost and exact-match flag for one listing.
// The flag starts true and flips on the first unsatisfied constraint.
func scoreAttributes(l domain.Listing, attrs propertynlp.Attributes) (boost float64, exact bool, distKM *float64) {
	exact = true

	if len(attrs.Types) > 0 {
		if containsFold(attrs.Types, l.Type) {
			boost += typeBoost
		} else {
			exact = false
		}
	}

	if p := attrs.Price; p != nil {
		if p.Min != nil {
			if l.Price >= *p.Min {
				boost += priceBoundBoost
			} else {
				exact = false
			}
		}
		if p.Max != nil {
			if l.Price <= *p.Max {
				boost += priceBoundBoost
			} else {
				exact = false
			}
		}
		if p.Target != nil && *p.Target > 0 {
			ratio := math.Abs(l.Price-*p.Target) / *p.Target
			switch {
			case ratio <= 0.05:
				boost += priceTier5
			case ratio <= 0.10:
				boost += priceTier10
			case ratio <= 0.20:
				boost += priceTier20
			default:
				exact = false
			}
		}
	}

	if place := attrs.Place; place != nil {
		if l.Coord != nil {
			d := geo.HaversineKM(*l.Coord, place.Coord)
			distKM = &d
			for _, tier := range proximityTiers {
				if d < tier.withinKM {
					boost += tier.boost
					break
				}
			}
			if d <= locationExactKM {
				boost += locationExactAdd
			} else {
				exact = false
			}
		} else if strings.Contains(strings.ToLower(l.Location), strings.ToLower(place.Name)) {
			boost += locationSubstr
		} else {
			exact = false
		}
	}

	if attrs.Bedrooms != nil {
		if l.Bedrooms == *attrs.Bedrooms {
			boost += roomBoost
		} else {
			exact = false
		}
	}
	if attrs.Bathrooms != nil {
		if l.Bathrooms == *attrs.Bathrooms {
			boost += roomBoost
		} else {
			exact = false
		}
	}

	if exact {
		boost += allExactBonus
	}
	return boost, exact, distKM
}

// finalize truncates to limit and linearly rescales scores to [0, 100],
// rounded to two decimals. A degenerate slice (all scores equal) maps to
// 100 everywhere.
func finalize(res []Result, limit int) []Result {
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	if len(res) == 0 {
		return res
	}

	lo, hi := res[0].Score, res[0].Score
	for _, r := range res[1:] {
		if r.Score < lo {
			lo = r.Score
		}
		if r.Score > hi {
			hi = r.Score
		}
	}

	for i := range res {
		if hi == lo {
			res[i].Score = 100
			continue
		}
		res[i].Score = round2((res[i].Score - lo) / (hi - lo) * 100)
	}
	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
