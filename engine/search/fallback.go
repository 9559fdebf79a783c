package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/HavenAI/haven-mvp/engine/domain"
	"github.com/HavenAI/haven-mvp/pkg/propertynlp"
)

// Field-level and per-term boosts for the text fallback.
const (
	fallbackBase    = 0.5
	titleFieldBoost = 0.25
	typeFieldBoost  = 0.20
	styleFieldBoost = 0.15
	viewFieldBoost  = 0.15
	titleTermBoost  = 0.15
	typeTermBoost   = 0.15
	styleTermBoost  = 0.10
	viewTermBoost   = 0.10
	minTermLength   = 4
)

// FallbackSearch is the text matcher used when the embedding or vector
// search provider fails. Listings matching neither the whole query as a
// substring nor any individual query term are dropped; the survivors go
// through the same attribute boosting pass as the vector path.
func FallbackSearch(listings []domain.Listing, query string, attrs propertynlp.Attributes, limit int) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	termRes := termPatterns(q)

	var scored []Result
	for _, l := range listings {
		score, matched := scoreText(l, q, termRes)
		if !matched {
			continue
		}
		scored = append(scored, Result{Listing: l, Score: score})
	}

	// Text score order first; rankScored re-sorts after boosting.
	sortByScore(scored)
	return rankScored(scored, attrs, limit)
}

// termPatterns compiles whole-word matchers for every query term longer
// than three characters.
func termPatterns(q string) []*regexp.Regexp {
	var res []*regexp.Regexp
	for _, term := range strings.Fields(q) {
		if len(term) < minTermLength {
			continue
		}
		res = append(res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return res
}

// scoreText computes the text-match score for one listing. matched is false
// when neither the full query nor any term hit a field.
func scoreText(l domain.Listing, q string, termRes []*regexp.Regexp) (score float64, matched bool) {
	score = fallbackBase
	if q == "" {
		return score, true
	}

	contains := func(field string) bool {
		return strings.Contains(strings.ToLower(field), q)
	}

	if contains(l.Title) {
		score += titleFieldBoost
		matched = true
	}
	if contains(l.Description) {
		matched = true
	}
	if contains(l.Location) {
		matched = true
	}
	if contains(l.Type) {
		score += typeFieldBoost
		matched = true
	}
	if contains(l.Style) {
		score += styleFieldBoost
		matched = true
	}
	if contains(l.View) {
		score += viewFieldBoost
		matched = true
	}
	if contains(l.Furnishing) {
		matched = true
	}

	for _, re := range termRes {
		if re.MatchString(l.Title) {
			score += titleTermBoost
			matched = true
		}
		if re.MatchString(l.Type) {
			score += typeTermBoost
			matched = true
		}
		if re.MatchString(l.Style) {
			score += styleTermBoost
			matched = true
		}
		if re.MatchString(l.View) {
			score += viewTermBoost
			matched = true
		}
	}
	return score, matched
}

func sortByScore(res []Result) {
	sort.SliceStable(res, func(i, j int) bool { return res[i].Score > res[j].Score })
}
