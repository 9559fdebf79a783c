// Package propertynlp extracts structured search constraints from free-text
// property queries using regex patterns and a static place gazetteer.
// No external dependencies.
package propertynlp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/HavenAI/haven-mvp/pkg/geo"
)

// PriceRange is an extracted price constraint. Any of the three bounds may
// be absent. Target carries a ±20% band in Min/Max unless an explicit
// under/over bound already pinned them.
type PriceRange struct {
	Min    *float64
	Max    *float64
	Target *float64
}

// Place is an extracted target location resolved against the gazetteer.
type Place struct {
	Name  string
	Coord geo.Coordinate
}

// Attributes holds every constraint recognized in one query. Each field is
// nil/empty when the query did not mention it.
type Attributes struct {
	Bedrooms  *int
	Bathrooms *int
	Types     []string
	Price     *PriceRange
	Place     *Place
}

// Empty reports whether no constraint at all was extracted.
func (a Attributes) Empty() bool {
	return a.Bedrooms == nil && a.Bathrooms == nil && len(a.Types) == 0 &&
		a.Price == nil && a.Place == nil
}

// propertyTypes is the recognized set of property type keywords. All
// case-insensitive substring matches are collected, not just the first.
var propertyTypes = []string{
	"House", "Flat", "Apartment", "Studio",
	"Cottage", "Bungalow", "Penthouse", "Townhouse",
}

// gazetteer maps recognized place names to coordinates.
var gazetteer = map[string]geo.Coordinate{
	"london":        {Lat: 51.5074, Lng: -0.1278},
	"camden":        {Lat: 51.5390, Lng: -0.1426},
	"islington":     {Lat: 51.5362, Lng: -0.1033},
	"hackney":       {Lat: 51.5450, Lng: -0.0553},
	"shoreditch":    {Lat: 51.5229, Lng: -0.0777},
	"chelsea":       {Lat: 51.4875, Lng: -0.1687},
	"kensington":    {Lat: 51.4990, Lng: -0.1991},
	"notting hill":  {Lat: 51.5160, Lng: -0.2100},
	"richmond":      {Lat: 51.4613, Lng: -0.3037},
	"greenwich":     {Lat: 51.4826, Lng: -0.0077},
	"wimbledon":     {Lat: 51.4214, Lng: -0.2064},
	"croydon":       {Lat: 51.3762, Lng: -0.0982},
	"brighton":      {Lat: 50.8225, Lng: -0.1372},
	"cambridge":     {Lat: 52.2053, Lng: 0.1218},
	"oxford":        {Lat: 51.7520, Lng: -1.2577},
	"manchester":    {Lat: 53.4808, Lng: -2.2426},
	"birmingham":    {Lat: 52.4862, Lng: -1.8904},
	"leeds":         {Lat: 53.8008, Lng: -1.5491},
	"liverpool":     {Lat: 53.4084, Lng: -2.9916},
	"bristol":       {Lat: 51.4545, Lng: -2.5879},
	"edinburgh":     {Lat: 55.9533, Lng: -3.1883},
	"glasgow":       {Lat: 55.8642, Lng: -4.2518},
	"york":          {Lat: 53.9600, Lng: -1.0873},
	"bath":          {Lat: 51.3811, Lng: -2.3590},
	"st albans":     {Lat: 51.7527, Lng: -0.3394},
}

// regionNames are recognized place suffixes with no coordinate of their own;
// they resolve to the fallback coordinate.
var regionNames = []string{"england", "scotland", "wales", "the city"}

// fallbackCoord is used when a recognized place has no gazetteer entry.
var fallbackCoord = geo.Coordinate{Lat: 51.5074, Lng: -0.1278}

var (
	bedroomRe  = regexp.MustCompile(`(?i)(\d+)\s*-?\s*bed`)
	bathroomRe = regexp.MustCompile(`(?i)(\d+)\s*-?\s*bath`)

	amount = `[£$€]?\s*([\d,]+(?:\.\d+)?)\s*(k|m|million)?\b`

	underRe  = regexp.MustCompile(`(?i)(?:under|below|less\s+than|max(?:imum)?)\s*` + amount)
	overRe   = regexp.MustCompile(`(?i)(?:over|above|more\s+than|at\s+least|min(?:imum)?)\s*` + amount)
	aroundRe = regexp.MustCompile(`(?i)(?:around|about|approximately|near)\s*` + amount)

	// placeRe is built in init from the gazetteer and region names. The place
	// phrase must end in a recognized name; intervening words are allowed.
	placeRe *regexp.Regexp
)

func init() {
	names := make([]string, 0, len(gazetteer)+len(regionNames))
	for name := range gazetteer {
		names = append(names, name)
	}
	names = append(names, regionNames...)

	// Longest first so "notting hill" wins over a hypothetical "hill".
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for i, n := range names {
		names[i] = regexp.QuoteMeta(n)
	}

	placeRe = regexp.MustCompile(
		`(?i)\b(?:near|close\s+to|in|by|around|next\s+to)\s+(?:[a-z'-]+\s+){0,3}(` +
			strings.Join(names, "|") + `)\b`)
}

// Extract parses a query string into Attributes. Matchers are independent;
// every one that fires contributes its constraint.
func Extract(query string) Attributes {
	var attrs Attributes
	if strings.TrimSpace(query) == "" {
		return attrs
	}

	attrs.Bedrooms = matchCount(bedroomRe, query)
	attrs.Bathrooms = matchCount(bathroomRe, query)
	attrs.Types = matchTypes(query)
	attrs.Price = matchPrice(query)
	attrs.Place = matchPlace(query)
	return attrs
}

func matchCount(re *regexp.Regexp, query string) *int {
	m := re.FindStringSubmatch(query)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func matchTypes(query string) []string {
	lower := strings.ToLower(query)
	var types []string
	for _, t := range propertyTypes {
		if strings.Contains(lower, strings.ToLower(t)) {
			types = append(types, t)
		}
	}
	return types
}

// matchPrice runs the under, over, and around matchers in that order. The
// matchers are deliberately non-exclusive: a query matching both "under X"
// and "around Y" keeps both constraints. "Around" always sets the target and
// fills the ±20% band only into bounds not already pinned by an explicit
// under/over match.
func matchPrice(query string) *PriceRange {
	var pr PriceRange
	found := false

	if m := underRe.FindStringSubmatch(query); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			pr.Max = &v
			found = true
		}
	}
	if m := overRe.FindStringSubmatch(query); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			pr.Min = &v
			found = true
		}
	}
	if m := aroundRe.FindStringSubmatch(query); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			pr.Target = &v
			if pr.Min == nil {
				lo := v * 0.8
				pr.Min = &lo
			}
			if pr.Max == nil {
				hi := v * 1.2
				pr.Max = &hi
			}
			found = true
		}
	}

	if !found {
		return nil
	}
	return &pr
}

// parseAmount converts a digit group (commas allowed) plus an optional
// k/m/million suffix into an absolute price.
func parseAmount(digits, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(suffix) {
	case "k":
		v *= 1_000
	case "m", "million":
		v *= 1_000_000
	}
	return v, true
}

func matchPlace(query string) *Place {
	m := placeRe.FindStringSubmatch(query)
	if m == nil {
		return nil
	}
	name := m[1]
	coord, ok := gazetteer[strings.ToLower(name)]
	if !ok {
		coord = fallbackCoord
	}
	return &Place{Name: name, Coord: coord}
}
