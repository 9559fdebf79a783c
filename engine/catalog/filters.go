package catalog

import (
	"sort"

	"github.com/HavenAI/haven-mvp/engine/domain"
	"github.com/HavenAI/haven-mvp/pkg/fn"
)

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PriceBounds is an inclusive price range.
type PriceBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Filters describes the distinct values and numeric bounds across the
// loaded listing set, for populating search filter UIs.
type Filters struct {
	Types       []string    `json:"types"`
	Styles      []string    `json:"styles"`
	Locations   []string    `json:"locations"`
	Views       []string    `json:"views"`
	Furnishings []string    `json:"furnishings"`
	Bedrooms    IntRange    `json:"bedrooms"`
	Bathrooms   IntRange    `json:"bathrooms"`
	Price       PriceBounds `json:"price"`
}

// Filters computes the filter sets over the catalog.
func (c *Catalog) Filters() Filters {
	f := Filters{
		Types:       distinct(c.listings, func(l domain.Listing) string { return l.Type }),
		Styles:      distinct(c.listings, func(l domain.Listing) string { return l.Style }),
		Locations:   distinct(c.listings, func(l domain.Listing) string { return l.Location }),
		Views:       distinct(c.listings, func(l domain.Listing) string { return l.View }),
		Furnishings: distinct(c.listings, func(l domain.Listing) string { return l.Furnishing }),
	}

	for i, l := range c.listings {
		if i == 0 {
			f.Bedrooms = IntRange{Min: l.Bedrooms, Max: l.Bedrooms}
			f.Bathrooms = IntRange{Min: l.Bathrooms, Max: l.Bathrooms}
			f.Price = PriceBounds{Min: l.Price, Max: l.Price}
			continue
		}
		f.Bedrooms = widenInt(f.Bedrooms, l.Bedrooms)
		f.Bathrooms = widenInt(f.Bathrooms, l.Bathrooms)
		if l.Price < f.Price.Min {
			f.Price.Min = l.Price
		}
		if l.Price > f.Price.Max {
			f.Price.Max = l.Price
		}
	}
	return f
}

func widenInt(r IntRange, v int) IntRange {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	return r
}

// distinct returns the sorted unique non-empty values of one listing field.
func distinct(listings []domain.Listing, field func(domain.Listing) string) []string {
	vals := fn.Filter(
		fn.Unique(fn.Map(listings, field)),
		func(s string) bool { return s != "" },
	)
	sort.Strings(vals)
	return vals
}
