// Package catalog loads and serves the read-only property listing table.
// The table is populated once at startup from a pipe-delimited file and is
// safe for concurrent reads without locking; it is constructed explicitly
// and passed by handle into request handlers.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/HavenAI/haven-mvp/engine/domain"
	"github.com/HavenAI/haven-mvp/pkg/geo"
)

// fieldCount is the column count of the listings file:
// id|title|description|location|type|style|bedrooms|bathrooms|price|view|furnishing|lat|lng
const fieldCount = 13

// Catalog is the in-memory listing table.
type Catalog struct {
	listings []domain.Listing
	byID     map[int64]domain.Listing
}

// New builds a Catalog from already-validated listings.
func New(listings []domain.Listing) *Catalog {
	byID := make(map[int64]domain.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	return &Catalog{listings: listings, byID: byID}
}

// Load reads the pipe-delimited listings file at path. Every row is
// validated; a malformed row fails the load with its line number.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	cat, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return cat, nil
}

// Read parses pipe-delimited listings from r. A header row is skipped when
// the first column is not numeric.
func Read(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.FieldsPerRecord = fieldCount

	var listings []domain.Listing
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		if line == 1 {
			if _, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64); err != nil {
				continue // header row
			}
		}

		l, err := parseListing(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := domain.ValidateListing(l); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		listings = append(listings, l)
	}
	return New(listings), nil
}

func parseListing(rec []string) (domain.Listing, error) {
	var l domain.Listing
	var err error

	if l.ID, err = strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64); err != nil {
		return l, fmt.Errorf("id: %w", err)
	}
	l.Title = strings.TrimSpace(rec[1])
	l.Description = strings.TrimSpace(rec[2])
	l.Location = strings.TrimSpace(rec[3])
	l.Type = strings.TrimSpace(rec[4])
	l.Style = strings.TrimSpace(rec[5])
	if l.Bedrooms, err = strconv.Atoi(strings.TrimSpace(rec[6])); err != nil {
		return l, fmt.Errorf("bedrooms: %w", err)
	}
	if l.Bathrooms, err = strconv.Atoi(strings.TrimSpace(rec[7])); err != nil {
		return l, fmt.Errorf("bathrooms: %w", err)
	}
	if l.Price, err = strconv.ParseFloat(strings.TrimSpace(rec[8]), 64); err != nil {
		return l, fmt.Errorf("price: %w", err)
	}
	l.View = strings.TrimSpace(rec[9])
	l.Furnishing = strings.TrimSpace(rec[10])

	lat := strings.TrimSpace(rec[11])
	lng := strings.TrimSpace(rec[12])
	if lat != "" && lng != "" {
		latF, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return l, fmt.Errorf("lat: %w", err)
		}
		lngF, err := strconv.ParseFloat(lng, 64)
		if err != nil {
			return l, fmt.Errorf("lng: %w", err)
		}
		l.Coord = &geo.Coordinate{Lat: latF, Lng: lngF}
	}
	return l, nil
}

// ByID returns the listing with the given id.
func (c *Catalog) ByID(id int64) (domain.Listing, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// All returns the full listing slice. Callers must treat it as read-only.
func (c *Catalog) All() []domain.Listing {
	return c.listings
}

// Len returns the number of listings.
func (c *Catalog) Len() int {
	return len(c.listings)
}
