package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/HavenAI/haven-mvp/engine/domain"
)

const sampleFile = `id|title|description|location|type|style|bedrooms|bathrooms|price|view|furnishing|lat|lng
1|Bright Camden flat|Top floor two bed|Camden, London|Flat|Modern|2|1|450000|City|Furnished|51.5390|-0.1426
2|Victorian terrace|Period features throughout|Richmond, London|House|Victorian|3|2|820000|Garden|Unfurnished|51.4613|-0.3037
3|Compact studio|Close to the station|Croydon, London|Studio|Modern|1|1|210000||Part-furnished||
`

func mustRead(t *testing.T, data string) *Catalog {
	t.Helper()
	cat, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return cat
}

func TestReadParsesListings(t *testing.T) {
	cat := mustRead(t, sampleFile)

	if cat.Len() != 3 {
		t.Fatalf("Len = %d, want 3", cat.Len())
	}

	l, ok := cat.ByID(1)
	if !ok {
		t.Fatal("ByID(1) not found")
	}
	if l.Title != "Bright Camden flat" || l.Type != "Flat" || l.Bedrooms != 2 || l.Price != 450_000 {
		t.Errorf("unexpected listing: %+v", l)
	}
	if l.Coord == nil || l.Coord.Lat != 51.5390 {
		t.Errorf("Coord = %+v, want lat 51.5390", l.Coord)
	}

	// Missing lat/lng yields no coordinate.
	studio, _ := cat.ByID(3)
	if studio.Coord != nil {
		t.Errorf("Coord = %+v, want nil", studio.Coord)
	}
}

func TestReadWithoutHeader(t *testing.T) {
	noHeader := strings.Join(strings.Split(sampleFile, "\n")[1:], "\n")
	cat := mustRead(t, noHeader)
	if cat.Len() != 3 {
		t.Errorf("Len = %d, want 3", cat.Len())
	}
}

func TestReadRejectsMalformedRow(t *testing.T) {
	bad := sampleFile + "4|Broken|desc|loc|House|Modern|two|1|100000|||51.5|-0.1\n"
	if _, err := Read(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for non-numeric bedrooms")
	}
}

func TestReadRejectsInvalidListing(t *testing.T) {
	bad := sampleFile + "0|No id|desc|loc|House|Modern|1|1|100000|||51.5|-0.1\n"
	_, err := Read(strings.NewReader(bad))
	if !errors.Is(err, domain.ErrInvalidListing) {
		t.Fatalf("error = %v, want ErrInvalidListing", err)
	}
}

func TestFilters(t *testing.T) {
	cat := mustRead(t, sampleFile)
	f := cat.Filters()

	if f.Bedrooms.Min != 1 || f.Bedrooms.Max != 3 {
		t.Errorf("Bedrooms = %+v, want {1 3}", f.Bedrooms)
	}
	if f.Bathrooms.Min != 1 || f.Bathrooms.Max != 2 {
		t.Errorf("Bathrooms = %+v, want {1 2}", f.Bathrooms)
	}
	if f.Price.Min != 210_000 || f.Price.Max != 820_000 {
		t.Errorf("Price = %+v, want {210000 820000}", f.Price)
	}

	wantTypes := []string{"Flat", "House", "Studio"}
	if len(f.Types) != len(wantTypes) {
		t.Fatalf("Types = %v, want %v", f.Types, wantTypes)
	}
	for i, w := range wantTypes {
		if f.Types[i] != w {
			t.Errorf("Types[%d] = %q, want %q", i, f.Types[i], w)
		}
	}

	// Empty view on listing 3 must not produce an empty filter value.
	for _, v := range f.Views {
		if v == "" {
			t.Error("Views contains empty string")
		}
	}
}

func TestFiltersEmptyCatalog(t *testing.T) {
	f := New(nil).Filters()
	if f.Bedrooms != (IntRange{}) || len(f.Types) != 0 {
		t.Errorf("unexpected filters for empty catalog: %+v", f)
	}
}
