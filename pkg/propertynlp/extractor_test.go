package propertynlp

import "testing"

func intPtr(n int) *int { return &n }

func TestExtractBedroomsBathrooms(t *testing.T) {
	tests := []struct {
		query     string
		bedrooms  *int
		bathrooms *int
	}{
		{"4 bed house", intPtr(4), nil},
		{"a lovely 4-bedroom cottage", intPtr(4), nil},
		{"2 bed 1 bath flat", intPtr(2), intPtr(1)},
		{"3 bedroom 2 bathroom townhouse", intPtr(3), intPtr(2)},
		{"spacious house with garden", nil, nil},
		{"flat near the riverbed", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			attrs := Extract(tt.query)
			checkIntPtr(t, "Bedrooms", attrs.Bedrooms, tt.bedrooms)
			checkIntPtr(t, "Bathrooms", attrs.Bathrooms, tt.bathrooms)
		})
	}
}

func checkIntPtr(t *testing.T, name string, got, want *int) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("%s = %d, want nil", name, *got)
	case want != nil && got == nil:
		t.Errorf("%s = nil, want %d", name, *want)
	case want != nil && got != nil && *got != *want:
		t.Errorf("%s = %d, want %d", name, *got, *want)
	}
}

func TestExtractTypesCollectsAll(t *testing.T) {
	attrs := Extract("a house or a flat, maybe a studio")
	want := []string{"House", "Flat", "Studio"}
	if len(attrs.Types) != len(want) {
		t.Fatalf("Types = %v, want %v", attrs.Types, want)
	}
	for i, w := range want {
		if attrs.Types[i] != w {
			t.Errorf("Types[%d] = %q, want %q", i, attrs.Types[i], w)
		}
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		query            string
		min, max, target float64 // 0 means absent
	}{
		{"flat under £500k", 0, 500_000, 0},
		{"below 250,000 please", 0, 250_000, 0},
		{"less than $1.5m", 0, 1_500_000, 0},
		{"maximum 300k", 0, 300_000, 0},
		{"over 1m", 1_000_000, 0, 0},
		{"at least £750k", 750_000, 0, 0},
		{"minimum 2 million", 2_000_000, 0, 0},
		{"around 750k", 600_000, 900_000, 750_000},
		{"about £1,200,000", 960_000, 1_440_000, 1_200_000},
		{"no price mentioned", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			attrs := Extract(tt.query)
			if tt.min == 0 && tt.max == 0 && tt.target == 0 {
				if attrs.Price != nil {
					t.Fatalf("Price = %+v, want nil", attrs.Price)
				}
				return
			}
			if attrs.Price == nil {
				t.Fatal("Price = nil, want range")
			}
			checkBound(t, "Min", attrs.Price.Min, tt.min)
			checkBound(t, "Max", attrs.Price.Max, tt.max)
			checkBound(t, "Target", attrs.Price.Target, tt.target)
		})
	}
}

func checkBound(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if want == 0 {
		if got != nil {
			t.Errorf("%s = %.0f, want absent", name, *got)
		}
		return
	}
	if got == nil {
		t.Errorf("%s = nil, want %.0f", name, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %.0f, want %.0f", name, *got, want)
	}
}

// A query matching both "under" and "around" keeps both constraints: the
// explicit under bound wins the max, around still sets the target and the
// lower band edge.
func TestExtractPriceNonExclusive(t *testing.T) {
	attrs := Extract("under 800k but ideally around 600k")
	if attrs.Price == nil {
		t.Fatal("Price = nil")
	}
	checkBound(t, "Max", attrs.Price.Max, 800_000)
	checkBound(t, "Target", attrs.Price.Target, 600_000)
	checkBound(t, "Min", attrs.Price.Min, 480_000)
}

func TestExtractPlace(t *testing.T) {
	tests := []struct {
		query    string
		want     string // lowercase gazetteer key, "" means no place
	}{
		{"2 bed flat near Camden", "camden"},
		{"house close to Notting Hill", "notting hill"},
		{"apartment in Manchester city centre", "manchester"},
		{"cottage by York", "york"},
		{"penthouse next to Shoreditch", "shoreditch"},
		{"somewhere nice", ""},
		{"near the beach", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			attrs := Extract(tt.query)
			if tt.want == "" {
				if attrs.Place != nil {
					t.Fatalf("Place = %+v, want nil", attrs.Place)
				}
				return
			}
			if attrs.Place == nil {
				t.Fatalf("Place = nil, want %q", tt.want)
			}
			coord, ok := gazetteer[tt.want]
			if !ok {
				t.Fatalf("test place %q missing from gazetteer", tt.want)
			}
			if attrs.Place.Coord != coord {
				t.Errorf("Coord = %+v, want %+v", attrs.Place.Coord, coord)
			}
		})
	}
}

func TestExtractPlaceFallbackCoordinate(t *testing.T) {
	attrs := Extract("a house in England")
	if attrs.Place == nil {
		t.Fatal("Place = nil, want region match")
	}
	if attrs.Place.Coord != fallbackCoord {
		t.Errorf("Coord = %+v, want fallback %+v", attrs.Place.Coord, fallbackCoord)
	}
}

func TestExtractEmpty(t *testing.T) {
	attrs := Extract("   ")
	if !attrs.Empty() {
		t.Errorf("Extract(blank) = %+v, want empty", attrs)
	}
}

func TestExtractCombined(t *testing.T) {
	attrs := Extract("3 bed 2 bath house near Richmond under £900k")
	if attrs.Empty() {
		t.Fatal("expected attributes")
	}
	checkIntPtr(t, "Bedrooms", attrs.Bedrooms, intPtr(3))
	checkIntPtr(t, "Bathrooms", attrs.Bathrooms, intPtr(2))
	if len(attrs.Types) != 1 || attrs.Types[0] != "House" {
		t.Errorf("Types = %v, want [House]", attrs.Types)
	}
	if attrs.Price == nil {
		t.Fatal("Price = nil")
	}
	checkBound(t, "Max", attrs.Price.Max, 900_000)
	if attrs.Place == nil || attrs.Place.Coord != gazetteer["richmond"] {
		t.Errorf("Place = %+v, want richmond", attrs.Place)
	}
}
