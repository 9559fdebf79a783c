package semantic

import "testing"

func TestToPayload(t *testing.T) {
	payload := map[string]any{
		"title":    "Bright Camden flat",
		"bedrooms": 2,
		"id":       int64(7),
		"price":    450000.0,
		"active":   true,
		"other":    []string{"x"},
	}

	out := toPayload(payload)

	if got := out["title"].GetStringValue(); got != "Bright Camden flat" {
		t.Errorf("title = %q", got)
	}
	if got := out["bedrooms"].GetIntegerValue(); got != 2 {
		t.Errorf("bedrooms = %d", got)
	}
	if got := out["id"].GetIntegerValue(); got != 7 {
		t.Errorf("id = %d", got)
	}
	if got := out["price"].GetDoubleValue(); got != 450000.0 {
		t.Errorf("price = %g", got)
	}
	if got := out["active"].GetBoolValue(); !got {
		t.Error("active = false")
	}
	// Unknown types fall back to their string form.
	if got := out["other"].GetStringValue(); got == "" {
		t.Error("other should stringify")
	}
}
