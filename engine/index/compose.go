package index

import (
	"fmt"
	"strings"

	"github.com/HavenAI/haven-mvp/engine/domain"
)

// ComposeText renders a listing as the prose document that gets embedded.
// Sentences keep the attribute words (bedrooms, type, location, view) close
// to how people phrase queries, which is what the similarity search matches
// against.
func ComposeText(l domain.Listing) string {
	var b strings.Builder
	b.WriteString(l.Title)
	b.WriteString(". ")

	var desc []string
	if l.Style != "" {
		desc = append(desc, strings.ToLower(l.Style))
	}
	if l.Bedrooms > 0 {
		desc = append(desc, fmt.Sprintf("%d bedroom", l.Bedrooms))
	}
	if l.Bathrooms > 0 {
		desc = append(desc, fmt.Sprintf("%d bathroom", l.Bathrooms))
	}
	if l.Type != "" {
		desc = append(desc, strings.ToLower(l.Type))
	}
	if len(desc) > 0 {
		b.WriteString("A ")
		b.WriteString(strings.Join(desc, " "))
		if l.Location != "" {
			b.WriteString(" in ")
			b.WriteString(l.Location)
		}
		b.WriteString(". ")
	}

	if l.View != "" {
		fmt.Fprintf(&b, "%s view. ", l.View)
	}
	if l.Furnishing != "" {
		b.WriteString(l.Furnishing)
		b.WriteString(". ")
	}
	if l.Price > 0 {
		fmt.Fprintf(&b, "Priced at £%.0f. ", l.Price)
	}
	if l.Description != "" {
		b.WriteString(l.Description)
	}
	return strings.TrimSpace(b.String())
}
