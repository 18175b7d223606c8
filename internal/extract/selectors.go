package extract

import (
	"fmt"
	"os"

	"github.com/titanous/json5"
)

// Selectors is the full set of markup selectors for one directory. It is
// plain configuration: scrapers receive it as a value and never reach for
// package-level selector lists.
type Selectors struct {
	Listing ListingSelectors `json:"listing"`
	Detail  DetailSelectors  `json:"detail"`
	Contact ContactSelectors `json:"contact"`
}

type ListingSelectors struct {
	Cards       Field `json:"cards"`
	Name        Field `json:"name"`
	Rating      Field `json:"rating"`
	Reviews     Field `json:"reviews"`
	Location    Field `json:"location"`
	Price       Field `json:"price"`
	Capacity    Field `json:"capacity"`
	Description Field `json:"description"`
	Link        Field `json:"link"`
	Type        Field `json:"type"`
	Images      Field `json:"images"`
}

type DetailSelectors struct {
	Ready       Field `json:"ready"`
	Description Field `json:"description"`
	Services    Field `json:"services"`
}

type ContactSelectors struct {
	VenueLinks    Field `json:"venue_links"`
	CookieButton  Field `json:"cookie_button"`
	ContactButton Field `json:"contact_button"`
	Title         Field `json:"title"`
	Email         Field `json:"email"`
	Phone         Field `json:"phone"`
	Person        Field `json:"person"`
}

// LoadSelectors overlays a JSON5 file onto base. Keys missing from the
// file keep their base value, so a file only needs the selectors that
// changed.
func LoadSelectors(path string, base Selectors) (Selectors, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read selectors %s: %w", path, err)
	}
	out := base
	if err := json5.Unmarshal(data, &out); err != nil {
		return base, fmt.Errorf("parse selectors %s: %w", path, err)
	}
	return out, nil
}
