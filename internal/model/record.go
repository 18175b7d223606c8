package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Kind string

const (
	KindVenue  Kind = "venue"
	KindVendor Kind = "vendor"
)

// Collection is the top-level JSON field a kind is stored under.
func (k Kind) Collection() string {
	if k == KindVendor {
		return "vendors"
	}
	return "venues"
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "venue", "venues":
		return KindVenue, nil
	case "vendor", "vendors":
		return KindVendor, nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Record is one scraped venue or vendor entry. Every field is the raw text
// found on the page; numeric parsing happens when seeding the database.
type Record struct {
	URL         string   `json:"url"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Price       string   `json:"price"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	Capacity    string   `json:"capacity"`
	Rating      string   `json:"rating"`
	Services    []string `json:"services,omitempty"`
}

// UnmarshalJSON tolerates missing or null fields so a single odd entry
// never fails a whole document.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)
	if r.Images == nil {
		r.Images = []string{}
	}
	return nil
}

// Key is the identity of a record: lowercased, trimmed name and city.
type Key struct {
	Name string
	City string
}

func NewKey(name, city string) Key {
	return Key{Name: normalizeKeyPart(name), City: normalizeKeyPart(city)}
}

func (r Record) Key() Key {
	return NewKey(r.Name, r.City)
}

// String encodes the key as two quoted parts, so distinct keys never
// share a string form. Redis set members use it.
func (k Key) String() string {
	return strconv.Quote(k.Name) + "," + strconv.Quote(k.City)
}

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitLocation splits "City, Region" on the first comma.
func SplitLocation(location string) (city, region string) {
	before, after, _ := strings.Cut(location, ",")
	city = strings.TrimSpace(before)
	if i := strings.Index(after, ","); i >= 0 {
		after = after[:i]
	}
	region = strings.TrimSpace(after)
	return city, region
}

// FormatRating joins a score and review count the way listings display them,
// e.g. "4.8 (23)".
func FormatRating(score, reviews string) string {
	reviews = strings.Trim(strings.TrimSpace(reviews), "()")
	return fmt.Sprintf("%s (%s)", strings.TrimSpace(score), reviews)
}

// Normalized returns r with a nil image list replaced by an empty one, so it
// is written as [] rather than null.
func (r Record) Normalized() Record {
	if r.Images == nil {
		r.Images = []string{}
	}
	return r
}
