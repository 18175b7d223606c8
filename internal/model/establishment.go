package model

import "time"

const (
	DefaultCurrency = "EUR"
	DefaultCountry  = "France"
)

// Establishment is a record as stored in the relational tables. Numeric
// fields are nil when the scraped text could not be parsed.
type Establishment struct {
	ID            string
	Name          string
	Type          string
	Description   string
	StartingPrice *float64
	Currency      string
	City          string
	Region        string
	Country       string
	MinCapacity   *int
	MaxCapacity   *int
	Rating        *float64
	ReviewCount   int
	URL           string
	Images        []Image
	CreatedAt     time.Time
}

type Image struct {
	ID              string
	EstablishmentID string
	URL             string
	Position        int
}

func (e Establishment) Key() Key {
	return NewKey(e.Name, e.City)
}

// EstablishmentFromRecord parses the free-text fields of a scraped record.
// Ids are left empty for the repository to assign.
func EstablishmentFromRecord(r Record) Establishment {
	e := Establishment{
		Name:        r.Name,
		Type:        r.Type,
		Description: r.Description,
		Currency:    DefaultCurrency,
		City:        r.City,
		Region:      r.Region,
		Country:     DefaultCountry,
		URL:         r.URL,
	}
	if p, ok := ParsePrice(r.Price); ok {
		e.StartingPrice = &p
	}
	if lo, hi, ok := ParseCapacity(r.Capacity); ok {
		if lo > 0 {
			e.MinCapacity = &lo
		}
		e.MaxCapacity = &hi
	}
	score, ok, reviews := ParseRating(r.Rating)
	if ok {
		e.Rating = &score
	}
	e.ReviewCount = reviews
	for i, u := range r.Images {
		e.Images = append(e.Images, Image{URL: u, Position: i})
	}
	return e
}
