package model

// Unavailable is shown for contact fields the page did not expose.
const Unavailable = "Non disponible"

type Contact struct {
	Name          string
	Type          VenueType
	Email         string
	Phone         string
	ContactPerson string
	URL           string
}

// FillMissing replaces empty fields with Unavailable.
func (c *Contact) FillMissing() {
	for _, f := range []*string{&c.Email, &c.Phone, &c.ContactPerson} {
		if *f == "" {
			*f = Unavailable
		}
	}
}
