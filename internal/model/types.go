package model

import "strings"

type VenueType string

const (
	VenueDomain        VenueType = "Domaine mariage"
	VenueInn           VenueType = "Auberge mariage"
	VenueHotel         VenueType = "Hôtel mariage"
	VenueRestaurant    VenueType = "Restaurant mariage"
	VenueReceptionHall VenueType = "Salle mariage"
	VenueCastle        VenueType = "Château mariage"
	VenueBoat          VenueType = "Bateau mariage"
	VenueBeach         VenueType = "Mariages à la plage"
	VenueMarquee       VenueType = "Chapiteau mariage"
)

type VendorType string

const (
	VendorPhotographer  VendorType = "photographer"
	VendorVideographer  VendorType = "videographer"
	VendorMusic         VendorType = "music"
	VendorCaterer       VendorType = "caterer"
	VendorFlorist       VendorType = "florist"
	VendorDecoration    VendorType = "decoration"
	VendorEntertainment VendorType = "entertainment"
	VendorTransport     VendorType = "transport"
	VendorJewelry       VendorType = "jewelry"
	VendorDress         VendorType = "dress"
	VendorSuit          VendorType = "suit"
	VendorBeauty        VendorType = "beauty"
	VendorOther         VendorType = "other"
)

// Ordered: the first matching path segment wins.
var venuePaths = []struct {
	segment string
	typ     VenueType
}{
	{"/chateau-mariage/", VenueCastle},
	{"/domaine-mariage/", VenueDomain},
	{"/salle-mariage/", VenueReceptionHall},
	{"/hotel-mariage/", VenueHotel},
	{"/restaurant-mariage/", VenueRestaurant},
	{"/bateau-mariage/", VenueBoat},
	{"/plage/", VenueBeach},
	{"/chapiteau-mariage/", VenueMarquee},
	{"/auberge-mariage/", VenueInn},
}

var venueLabels = map[string]VenueType{
	"domaine":    VenueDomain,
	"auberge":    VenueInn,
	"hôtel":      VenueHotel,
	"hotel":      VenueHotel,
	"restaurant": VenueRestaurant,
	"salle":      VenueReceptionHall,
	"château":    VenueCastle,
	"chateau":    VenueCastle,
	"bateau":     VenueBoat,
	"plage":      VenueBeach,
	"chapiteau":  VenueMarquee,
}

var vendorPaths = []struct {
	segment string
	typ     VendorType
}{
	{"/photo-mariage/", VendorPhotographer},
	{"/video-mariage/", VendorVideographer},
	{"/musique-mariage/", VendorMusic},
	{"/traiteur-mariage/", VendorCaterer},
	{"/fleurs-mariage/", VendorFlorist},
	{"/decoration-mariage/", VendorDecoration},
	{"/animation-mariage/", VendorEntertainment},
	{"/voiture-mariage/", VendorTransport},
	{"/bijoux-mariage/", VendorJewelry},
	{"/robe-mariage/", VendorDress},
	{"/costume-mariage/", VendorSuit},
	{"/beaute-mariage/", VendorBeauty},
}

// VenueTypeFromURL falls back to VenueDomain when no segment matches.
func VenueTypeFromURL(url string) VenueType {
	for _, p := range venuePaths {
		if strings.Contains(url, p.segment) {
			return p.typ
		}
	}
	return VenueDomain
}

// VenueTypeFromLabel maps a card subtitle such as "Château" to a type.
func VenueTypeFromLabel(label string) (VenueType, bool) {
	t, ok := venueLabels[strings.ToLower(strings.TrimSpace(label))]
	return t, ok
}

// DetectVenueType prefers the card label and falls back to the URL.
func DetectVenueType(label, url string) VenueType {
	if t, ok := VenueTypeFromLabel(label); ok {
		return t
	}
	return VenueTypeFromURL(url)
}

func VendorTypeFromURL(url string) VendorType {
	for _, p := range vendorPaths {
		if strings.Contains(url, p.segment) {
			return p.typ
		}
	}
	return VendorOther
}

// DetectType picks the type string stored on a record of the given kind.
func DetectType(kind Kind, label, url string) string {
	if kind == KindVendor {
		return string(VendorTypeFromURL(url))
	}
	return string(DetectVenueType(label, url))
}
