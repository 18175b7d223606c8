package source

import (
	"github.com/jeffMauritius/scrapper/internal/extract"
	"github.com/jeffMauritius/scrapper/internal/model"
)

const (
	SiteHome         = "https://www.mariages.net"
	VendorHome       = "https://www.mariages.net/photo-mariage"
	VenueListingURL  = "https://www.mariages.net/busc.php?id_grupo=1&showmode=list&NumPage=%d&userSearch=1&isNearby=0&isOrganicSearch=1&priceType=menu&categoryIds[]=1&categoryIds[]=2&categoryIds[]=3&categoryIds[]=4&categoryIds[]=5&categoryIds[]=29&categoryIds[]=31&categoryIds[]=63&categoryIds[]=47"
	VendorListingURL = "https://www.mariages.net/busc.php?id_grupo=2&id_sector=8&isNearby=0&NumPage=%d"
	ContactListURL   = "https://www.mariages.net/busc.php?id_grupo=1&showmode=list&NumPage=1"

	ItemsPerPage     = 24
	VenueTotalItems  = 11575
	VendorTotalItems = 14566
)

var detailSelectors = extract.DetailSelectors{
	Ready:       extract.Field{".storefrontDescription__content"},
	Description: extract.Field{".storefrontDescription__content"},
	Services:    extract.Field{".storefrontServices__item"},
}

var contactSelectors = extract.ContactSelectors{
	VenueLinks:    extract.Field{".app-list-directory-item a.gtm-business-list-link"},
	CookieButton:  extract.Field{"#didomi-notice-agree-button"},
	ContactButton: extract.Field{".app-business-contact-button"},
	Title:         extract.Field{".storefrontHeading__title"},
	Email:         extract.Field{".app-business-contact-email"},
	Phone:         extract.Field{".app-business-contact-phone"},
	Person:        extract.Field{".app-business-contact-name"},
}

// VenueSelectors are the current markup selectors of the venue listing,
// newest layout first.
func VenueSelectors() extract.Selectors {
	return extract.Selectors{
		Listing: extract.ListingSelectors{
			Cards:       extract.Field{"#app-lista-empresas article", ".empresa", "article[data-tipo]", "article.listingCard", ".vendorTile", "article"},
			Name:        extract.Field{".vendorTile__title", ".app-vendor-tile-title", "h2"},
			Rating:      extract.Field{".vendorTile__rating", ".rating-badge", ".storefront-rating"},
			Reviews:     extract.Field{".rating-counter", ".reviewCount", ".storefront-reviews-count"},
			Location:    extract.Field{".vendorTile__location", ".vendor-location", ".storefront-location"},
			Price:       extract.Field{".vendorTileFooter__price span:last-child", ".vendorTileFooter__price"},
			Capacity:    extract.Field{".vendorTileFooter__capacity span:last-child", ".vendorTileFooter__capacity"},
			Description: extract.Field{".vendorTile__description", ".vendor-description"},
			Link:        extract.Field{`.vendorTile a[href*="/"]`, "a[href]"},
			Type:        extract.Field{".vendorTile__subtitle", ".vendor-type"},
			Images: extract.Field{
				".vendorTileGallery__image, .vendorTileGallery picture source",
				".vendorTileGallery img[src], .vendorTileGallery img[data-src]",
			},
		},
		Detail:  detailSelectors,
		Contact: contactSelectors,
	}
}

func VendorSelectors() extract.Selectors {
	return extract.Selectors{
		Listing: extract.ListingSelectors{
			Cards:       extract.Field{".storefront-list .directory-list-item", ".app-directory-list article", ".vendorTile", ".directory-item", `[data-list-type="Catalog"] article`, ".listingCard"},
			Name:        extract.Field{".storefront-name", ".vendorTile__title", ".businessCard__title", "h3"},
			Rating:      extract.Field{".storefront-rating", ".vendorTile__rating", ".businessCard__rating"},
			Reviews:     extract.Field{".storefront-reviews-count", ".rating-counter", ".businessCard__reviews"},
			Location:    extract.Field{".storefront-location", ".vendorTile__location", ".businessCard__location"},
			Price:       extract.Field{".storefront-price", ".vendorTile__price", ".businessCard__price"},
			Description: extract.Field{".storefront-description", ".vendorTile__description", ".businessCard__description"},
			Link:        extract.Field{`a[href*="/photo-mariage/"]`},
			Images:      extract.Field{".storefront-gallery img, .vendorTile__gallery img, .businessCard__gallery img"},
		},
		Detail:  detailSelectors,
		Contact: contactSelectors,
	}
}

// DefaultDirectory returns the listing walk configuration for a kind.
func DefaultDirectory(kind model.Kind) DirectoryConfig {
	if kind == model.KindVendor {
		return DirectoryConfig{
			Name:         "mariages.net photographers",
			Kind:         model.KindVendor,
			HomeURL:      VendorHome,
			PageURL:      VendorListingURL,
			TotalItems:   VendorTotalItems,
			ItemsPerPage: ItemsPerPage,
			StartPage:    1,
			Selectors:    VendorSelectors().Listing,
		}
	}
	return DirectoryConfig{
		Name:         "mariages.net venues",
		Kind:         model.KindVenue,
		HomeURL:      SiteHome,
		PageURL:      VenueListingURL,
		TotalItems:   VenueTotalItems,
		ItemsPerPage: ItemsPerPage,
		StartPage:    1,
		Selectors:    VenueSelectors().Listing,
	}
}

func DefaultSelectors(kind model.Kind) extract.Selectors {
	if kind == model.KindVendor {
		return VendorSelectors()
	}
	return VenueSelectors()
}
