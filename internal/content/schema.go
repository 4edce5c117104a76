package content

import (
	"github.com/Rrens/property-mcp/internal/domain"
)

// listingSchema is the schema.org JSON-LD embedded in the HTML head
type listingSchema struct {
	Context       string        `json:"@context"`
	Type          string        `json:"@type"`
	Identifier    string        `json:"identifier"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Address       addressSchema `json:"address"`
	FloorSize     floorSchema   `json:"floorSize"`
	NumberOfRooms int           `json:"numberOfRooms"`
	Offers        offerSchema   `json:"offers"`
}

type addressSchema struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality"`
}

type floorSchema struct {
	Type     string  `json:"@type"`
	Value    float64 `json:"value"`
	UnitCode string  `json:"unitCode"`
}

type offerSchema struct {
	Type          string `json:"@type"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
	Availability  string `json:"availability"`
}

func schemaFor(p *domain.Property, meta string) listingSchema {
	availability := "https://schema.org/InStock"
	if p.Status == domain.StatusSold {
		availability = "https://schema.org/SoldOut"
	}
	return listingSchema{
		Context:     "https://schema.org",
		Type:        "RealEstateListing",
		Identifier:  p.ID.String(),
		Name:        p.Title,
		Description: meta,
		Address: addressSchema{
			Type:            "PostalAddress",
			StreetAddress:   p.Address,
			AddressLocality: p.City,
		},
		FloorSize: floorSchema{
			Type:     "QuantitativeValue",
			Value:    p.AreaSqm,
			UnitCode: "MTK",
		},
		NumberOfRooms: p.Bedrooms,
		Offers: offerSchema{
			Type:          "Offer",
			Price:         p.Price.Decimal().StringFixed(2),
			PriceCurrency: "EUR",
			Availability:  availability,
		},
	}
}
