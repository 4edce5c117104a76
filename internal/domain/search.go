package domain

import (
	"strings"

	"github.com/google/uuid"
)

// SearchCriteria is a validated search request. Build it with service.ParseSearchArgs.
type SearchCriteria struct {
	City     *string
	MinPrice *Money
	MaxPrice *Money
	Status   *PropertyStatus
	Type     *PropertyType
	Page     Page
}

// Filter returns the store filter for the criteria
func (c SearchCriteria) Filter() PropertyFilter {
	return PropertyFilter{
		City:     c.City,
		MinPrice: c.MinPrice,
		MaxPrice: c.MaxPrice,
		Status:   c.Status,
		Type:     c.Type,
	}
}

// Matches reports whether p satisfies every present constraint
func (c SearchCriteria) Matches(p *Property) bool {
	f := c.Filter()
	return f.Matches(p)
}

// CityKey is the case-folded form stores compare cities by
func CityKey(city string) string {
	return strings.ToLower(city)
}

// Matches reports whether p satisfies every present constraint
func (f PropertyFilter) Matches(p *Property) bool {
	if f.City != nil && CityKey(*f.City) != CityKey(p.City) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.Type != nil && p.Type != *f.Type {
		return false
	}
	return true
}

// SearchResult is the response of a property search
type SearchResult struct {
	Count      int               `json:"count"`
	Total      *int64            `json:"total,omitempty"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
	Properties []PropertySummary `json:"properties"`
}

// DigestResult is the payload of the daily listings resource
type DigestResult struct {
	Date     string     `json:"date"`
	Count    int        `json:"count"`
	Listings []Property `json:"listings"`
}

// GenerationRequest asks for listing content for one property
type GenerationRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	Language   string    `json:"target_language" validate:"omitempty,min=2,max=8"`
	Tone       string    `json:"tone" validate:"omitempty,max=32"`
	Format     string    `json:"format" validate:"omitempty,oneof=html markdown"`
}

// Output formats for generated content
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// RenderedContent is generated marketing copy for a property
type RenderedContent struct {
	PropertyID      uuid.UUID `json:"property_id"`
	Language        string    `json:"language"`
	Tone            string    `json:"tone"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Markdown        string    `json:"markdown"`
	HTML            string    `json:"html"`
}

// Body returns the content in the requested format
func (c *RenderedContent) Body(format string) string {
	if format == FormatMarkdown {
		return c.Markdown
	}
	return c.HTML
}

// AuthContext is derived per call from the presented credential
type AuthContext struct {
	Valid     bool
	Principal string
}
