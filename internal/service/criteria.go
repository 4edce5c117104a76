package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Rrens/property-mcp/internal/domain"
)

// SearchLimits bounds the page size of a search
type SearchLimits struct {
	DefaultLimit int
	MaxLimit     int
}

// search argument names
const (
	argCity         = "city"
	argMinPrice     = "min_price"
	argMaxPrice     = "max_price"
	argStatus       = "status"
	argPropertyType = "property_type"
	argLimit        = "limit"
	argOffset       = "offset"
)

var searchArgs = map[string]bool{
	argCity:         true,
	argMinPrice:     true,
	argMaxPrice:     true,
	argStatus:       true,
	argPropertyType: true,
	argLimit:        true,
	argOffset:       true,
}

// largest price that still fits in int64 minor units
var priceCeiling = decimal.New(math.MaxInt64/100, 0)

// ParseSearchArgs converts loosely-typed caller arguments into validated criteria.
// Nothing is sent to storage when it returns an error.
func ParseSearchArgs(raw map[string]any, limits SearchLimits) (domain.SearchCriteria, error) {
	var c domain.SearchCriteria

	if err := rejectUnknown(raw, searchArgs); err != nil {
		return c, err
	}

	city, err := optionalString(raw, argCity)
	if err != nil {
		return c, err
	}
	if city != nil && strings.TrimSpace(*city) != "" {
		trimmed := strings.TrimSpace(*city)
		c.City = &trimmed
	}

	minPrice, err := optionalPrice(raw, argMinPrice)
	if err != nil {
		return c, err
	}
	maxPrice, err := optionalPrice(raw, argMaxPrice)
	if err != nil {
		return c, err
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		return c, domain.NewValidationError(argMinPrice, "must not be greater than max_price")
	}
	// sub-cent bounds round inward so the range never widens
	if minPrice != nil {
		m := domain.Money(minPrice.Shift(2).Ceil().IntPart())
		c.MinPrice = &m
	}
	if maxPrice != nil {
		m := domain.Money(maxPrice.Shift(2).Floor().IntPart())
		c.MaxPrice = &m
	}

	status, err := optionalString(raw, argStatus)
	if err != nil {
		return c, err
	}
	if status != nil {
		s := domain.PropertyStatus(strings.ToLower(strings.TrimSpace(*status)))
		if !s.Valid() {
			return c, domain.NewValidationError(argStatus, "must be one of available, sold")
		}
		c.Status = &s
	}

	propertyType, err := optionalString(raw, argPropertyType)
	if err != nil {
		return c, err
	}
	if propertyType != nil {
		t := domain.PropertyType(strings.ToLower(strings.TrimSpace(*propertyType)))
		if !t.Valid() {
			return c, domain.NewValidationError(argPropertyType, "must be one of apartment, villa, penthouse, townhouse, studio, house")
		}
		c.Type = &t
	}

	c.Page.Limit = limits.DefaultLimit
	limit, err := optionalInt(raw, argLimit)
	if err != nil {
		return c, err
	}
	if limit != nil {
		if *limit < 1 {
			return c, domain.NewValidationError(argLimit, "must be at least 1")
		}
		c.Page.Limit = *limit
	}
	if c.Page.Limit > limits.MaxLimit {
		c.Page.Limit = limits.MaxLimit
	}

	offset, err := optionalInt(raw, argOffset)
	if err != nil {
		return c, err
	}
	if offset != nil {
		if *offset < 0 {
			return c, domain.NewValidationError(argOffset, "must not be negative")
		}
		c.Page.Offset = *offset
	}

	return c, nil
}

// rejectUnknown names the first unknown key in sorted order
func rejectUnknown(raw map[string]any, allowed map[string]bool) error {
	var unknown []string
	for key := range raw {
		if !allowed[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return domain.NewValidationError(unknown[0], "unknown argument")
}

func optionalString(raw map[string]any, field string) (*string, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, domain.NewValidationError(field, "must be a string")
	}
	return &s, nil
}

func optionalPrice(raw map[string]any, field string) (*decimal.Decimal, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return nil, nil
	}

	d, err := toDecimal(v)
	if err != nil {
		return nil, domain.NewValidationError(field, "%s", err.Error())
	}
	if d.IsNegative() {
		return nil, domain.NewValidationError(field, "must not be negative")
	}
	if d.GreaterThan(priceCeiling) {
		return nil, domain.NewValidationError(field, "is too large")
	}
	return &d, nil
}

func optionalInt(raw map[string]any, field string) (*int, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return nil, nil
	}

	d, err := toDecimal(v)
	if err != nil || !d.IsInteger() {
		return nil, domain.NewValidationError(field, "must be an integer")
	}
	if d.GreaterThan(decimal.New(math.MaxInt32, 0)) || d.LessThan(decimal.New(math.MinInt32, 0)) {
		return nil, domain.NewValidationError(field, "is out of range")
	}

	n := int(d.IntPart())
	return &n, nil
}

// toDecimal accepts JSON numbers, Go integers and numeric strings
func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, fmt.Errorf("must be a finite number")
		}
		return decimal.NewFromFloat(n), nil
	case float32:
		return toDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return parseDecimal(string(n))
	case string:
		return parseDecimal(n)
	}
	return decimal.Decimal{}, fmt.Errorf("must be a number")
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("must be a number")
	}
	return d, nil
}
