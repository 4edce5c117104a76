package content

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Rrens/property-mcp/internal/domain"
)

// locale holds the copy that is not part of a template
type locale struct {
	tag      language.Tag
	types    map[domain.PropertyType]string
	statuses map[domain.PropertyStatus]string
	// currency renders an already localized amount
	currency string
}

var locales = map[string]locale{
	"en": {
		tag: language.English,
		types: map[domain.PropertyType]string{
			domain.TypeApartment: "Apartment",
			domain.TypeVilla:     "Villa",
			domain.TypePenthouse: "Penthouse",
			domain.TypeTownhouse: "Townhouse",
			domain.TypeStudio:    "Studio",
			domain.TypeHouse:     "House",
		},
		statuses: map[domain.PropertyStatus]string{
			domain.StatusAvailable: "Available",
			domain.StatusSold:      "Sold",
		},
		currency: "€%s",
	},
	"pt": {
		tag: language.Portuguese,
		types: map[domain.PropertyType]string{
			domain.TypeApartment: "Apartamento",
			domain.TypeVilla:     "Moradia",
			domain.TypePenthouse: "Penthouse",
			domain.TypeTownhouse: "Moradia em banda",
			domain.TypeStudio:    "Estúdio",
			domain.TypeHouse:     "Casa",
		},
		statuses: map[domain.PropertyStatus]string{
			domain.StatusAvailable: "Disponível",
			domain.StatusSold:      "Vendido",
		},
		currency: "%s €",
	},
}

func localeFor(lang string) locale {
	if l, ok := locales[lang]; ok {
		return l
	}
	return locales["en"]
}

// feature is one rendered entry of the features map
type feature struct {
	Key  string
	Text string
}

// view is the data passed to listing templates
type view struct {
	Title       string
	City        string
	Address     string
	Price       string
	Type        string
	Status      string
	Bedrooms    string
	Bathrooms   string
	Area        string
	Description string
	Features    []feature
	Highlights  string
}

const highlightCount = 3

func (l locale) view(p *domain.Property, lang string) view {
	printer := message.NewPrinter(l.tag)

	features := l.features(printer, p.Features)
	highlights := make([]string, 0, highlightCount)
	for i := 0; i < len(features) && i < highlightCount; i++ {
		highlights = append(highlights, strings.ToLower(features[i].Text))
	}

	return view{
		Title:       p.Title,
		City:        p.City,
		Address:     p.Address,
		Price:       l.price(printer, p.Price),
		Type:        l.typeName(p.Type),
		Status:      l.statusName(p.Status),
		Bedrooms:    printer.Sprint(number.Decimal(p.Bedrooms)),
		Bathrooms:   printer.Sprint(number.Decimal(p.Bathrooms)),
		Area:        printer.Sprintf("%v m²", number.Decimal(p.AreaSqm, number.MaxFractionDigits(1))),
		Description: p.LocalizedDescription(lang),
		Features:    features,
		Highlights:  strings.Join(highlights, ", "),
	}
}

func (l locale) price(printer *message.Printer, m domain.Money) string {
	var amount string
	if m%100 == 0 {
		amount = printer.Sprint(number.Decimal(m.Major()))
	} else {
		amount = printer.Sprint(number.Decimal(m.Decimal().InexactFloat64(), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	}
	return strings.Replace(l.currency, "%s", amount, 1)
}

func (l locale) typeName(t domain.PropertyType) string {
	if name, ok := l.types[t]; ok {
		return name
	}
	return humanize(string(t), l.tag)
}

func (l locale) statusName(s domain.PropertyStatus) string {
	if name, ok := l.statuses[s]; ok {
		return name
	}
	return humanize(string(s), l.tag)
}

// features renders the map in sorted key order. Boolean flags render as their
// label and are skipped when false.
func (l locale) features(printer *message.Printer, values map[string]any) []feature {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]feature, 0, len(keys))
	for _, k := range keys {
		label := humanize(k, l.tag)
		switch v := values[k].(type) {
		case bool:
			if !v {
				continue
			}
			out = append(out, feature{Key: k, Text: label})
		case nil:
			out = append(out, feature{Key: k, Text: label})
		case string:
			out = append(out, feature{Key: k, Text: label + ": " + v})
		case float64:
			out = append(out, feature{Key: k, Text: label + ": " + printer.Sprint(number.Decimal(v))})
		case int:
			out = append(out, feature{Key: k, Text: label + ": " + printer.Sprint(number.Decimal(v))})
		case int64:
			out = append(out, feature{Key: k, Text: label + ": " + printer.Sprint(number.Decimal(v))})
		default:
			out = append(out, feature{Key: k, Text: label + ": " + printer.Sprint(v)})
		}
	}
	return out
}

// humanize turns a snake_case key into a capitalized label
func humanize(key string, tag language.Tag) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(key))
	if len(words) == 0 {
		return key
	}
	words[0] = cases.Title(tag).String(words[0])
	return strings.Join(words, " ")
}
