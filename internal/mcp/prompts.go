package mcp

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/service"
)

// PromptMarketingEmail names the marketing email prompt
const PromptMarketingEmail = "marketing_email"

type prompt struct {
	description promptDescription
	get         func(ctx context.Context, args map[string]string) (promptsGetResult, error)
}

func (s *Server) promptTable() []prompt {
	return []prompt{
		{
			description: promptDescription{
				Name:        PromptMarketingEmail,
				Description: "Generate a marketing email prompt for a property",
				Arguments: []promptArgument{
					{Name: "property_id", Description: "UUID of the property to market", Required: true},
				},
			},
			get: s.marketingEmail,
		},
	}
}

func indexPrompts(prompts []prompt) map[string]*prompt {
	index := make(map[string]*prompt, len(prompts))
	for i := range prompts {
		index[prompts[i].description.Name] = &prompts[i]
	}
	return index
}

func (s *Server) handlePromptsList(context.Context, *Request, *call) (any, *RPCError) {
	names := make([]string, 0, len(s.prompts))
	for name := range s.prompts {
		names = append(names, name)
	}
	sort.Strings(names)

	descriptions := make([]promptDescription, 0, len(names))
	for _, name := range names {
		descriptions = append(descriptions, s.prompts[name].description)
	}
	return promptsListResult{Prompts: descriptions}, nil
}

func (s *Server) handlePromptsGet(ctx context.Context, req *Request, c *call) (any, *RPCError) {
	var params promptsGetParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}

	p, ok := s.prompts[params.Name]
	if !ok {
		return nil, &RPCError{
			Code:    codeInvalidParams,
			Message: "unknown prompt: " + params.Name,
			Data:    &ErrorInfo{Kind: KindNotFound},
		}
	}
	c.capability = params.Name

	result, err := p.get(ctx, params.Arguments)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	return result, nil
}

func (s *Server) marketingEmail(ctx context.Context, args map[string]string) (promptsGetResult, error) {
	raw := make(map[string]any, len(args))
	for k, v := range args {
		raw[k] = v
	}
	id, err := service.ParsePropertyArgs(raw)
	if err != nil {
		return promptsGetResult{}, err
	}
	property, err := s.services.Properties.GetByID(ctx, id)
	if err != nil {
		return promptsGetResult{}, err
	}

	return promptsGetResult{
		Description: "Marketing email for " + property.Title,
		Messages: []promptMessage{{
			Role:    "user",
			Content: contentBlock{Type: "text", Text: marketingEmailText(property)},
		}},
	}, nil
}

var emailPrinter = message.NewPrinter(language.English)

func marketingEmailText(p *domain.Property) string {
	var b strings.Builder

	b.WriteString("Write a compelling marketing email for this property:\n\n")
	fmt.Fprintf(&b, "Property: %s\n", p.Title)
	fmt.Fprintf(&b, "Location: %s, %s\n", p.City, orDefault(p.Address, "N/A"))
	fmt.Fprintf(&b, "Price: €%s\n", emailPrinter.Sprintf("%d", p.Price.Decimal().Round(0).IntPart()))
	fmt.Fprintf(&b, "Type: %s\n", orDefault(string(p.Type), "N/A"))
	fmt.Fprintf(&b, "Bedrooms: %d | Bathrooms: %d\n", p.Bedrooms, p.Bathrooms)
	fmt.Fprintf(&b, "Area: %s m²\n", strconv.FormatFloat(p.AreaSqm, 'f', -1, 64))
	fmt.Fprintf(&b, "Features: %s\n\n", orDefault(featureList(p.Features), "N/A"))
	fmt.Fprintf(&b, "Description: %s\n\n", orDefault(p.Description, "No description available"))
	b.WriteString(`The email should:
- Have an attention-grabbing subject line
- Highlight the key selling points
- Create urgency without being pushy
- Include a clear call-to-action
- Be professional yet engaging`)

	return b.String()
}

// featureList flattens the features map in key order
func featureList(features map[string]any) string {
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		label := strings.ReplaceAll(k, "_", " ")
		switch v := features[k].(type) {
		case bool:
			if v {
				parts = append(parts, label)
			}
		case nil:
			parts = append(parts, label)
		default:
			parts = append(parts, fmt.Sprintf("%s: %v", label, v))
		}
	}
	return strings.Join(parts, ", ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
