package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/service"
)

// Tool names
const (
	ToolSearchProperties       = "search_properties"
	ToolGetPropertyDetails     = "get_property_details"
	ToolGenerateListingContent = "generate_listing_content"
)

// toolOutput is what a tool handler produces on success
type toolOutput struct {
	text       string
	structured any
}

type tool struct {
	description toolDescription
	handler     func(ctx context.Context, args map[string]any) (toolOutput, error)
}

func (s *Server) toolTable() []tool {
	readOnly := &toolAnnotations{ReadOnlyHint: true, IdempotentHint: true}

	return []tool{
		{
			description: toolDescription{
				Name:        ToolSearchProperties,
				Title:       "Search properties",
				Description: "Search for properties based on filters like city, price range, status and property type",
				InputSchema: objectSchema(map[string]any{
					"city":          stringProp("City name, case-insensitive exact match"),
					"min_price":     numberProp("Minimum price in EUR, inclusive"),
					"max_price":     numberProp("Maximum price in EUR, inclusive"),
					"status":        enumProp("Property status", "available", "sold"),
					"property_type": enumProp("Property type", "apartment", "villa", "penthouse", "townhouse", "studio", "house"),
					"limit":         integerProp("Page size, capped by the server"),
					"offset":        integerProp("Number of matches to skip"),
				}),
				Annotations: readOnly,
			},
			handler: s.searchProperties,
		},
		{
			description: toolDescription{
				Name:        ToolGetPropertyDetails,
				Title:       "Get property details",
				Description: "Get full details for a specific property by its ID, including internal notes",
				InputSchema: objectSchema(map[string]any{
					"property_id": stringProp("UUID of the property"),
				}, "property_id"),
				Annotations: readOnly,
			},
			handler: s.getPropertyDetails,
		},
		{
			description: toolDescription{
				Name:  ToolGenerateListingContent,
				Title: "Generate listing content",
				Description: "Generate SEO-optimized content for a property listing. " +
					"Returns HTML with title, meta tags and content sections, or Markdown.",
				InputSchema: objectSchema(map[string]any{
					"property_id":     stringProp("UUID of the property"),
					"target_language": stringProp("Target language code, e.g. en or pt"),
					"tone":            stringProp("Content tone: professional, casual, luxury or family. Unknown tones use the default"),
					"format":          enumProp("Output format", domain.FormatHTML, domain.FormatMarkdown),
				}, "property_id"),
				Annotations: readOnly,
			},
			handler: s.generateListingContent,
		},
	}
}

func indexTools(tools []tool) map[string]*tool {
	index := make(map[string]*tool, len(tools))
	for i := range tools {
		index[tools[i].description.Name] = &tools[i]
	}
	return index
}

func (s *Server) handleToolsList(context.Context, *Request, *call) (any, *RPCError) {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	descriptions := make([]toolDescription, 0, len(names))
	for _, name := range names {
		descriptions = append(descriptions, s.tools[name].description)
	}
	return toolsListResult{Tools: descriptions}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request, c *call) (any, *RPCError) {
	var params toolsCallParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}

	t, ok := s.tools[params.Name]
	if !ok {
		return nil, protocolError(codeInvalidParams, "unknown tool: "+params.Name)
	}
	c.capability = params.Name

	args, err := decodeArguments(params.Arguments)
	if err != nil {
		result := toolErrorResult(err)
		c.outcome = result.ErrorInfo.Kind
		return result, nil
	}

	out, err := t.handler(ctx, args)
	if err != nil {
		result := toolErrorResult(err)
		c.outcome = result.ErrorInfo.Kind
		return result, nil
	}

	return toolsCallResult{
		Content:           []contentBlock{{Type: "text", Text: out.text}},
		StructuredContent: out.structured,
	}, nil
}

// decodeArguments reads tool arguments as a JSON object, keeping numbers
// exact for price parsing
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, domain.NewValidationError("arguments", "must be a JSON object")
	}
	return args, nil
}

func (s *Server) searchProperties(ctx context.Context, args map[string]any) (toolOutput, error) {
	result, err := s.services.Search.Search(ctx, args)
	if err != nil {
		return toolOutput{}, err
	}
	return jsonOutput(result)
}

func (s *Server) getPropertyDetails(ctx context.Context, args map[string]any) (toolOutput, error) {
	id, err := service.ParsePropertyArgs(args)
	if err != nil {
		return toolOutput{}, err
	}
	property, err := s.services.Properties.GetByID(ctx, id)
	if err != nil {
		return toolOutput{}, err
	}
	return jsonOutput(property)
}

// generatedListing is the structured result of generate_listing_content
type generatedListing struct {
	PropertyID      string `json:"property_id"`
	Language        string `json:"language"`
	Tone            string `json:"tone"`
	Format          string `json:"format"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
}

func (s *Server) generateListingContent(ctx context.Context, args map[string]any) (toolOutput, error) {
	req, err := service.ParseGenerationArgs(args)
	if err != nil {
		return toolOutput{}, err
	}
	content, err := s.services.Content.Generate(ctx, req)
	if err != nil {
		return toolOutput{}, err
	}

	format := req.Format
	if format == "" {
		format = domain.FormatHTML
	}
	return toolOutput{
		text: content.Body(format),
		structured: generatedListing{
			PropertyID:      content.PropertyID.String(),
			Language:        content.Language,
			Tone:            content.Tone,
			Format:          format,
			Title:           content.Title,
			MetaDescription: content.MetaDescription,
		},
	}, nil
}

func jsonOutput(v any) (toolOutput, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolOutput{}, err
	}
	return toolOutput{text: string(data), structured: v}, nil
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func numberProp(description string) map[string]any {
	return map[string]any{"type": []string{"number", "string"}, "description": description}
}

func integerProp(description string) map[string]any {
	return map[string]any{"type": "integer", "minimum": 0, "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": description}
}
