package mcp

import (
	"context"
	"encoding/json"
	"sort"
)

// DigestURI names the daily listings resource
const DigestURI = "realestate://listings/today"

type resource struct {
	description resourceDescription
	read        func(ctx context.Context) (any, error)
}

func (s *Server) resourceTable() []resource {
	return []resource{
		{
			description: resourceDescription{
				URI:         DigestURI,
				Name:        "daily_listings",
				Description: "Daily digest of property listings created within the last 24 hours",
				MIMEType:    "application/json",
			},
			read: s.dailyListings,
		},
	}
}

func indexResources(resources []resource) map[string]*resource {
	index := make(map[string]*resource, len(resources))
	for i := range resources {
		index[resources[i].description.URI] = &resources[i]
	}
	return index
}

func (s *Server) handleResourcesList(context.Context, *Request, *call) (any, *RPCError) {
	uris := make([]string, 0, len(s.resources))
	for uri := range s.resources {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	descriptions := make([]resourceDescription, 0, len(uris))
	for _, uri := range uris {
		descriptions = append(descriptions, s.resources[uri].description)
	}
	return resourcesListResult{Resources: descriptions}, nil
}

func (s *Server) handleResourcesRead(ctx context.Context, req *Request, c *call) (any, *RPCError) {
	var params resourcesReadParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}

	r, ok := s.resources[params.URI]
	if !ok {
		return nil, &RPCError{
			Code:    codeInvalidParams,
			Message: "unknown resource: " + params.URI,
			Data:    &ErrorInfo{Kind: KindNotFound},
		}
	}
	c.capability = params.URI

	payload, err := r.read(ctx)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, rpcErrorFor(err)
	}

	return resourcesReadResult{
		Contents: []resourceContent{{
			URI:      params.URI,
			MIMEType: r.description.MIMEType,
			Text:     string(text),
		}},
	}, nil
}

func (s *Server) dailyListings(ctx context.Context) (any, error) {
	return s.services.Digest.Digest(ctx, s.opts.Now())
}
