package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/property-mcp/internal/domain"
)

// Renderer turns a property into listing copy
type Renderer interface {
	Resolve(lang, tone string) (string, string, error)
	Render(p *domain.Property, lang, tone string) (*domain.RenderedContent, error)
}

// ContentCache stores rendered content. Get returns nil, nil on a miss.
type ContentCache interface {
	Get(ctx context.Context, key string) (*domain.RenderedContent, error)
	Set(ctx context.Context, key string, content *domain.RenderedContent) error
}

// ContentService generates marketing copy for stored properties
type ContentService struct {
	properties *PropertyService
	renderer   Renderer
	cache      ContentCache
	validate   *validator.Validate
}

// NewContentService creates a new content service. cache may be nil.
func NewContentService(properties *PropertyService, renderer Renderer, cache ContentCache) *ContentService {
	return &ContentService{
		properties: properties,
		renderer:   renderer,
		cache:      cache,
		validate:   newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var generationArgs = map[string]bool{
	"property_id":     true,
	"target_language": true,
	"tone":            true,
	"format":          true,
}

// ParseGenerationArgs builds a request from tool arguments
func ParseGenerationArgs(raw map[string]any) (domain.GenerationRequest, error) {
	var req domain.GenerationRequest
	if err := rejectUnknown(raw, generationArgs); err != nil {
		return req, err
	}

	id, err := ParsePropertyArgs(map[string]any{"property_id": raw["property_id"]})
	if err != nil {
		return req, err
	}
	req.PropertyID = id

	for _, arg := range []struct {
		field string
		dst   *string
	}{
		{"target_language", &req.Language},
		{"tone", &req.Tone},
		{"format", &req.Format},
	} {
		v, err := optionalString(raw, arg.field)
		if err != nil {
			return req, err
		}
		if v != nil {
			*arg.dst = strings.TrimSpace(*v)
		}
	}
	req.Format = strings.ToLower(req.Format)
	return req, nil
}

// Generate resolves the property and renders content for it
func (s *ContentService) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.RenderedContent, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	lang, tone, err := s.renderer.Resolve(req.Language, req.Tone)
	if err != nil {
		return nil, err
	}

	key := cacheKey(property.ID, property.UpdatedAt, lang, tone)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("Content cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	content, err := s.renderer.Render(property, lang, tone)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, content); err != nil {
			log.Warn().Err(err).Msg("Content cache write failed")
		}
	}

	return content, nil
}

// cacheKey changes whenever the property is updated
func cacheKey(id uuid.UUID, updatedAt time.Time, lang, tone string) string {
	return fmt.Sprintf("%s:%d:%s:%s", id, updatedAt.UnixNano(), lang, tone)
}

// validationError reports the first failed field of a validator error
func validationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return domain.NewValidationError(fe.Field(), "failed %s check", fe.Tag())
	}
	return domain.NewValidationError("request", "%v", err)
}
