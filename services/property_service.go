package services

import (
	"context"
	"errors"
	"time"

	"github.com/pilab-dev/shadow-social/domain"
	"github.com/pilab-dev/shadow-social/internal/metrics"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/pilab-dev/shadow-social/services")

var ErrEmptyPropertyKey = errors.New("property key is required")

// PropertyStatus summarises a stored value for the property editor.
type PropertyStatus struct {
	Key                  string       `json:"key" yaml:"key"`
	UserID               string       `json:"user_id" yaml:"user_id"`
	Name                 string       `json:"name" yaml:"name"`
	IsValid              bool         `json:"is_valid" yaml:"is_valid"`
	ExpiresAt            time.Time    `json:"expires_at" yaml:"expires_at"`
	ExpiresInSeconds     int64        `json:"expires_in_seconds" yaml:"expires_in_seconds"`
	Scope                []string     `json:"scope" yaml:"scope"`
	BusinessPages        int          `json:"business_pages" yaml:"business_pages"`
	SelectedBusinessPage *PageSummary `json:"selected_business_page,omitempty" yaml:"selected_business_page,omitempty"`
}

// PageSummary identifies a business page without its access token.
type PageSummary struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// PropertyService reads and writes OAuth property values through an optional
// cache in front of the repository.
type PropertyService struct {
	repo  domain.PropertyValueRepository
	cache domain.PropertyValueCache
	now   func() time.Time
}

// NewPropertyService creates a PropertyService. cache may be nil.
func NewPropertyService(repo domain.PropertyValueRepository, cache domain.PropertyValueCache) *PropertyService {
	return &PropertyService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// Load returns the value stored for key.
func (s *PropertyService) Load(ctx context.Context, key string) (*domain.FacebookOAuthData, error) {
	ctx, span := tracer.Start(ctx, "PropertyService.Load")
	defer span.End()
	span.SetAttributes(attribute.String("property.key", key))

	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			metrics.PropertyLoadsTotal.WithLabelValues(metrics.SourceCache).Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))

			return data, nil
		}
	}

	data, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrPropertyNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return nil, err
	}
	metrics.PropertyLoadsTotal.WithLabelValues(metrics.SourceStorage).Inc()

	s.fillCache(ctx, key, data)

	return data, nil
}

// Save replaces the value stored for key.
func (s *PropertyService) Save(ctx context.Context, key string, data *domain.FacebookOAuthData) error {
	ctx, span := tracer.Start(ctx, "PropertyService.Save")
	defer span.End()
	span.SetAttributes(attribute.String("property.key", key))

	if key == "" {
		return ErrEmptyPropertyKey
	}

	if err := s.repo.Save(ctx, key, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}
	metrics.PropertySavesTotal.Inc()

	s.fillCache(ctx, key, data)

	log.Ctx(ctx).Info().
		Str("property", key).
		Str("facebook_user_id", data.ID).
		Time("expires_at", data.ExpiresAt).
		Msg("property value saved")

	return nil
}

// Delete removes the value stored for key.
func (s *PropertyService) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "PropertyService.Delete")
	defer span.End()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("property", key).Msg("failed to evict property value")
		}
	}

	return s.repo.Delete(ctx, key)
}

// SelectBusinessPage marks one of the linked pages as selected and stores the
// updated value.
func (s *PropertyService) SelectBusinessPage(ctx context.Context, key, pageID string) (*domain.FacebookOAuthData, error) {
	data, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := data.SelectBusinessPage(pageID); err != nil {
		return nil, err
	}

	if err := s.Save(ctx, key, data); err != nil {
		return nil, err
	}

	return data, nil
}

// Status loads the value for key and reports its local validity.
func (s *PropertyService) Status(ctx context.Context, key string) (*PropertyStatus, error) {
	data, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	return s.StatusOf(key, data), nil
}

// StatusOf reports the local validity of data.
func (s *PropertyService) StatusOf(key string, data *domain.FacebookOAuthData) *PropertyStatus {
	return NewPropertyStatus(key, data, s.now())
}

// NewPropertyStatus summarises data as of now.
func NewPropertyStatus(key string, data *domain.FacebookOAuthData, now time.Time) *PropertyStatus {
	now = now.UTC()
	valid := metrics.ObserveValidity(data.IsValidAt(now))

	expiresIn := int64(data.ExpiresIn(now) / time.Second)
	if expiresIn < 0 {
		expiresIn = 0
	}

	var selected *PageSummary
	if page := data.SelectedBusinessPage; page != nil {
		selected = &PageSummary{ID: page.ID, Name: page.Name}
	}

	return &PropertyStatus{
		Key:                  key,
		UserID:               data.ID,
		Name:                 data.Name,
		IsValid:              valid,
		ExpiresAt:            data.ExpiresAt,
		ExpiresInSeconds:     expiresIn,
		Scope:                data.Scope,
		BusinessPages:        len(data.BusinessPages),
		SelectedBusinessPage: selected,
	}
}

func (s *PropertyService) fillCache(ctx context.Context, key string, data *domain.FacebookOAuthData) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, key, data); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("property", key).Msg("failed to cache property value")
	}
}
