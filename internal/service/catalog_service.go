package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"marketplace/api/internal/metrics"
	"marketplace/api/internal/models"
	"marketplace/api/internal/repository"
	"marketplace/api/internal/result"
)

type CategoryService struct {
	store                 repository.CategoryStore
	fallback              repository.CategoryStore
	fallbackOnUnavailable bool
	metrics               *metrics.Metrics
	log                   zerolog.Logger
}

// NewCategoryService serves categories from store. The fallback store is
// consulted only when store reports KindUnavailable and fallbackOnUnavailable
// is set; every other error is a failure.
func NewCategoryService(
	store repository.CategoryStore,
	fallback repository.CategoryStore,
	fallbackOnUnavailable bool,
	m *metrics.Metrics,
	log zerolog.Logger,
) *CategoryService {
	return &CategoryService{
		store:                 store,
		fallback:              fallback,
		fallbackOnUnavailable: fallbackOnUnavailable,
		metrics:               m,
		log:                   log.With().Str("component", "catalog").Logger(),
	}
}

func (s *CategoryService) List(ctx context.Context) result.Result[[]models.Category] {
	categories, err := s.store.List(ctx)
	if err == nil {
		return result.Success(categories)
	}

	if s.fallbackOnUnavailable && s.fallback != nil && repository.KindOf(err) == repository.KindUnavailable {
		s.log.Warn().Err(err).Msg("category store unavailable, serving built-in categories")
		s.metrics.RecordCategoryFallback()
		categories, fallbackErr := s.fallback.List(ctx)
		if fallbackErr == nil {
			return result.Success(categories)
		}
		err = fallbackErr
	}

	s.log.Error().Err(err).Msg("list categories failed")
	return result.Failure[[]models.Category](result.StatusInternal, MsgCategoriesFailed+err.Error())
}

type CompanyService struct {
	store repository.CompanyStore
	log   zerolog.Logger
}

func NewCompanyService(store repository.CompanyStore, log zerolog.Logger) *CompanyService {
	return &CompanyService{store: store, log: log}
}

func (s *CompanyService) GetByOwner(ctx context.Context, ownerID string) result.Result[models.Company] {
	company, err := s.store.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return result.Failure[models.Company](result.StatusNotFound, MsgCompanyNotFound)
		}
		return internalFailure[models.Company](s.log, err, "find company by owner")
	}
	return result.Success(company)
}
