package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/latienda/backend/category/otel"
	"github.com/latienda/backend/category/pkg/request"
	"github.com/latienda/backend/category/pkg/response"
	inErrors "github.com/latienda/backend/internal/errors"
	"github.com/latienda/backend/internal/log"
	inOtel "github.com/latienda/backend/internal/otel"
	"github.com/latienda/backend/internal/repository"
)

const pgErrForeignKeyViolation = "23503"

type CategoryService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewCategoryService(pool *pgxpool.Pool, queries *repository.Queries) *CategoryService {
	return &CategoryService{pool: pool, queries: queries}
}

func (s *CategoryService) CreateCategory(
	c context.Context,
	param request.CreateCategory,
) (response.Category, error) {
	c, span := otel.Tracer.Start(c, "CategoryService CreateCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CategoryService CreateCategory").
		Str(log.KeyProcess, "inserting category").
		Logger()

	logger.Trace().Msg("inserting category")
	category, err := s.queries.InsertCategory(c, repository.InsertCategoryParams{
		Name:        param.Name,
		Description: param.Description,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting category with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Category{}, err
	}
	logger = logger.With().Str(log.KeyCategoryID, category.ID.String()).Logger()
	logger.Info().Msg("inserted category")

	return category.Response(), nil
}

func (s *CategoryService) FindCategories(c context.Context) ([]response.Category, error) {
	c, span := otel.Tracer.Start(c, "CategoryService FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CategoryService FindCategories").
		Str(log.KeyProcess, "finding categories").
		Logger()

	logger.Trace().Msg("finding categories")
	categories, err := s.queries.FindCategories(c)
	if err != nil {
		err = fmt.Errorf("failed finding categories with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("categories", len(categories)).Msg("found categories")

	res := make([]response.Category, 0, len(categories))
	for _, category := range categories {
		res = append(res, category.Response())
	}
	return res, nil
}

func (s *CategoryService) FindCategoryById(
	c context.Context,
	id uuid.UUID,
) (response.Category, error) {
	c, span := otel.Tracer.Start(c, "CategoryService FindCategoryById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CategoryService FindCategoryById").
		Str(log.KeyCategoryID, id.String()).
		Str(log.KeyProcess, "finding category").
		Logger()

	logger.Trace().Msg("finding category")
	category, err := s.queries.FindCategoryById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding category with error=%w", inErrors.ErrCategoryNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Category{}, inErrors.ErrCategoryNotFound
		}
		err = fmt.Errorf("failed finding category with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Category{}, err
	}
	logger.Info().Msg("found category")

	return category.Response(), nil
}

func (s *CategoryService) UpdateCategory(
	c context.Context,
	id uuid.UUID,
	param request.UpdateCategory,
) (response.Category, error) {
	c, span := otel.Tracer.Start(c, "CategoryService UpdateCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CategoryService UpdateCategory").
		Str(log.KeyCategoryID, id.String()).
		Str(log.KeyProcess, "updating category").
		Logger()

	logger.Trace().Msg("updating category")
	category, err := s.queries.UpdateCategory(c, repository.UpdateCategoryParams{
		ID:          id,
		Name:        param.Name,
		Description: param.Description,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed updating category with error=%w", inErrors.ErrCategoryNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Category{}, inErrors.ErrCategoryNotFound
		}
		err = fmt.Errorf("failed updating category with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Category{}, err
	}
	logger.Info().Msg("updated category")

	return category.Response(), nil
}

func (s *CategoryService) DeleteCategory(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CategoryService DeleteCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CategoryService DeleteCategory").
		Str(log.KeyCategoryID, id.String()).
		Str(log.KeyProcess, "deleting category").
		Logger()

	logger.Trace().Msg("deleting category")
	deleted, err := s.queries.DeleteCategory(c, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			err = fmt.Errorf(
				"failed deleting category with error=%w",
				inErrors.ErrCategoryReferenced,
			)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return inErrors.ErrCategoryReferenced
		}
		err = fmt.Errorf("failed deleting category with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if deleted == 0 {
		err = fmt.Errorf("failed deleting category with error=%w", inErrors.ErrCategoryNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return inErrors.ErrCategoryNotFound
	}
	logger.Info().Msg("deleted category")

	return nil
}
