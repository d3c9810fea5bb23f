package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/latienda/backend/internal/errors"
	"github.com/latienda/backend/internal/log"
	inOtel "github.com/latienda/backend/internal/otel"
	"github.com/latienda/backend/internal/repository"
	"github.com/latienda/backend/product/otel"
	"github.com/latienda/backend/product/pkg/request"
	"github.com/latienda/backend/product/pkg/response"
)

const (
	pgErrForeignKeyViolation = "23503"

	cacheKeyProduct = "products:"
	cacheTtlProduct = 5 * time.Minute
)

type ProductService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
) *ProductService {
	return &ProductService{pool: pool, queries: queries, cache: cache}
}

func (s *ProductService) CreateProduct(
	c context.Context,
	param request.CreateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService CreateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService CreateProduct").
		Str(log.KeyProductName, param.Name).
		Str(log.KeyCategoryID, param.CategoryID.String()).
		Str(log.KeyProcess, "inserting product").
		Logger()

	logger.Trace().Msg("inserting product")
	product, err := s.queries.InsertProduct(c, repository.InsertProductParams{
		CategoryID:  param.CategoryID,
		Name:        param.Name,
		Description: param.Description,
		Price:       repository.NumericFromDecimal(param.Price),
		Stock:       param.Stock,
		IsActive:    true,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			err = fmt.Errorf("failed inserting product with error=%w", inErrors.ErrCategoryNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, inErrors.ErrCategoryNotFound
		}
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger = logger.With().Str(log.KeyProductID, product.ID.String()).Logger()
	logger.Info().Msg("inserted product")

	return product.Response(), nil
}

func (s *ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Logger()

	cacheKey := cacheKeyProduct + id.String()
	cached, err := s.cache.Get(c, cacheKey).Result()
	if err == nil && cached != "" {
		res := response.Product{}
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			logger.Debug().Str(log.KeyCacheKey, cacheKey).Msg("found product in cache")
			return res, nil
		}
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	product, err := s.queries.FindProductById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding product with error=%w", inErrors.ErrProductNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product")

	res := product.Response()
	if encoded, err := json.Marshal(res); err == nil {
		if err := s.cache.Set(c, cacheKey, encoded, cacheTtlProduct).Err(); err != nil {
			logger.Warn().Err(err).Str(log.KeyCacheKey, cacheKey).Msg("failed caching product")
		}
	}

	return res, nil
}

func (s *ProductService) FindProducts(
	c context.Context,
	param request.FindProducts,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyProcess, "finding products").
		Logger()

	if param.Limit <= 0 {
		param.Limit = 20
	}

	logger.Trace().Msg("finding products")
	products, err := s.queries.FindProducts(c, repository.FindProductsParams{
		Name:       param.Name,
		MinPrice:   priceFilter(param.MinPrice),
		MaxPrice:   priceFilter(param.MaxPrice),
		ActiveOnly: param.ActiveOnly,
		Limit:      param.Limit,
		Offset:     param.Offset,
	})
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("products", len(products)).Msg("found products")

	res := make([]response.Product, 0, len(products))
	for _, product := range products {
		res = append(res, product.Response())
	}
	return res, nil
}

// priceFilter parses a price bound. An empty or malformed value yields an
// invalid Numeric, which the query treats as no bound.
func priceFilter(value string) pgtype.Numeric {
	if value == "" {
		return pgtype.Numeric{}
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return pgtype.Numeric{}
	}
	return repository.NumericFromDecimal(d)
}

func (s *ProductService) UpdateProduct(
	c context.Context,
	id uuid.UUID,
	param request.UpdateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyProcess, "updating product").
		Logger()

	logger.Trace().Msg("updating product")
	product, err := s.queries.UpdateProduct(c, repository.UpdateProductParams{
		ID:          id,
		CategoryID:  param.CategoryID,
		Name:        param.Name,
		Description: param.Description,
		Price:       repository.NumericFromDecimal(param.Price),
		Stock:       param.Stock,
		IsActive:    param.IsActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed updating product with error=%w", inErrors.ErrProductNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, inErrors.ErrProductNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			err = fmt.Errorf("failed updating product with error=%w", inErrors.ErrCategoryNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, inErrors.ErrCategoryNotFound
		}
		err = fmt.Errorf("failed updating product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("updated product")

	s.invalidateProductCache(c, id)

	return product.Response(), nil
}

// DeleteProduct removes a product that no cart or order line references. The
// restrictive foreign keys on those tables surface as ErrProductReferenced.
func (s *ProductService) DeleteProduct(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService DeleteProduct").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyProcess, "deleting product").
		Logger()

	logger.Trace().Msg("deleting product")
	deleted, err := s.queries.DeleteProduct(c, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			err = fmt.Errorf("failed deleting product with error=%w", inErrors.ErrProductReferenced)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return inErrors.ErrProductReferenced
		}
		err = fmt.Errorf("failed deleting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if deleted == 0 {
		err = fmt.Errorf("failed deleting product with error=%w", inErrors.ErrProductNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return inErrors.ErrProductNotFound
	}
	logger.Info().Msg("deleted product")

	s.invalidateProductCache(c, id)

	return nil
}

func (s *ProductService) invalidateProductCache(c context.Context, id uuid.UUID) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService invalidateProductCache").
		Logger()
	cacheKey := cacheKeyProduct + id.String()
	if err := s.cache.Del(c, cacheKey).Err(); err != nil {
		logger.Warn().Err(err).Str(log.KeyCacheKey, cacheKey).Msg("failed invalidating product cache")
	}
}
