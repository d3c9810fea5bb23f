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

	"github.com/latienda/backend/cart/otel"
	"github.com/latienda/backend/cart/pkg/request"
	"github.com/latienda/backend/cart/pkg/response"
	inErrors "github.com/latienda/backend/internal/errors"
	"github.com/latienda/backend/internal/log"
	inOtel "github.com/latienda/backend/internal/otel"
	"github.com/latienda/backend/internal/repository"
)

const pgErrUniqueViolation = "23505"

type CartService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewCartService(pool *pgxpool.Pool, queries *repository.Queries) *CartService {
	return &CartService{pool: pool, queries: queries}
}

// CreateCart opens a new active cart. A user can only have one at a time; the
// partial unique index on carts turns a second attempt into ErrActiveCartExists.
func (s *CartService) CreateCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService CreateCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService CreateCart").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProcess, "inserting cart").
		Logger()

	logger.Trace().Msg("inserting cart")
	cart, err := s.queries.InsertCart(c, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			err = fmt.Errorf("failed inserting cart with error=%w", inErrors.ErrActiveCartExists)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, inErrors.ErrActiveCartExists
		}
		err = fmt.Errorf("failed inserting cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Msg("inserted cart")

	return response.Cart{
		ID:        cart.ID,
		UserID:    cart.UserID,
		IsActive:  cart.IsActive,
		CartItems: []response.CartItem{},
		CreatedAt: cart.CreatedAt.Time,
		UpdatedAt: cart.UpdatedAt.Time,
	}, nil
}

func (s *CartService) FindActiveCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindActiveCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService FindActiveCart").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProcess, "finding active cart").
		Logger()

	logger.Trace().Msg("finding active cart")
	row, err := s.queries.FindActiveCartByUserId(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding active cart with error=%w", inErrors.ErrNoActiveCart)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, inErrors.ErrNoActiveCart
		}
		err = fmt.Errorf("failed finding active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	cart, err := row.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int("cartItems", len(cart.CartItems)).Msg("found active cart")

	return cart, nil
}

// AddItem puts a product into the user's active cart, creating the cart when
// none exists. Adding a product already in the cart merges quantities. The
// merged quantity is validated against current stock so the user learns about
// a shortage before checkout, though checkout remains the authority.
func (s *CartService) AddItem(
	c context.Context,
	userID uuid.UUID,
	param request.AddCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer func(lg zerolog.Logger) {
		rollbackErr := tx.Rollback(c)
		if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			rollbackErr = fmt.Errorf("failed rolling back transaction with error=%w", rollbackErr)
			inOtel.RecordError(rollbackErr, span)
			lg.Error().Err(rollbackErr).Msg(rollbackErr.Error())
		}
	}(logger)
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	cart, err := s.findOrCreateCart(c, qtx, userID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	product, err := qtx.FindProductById(c, param.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding product with error=%w", inErrors.ErrProductNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if !product.IsActive {
		err = fmt.Errorf(
			"failed adding product=%q with error=%w",
			product.Name,
			inErrors.ErrProductUnavailable,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, inErrors.ErrProductUnavailable
	}

	logger = logger.With().Str(log.KeyProcess, "upserting cart item").Logger()
	logger.Trace().Msg("upserting cart item")
	item, err := qtx.UpsertCartItem(c, repository.UpsertCartItemParams{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  param.Quantity,
		UnitPrice: product.Price,
	})
	if err != nil {
		err = fmt.Errorf("failed upserting cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if item.Quantity > product.Stock {
		stockErr := &inErrors.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   item.Quantity,
		}
		inOtel.RecordError(stockErr, span)
		logger.Error().Err(stockErr).Msg(stockErr.Error())
		return response.Cart{}, stockErr
	}
	logger.Info().Msg("upserted cart item")

	err = tx.Commit(c)
	if err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	return s.FindActiveCart(c, userID)
}

func (s *CartService) findOrCreateCart(
	c context.Context,
	qtx *repository.Queries,
	userID uuid.UUID,
) (repository.Cart, error) {
	cart, err := qtx.FindActiveCartByUserId(c, userID)
	if err == nil {
		return repository.Cart{
			ID:        cart.ID,
			UserID:    cart.UserID,
			IsActive:  cart.IsActive,
			CreatedAt: cart.CreatedAt,
			UpdatedAt: cart.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return repository.Cart{}, fmt.Errorf("failed finding active cart with error=%w", err)
	}
	created, err := qtx.InsertCart(c, userID)
	if err != nil {
		return repository.Cart{}, fmt.Errorf("failed inserting cart with error=%w", err)
	}
	return created, nil
}

func (s *CartService) UpdateItemQuantity(
	c context.Context,
	userID uuid.UUID,
	itemID uuid.UUID,
	param request.UpdateCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService UpdateItemQuantity").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyCartItemID, itemID.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	row, err := s.queries.FindActiveCartByUserId(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding active cart with error=%w", inErrors.ErrNoActiveCart)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, inErrors.ErrNoActiveCart
		}
		err = fmt.Errorf("failed finding active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "checking stock").Logger()
	item, err := s.queries.FindCartItemById(c, repository.FindCartItemByIdParams{
		ID:     itemID,
		CartID: row.ID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed finding cart item with error=%w",
				inErrors.ErrCartItemNotFound,
			)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, inErrors.ErrCartItemNotFound
		}
		err = fmt.Errorf("failed finding cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	product, err := s.queries.FindProductById(c, item.ProductID)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	// advisory, checkout re-runs the authoritative check
	if param.Quantity > product.Stock {
		stockErr := &inErrors.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   param.Quantity,
		}
		inOtel.RecordError(stockErr, span)
		logger.Error().Err(stockErr).Msg(stockErr.Error())
		return response.Cart{}, stockErr
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart item quantity").Logger()
	logger.Trace().Msg("updating cart item quantity")
	_, err = s.queries.UpdateCartItemQuantity(c, repository.UpdateCartItemQuantityParams{
		ID:       itemID,
		CartID:   row.ID,
		Quantity: param.Quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed updating cart item with error=%w",
				inErrors.ErrCartItemNotFound,
			)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, inErrors.ErrCartItemNotFound
		}
		err = fmt.Errorf("failed updating cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("updated cart item quantity")

	return s.FindActiveCart(c, userID)
}

func (s *CartService) RemoveItem(
	c context.Context,
	userID uuid.UUID,
	itemID uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyCartItemID, itemID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	row, err := s.queries.FindActiveCartByUserId(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding active cart with error=%w", inErrors.ErrNoActiveCart)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, inErrors.ErrNoActiveCart
		}
		err = fmt.Errorf("failed finding active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "deleting cart item").Logger()
	logger.Trace().Msg("deleting cart item")
	deleted, err := s.queries.DeleteCartItem(
		c,
		repository.DeleteCartItemParams{ID: itemID, CartID: row.ID},
	)
	if err != nil {
		err = fmt.Errorf("failed deleting cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if deleted == 0 {
		err = fmt.Errorf("failed deleting cart item with error=%w", inErrors.ErrCartItemNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, inErrors.ErrCartItemNotFound
	}
	logger.Info().Msg("deleted cart item")

	return s.FindActiveCart(c, userID)
}

func (s *CartService) ClearCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	row, err := s.queries.FindActiveCartByUserId(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding active cart with error=%w", inErrors.ErrNoActiveCart)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, inErrors.ErrNoActiveCart
		}
		err = fmt.Errorf("failed finding active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Trace().Msg("clearing cart")
	cleared, err := s.queries.DeleteCartItems(c, row.ID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int64("clearedItems", cleared).Msg("cleared cart")

	return s.FindActiveCart(c, userID)
}
