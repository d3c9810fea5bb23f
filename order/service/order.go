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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/latienda/backend/internal/errors"
	"github.com/latienda/backend/internal/log"
	inOtel "github.com/latienda/backend/internal/otel"
	"github.com/latienda/backend/internal/repository"
	"github.com/latienda/backend/order/otel"
	"github.com/latienda/backend/order/payment"
	"github.com/latienda/backend/order/pkg/request"
	"github.com/latienda/backend/order/pkg/response"
)

const (
	pgErrUniqueViolation = "23505"

	maxOrderNumberAttempts = 3

	cacheKeyOrder = "orders:"
	cacheTtlOrder = 5 * time.Minute
)

type OrderService struct {
	pool       *pgxpool.Pool
	queries    *repository.Queries
	cache      *redis.Client
	authorizer payment.Authorizer
}

func NewOrderService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	authorizer payment.Authorizer,
) *OrderService {
	return &OrderService{pool: pool, queries: queries, cache: cache, authorizer: authorizer}
}

// Checkout converts the user's active cart into an order. Stock is decremented
// conditionally for every line inside a single transaction, so a concurrent
// checkout can never oversell; the first failure rolls the whole order back.
func (s *OrderService) Checkout(
	c context.Context,
	userID uuid.UUID,
	param request.Checkout,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService Checkout").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		rollbackErr := tx.Rollback(c)
		if rollbackErr != nil {
			if errors.Is(rollbackErr, pgx.ErrTxClosed) {
				return
			}
			rollbackErr = fmt.Errorf("failed rolling back transaction with error=%w", rollbackErr)
			inOtel.RecordError(rollbackErr, span)
			l.Error().Err(rollbackErr).Msg(rollbackErr.Error())
			return
		}
		l.Info().Msg("rolled back transaction")
	}(logger)
	qtx := s.queries.WithTx(tx)

	// Lock the cart row before reading its lines. A concurrent checkout of
	// the same cart waits here and then finds the lines already gone.
	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	logger.Trace().Msg("locking active cart")
	_, err = qtx.FindActiveCartByUserIdForUpdate(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding active cart with error=%w", inErrors.ErrNoActiveCart)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, inErrors.ErrNoActiveCart
		}
		err = fmt.Errorf("failed locking active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	cartRow, err := qtx.FindActiveCartByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	cart, err := cartRow.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if len(cart.CartItems) == 0 {
		err = fmt.Errorf("failed checking out with error=%w", inErrors.ErrEmptyCart)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrEmptyCart
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Int("cartItems", len(cart.CartItems)).Msg("found active cart")

	logger = logger.With().Str(log.KeyProcess, "reserving stock").Logger()
	total := decimal.Zero
	orderItems := make([]repository.InsertOrderItemParams, 0, len(cart.CartItems))
	for _, item := range cart.CartItems {
		itemLogger := logger.With().
			Str(log.KeyProductID, item.ProductID.String()).
			Int32(log.KeyQuantity, item.Quantity).
			Logger()

		itemLogger.Trace().Msg("finding product")
		product, err := qtx.FindProductById(c, item.ProductID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				err = fmt.Errorf(
					"failed finding productId=%s with error=%w",
					item.ProductID,
					inErrors.ErrProductNotFound,
				)
				inOtel.RecordError(err, span)
				itemLogger.Error().Err(err).Msg(err.Error())
				return response.Order{}, inErrors.ErrProductNotFound
			}
			err = fmt.Errorf("failed finding productId=%s with error=%w", item.ProductID, err)
			inOtel.RecordError(err, span)
			itemLogger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		if !product.IsActive {
			err = fmt.Errorf(
				"failed reserving product=%q with error=%w",
				product.Name,
				inErrors.ErrProductUnavailable,
			)
			inOtel.RecordError(err, span)
			itemLogger.Error().Err(err).Msg(err.Error())
			return response.Order{}, inErrors.ErrProductUnavailable
		}

		itemLogger.Trace().Msg("decrementing stock")
		affected, err := qtx.DecrementStockIfAvailable(
			c,
			repository.DecrementStockParams{ID: item.ProductID, Quantity: item.Quantity},
		)
		if err != nil {
			err = fmt.Errorf("failed decrementing stock with error=%w", err)
			inOtel.RecordError(err, span)
			itemLogger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		if affected == 0 {
			// The guard re-evaluates against the latest committed stock, so
			// report that value rather than the row read at the top of the loop.
			fresh, err := qtx.FindProductById(c, item.ProductID)
			if err != nil {
				err = fmt.Errorf("failed finding productId=%s with error=%w", item.ProductID, err)
				inOtel.RecordError(err, span)
				itemLogger.Error().Err(err).Msg(err.Error())
				return response.Order{}, err
			}
			stockErr := &inErrors.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   fresh.Stock,
				Requested:   item.Quantity,
			}
			inOtel.RecordError(stockErr, span)
			itemLogger.Error().Err(stockErr).Msg(stockErr.Error())
			return response.Order{}, stockErr
		}
		itemLogger.Debug().Msg("decremented stock")

		price := repository.DecimalFromNumeric(product.Price)
		subtotal := price.Mul(decimal.NewFromInt32(item.Quantity))
		total = total.Add(subtotal)
		orderItems = append(orderItems, repository.InsertOrderItemParams{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   repository.NumericFromDecimal(price),
			Subtotal:    repository.NumericFromDecimal(subtotal),
		})
	}
	logger = logger.With().Str(log.KeyTotal, total.String()).Logger()
	logger.Info().Msg("reserved stock for all cart items")

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Trace().Msg("inserting order")
	order, err := s.insertOrderWithRetry(c, tx, repository.InsertOrderParams{
		UserID:          userID,
		Status:          repository.OrderStatusPending,
		Total:           repository.NumericFromDecimal(total),
		ShippingAddress: param.ShippingAddress,
		PaymentNote:     param.MaskedCard(),
		Notes:           param.Notes,
	})
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().
		Str(log.KeyOrderID, order.ID.String()).
		Str(log.KeyOrderNumber, order.OrderNumber).
		Logger()
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(log.KeyProcess, "inserting order items").Logger()
	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	inserted, err := qtx.InsertOrderItems(c, orderItems)
	if err != nil {
		err = fmt.Errorf("failed inserting order items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Int64("orderItems", inserted).Msg("inserted order items")

	logger = logger.With().Str(log.KeyProcess, "authorizing payment").Logger()
	logger.Trace().Msg("authorizing payment")
	result, err := s.authorizer.Authorize(c, payment.Authorization{
		OrderNumber: order.OrderNumber,
		Amount:      total,
		CardNumber:  param.CardNumber,
		CardHolder:  param.CardHolder,
	})
	if err != nil {
		err = fmt.Errorf("failed authorizing payment with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if !result.Approved {
		err = fmt.Errorf(
			"failed authorizing payment for orderNumber=%s with error=%w",
			order.OrderNumber,
			inErrors.ErrPaymentDeclined,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrPaymentDeclined
	}
	paymentNote := fmt.Sprintf("%s ref=%s", param.MaskedCard(), result.Reference)
	err = qtx.UpdateOrderPaymentNote(
		c,
		repository.UpdateOrderPaymentNoteParams{ID: order.ID, PaymentNote: paymentNote},
	)
	if err != nil {
		err = fmt.Errorf("failed recording payment reference with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("authorized payment")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Trace().Msg("clearing cart")
	cleared, err := qtx.DeleteCartItems(c, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if cleared != int64(len(cart.CartItems)) {
		err = fmt.Errorf(
			"failed clearing cart: expected %d items, cleared %d with error=%w",
			len(cart.CartItems),
			cleared,
			inErrors.ErrCartConflict,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrCartConflict
	}
	logger.Info().Int64("clearedItems", cleared).Msg("cleared cart")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	err = tx.Commit(c)
	if err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("committed transaction")

	logger = logger.With().Str(log.KeyProcess, "reloading order").Logger()
	logger.Trace().Msg("reloading order")
	found, err := s.queries.FindOrderById(c, order.ID)
	if err != nil {
		err = fmt.Errorf("failed reloading order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	res, err := found.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	return res, nil
}

// insertOrderWithRetry inserts the order under a savepoint so a duplicate
// order number can be retried with a fresh one without aborting the
// surrounding transaction.
func (s *OrderService) insertOrderWithRetry(
	c context.Context,
	tx pgx.Tx,
	param repository.InsertOrderParams,
) (repository.Order, error) {
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService insertOrderWithRetry").
		Logger()

	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		orderNumber, err := generateOrderNumber(time.Now())
		if err != nil {
			return repository.Order{}, err
		}
		param.OrderNumber = orderNumber

		savepoint, err := tx.Begin(c)
		if err != nil {
			return repository.Order{}, fmt.Errorf(
				"failed initializing savepoint with error=%w",
				err,
			)
		}
		order, err := s.queries.WithTx(savepoint).InsertOrder(c, param)
		if err != nil {
			_ = savepoint.Rollback(c)
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
				logger.Warn().
					Str(log.KeyOrderNumber, orderNumber).
					Int("attempt", attempt).
					Msg("order number collision, retrying")
				continue
			}
			return repository.Order{}, fmt.Errorf("failed inserting order with error=%w", err)
		}
		err = savepoint.Commit(c)
		if err != nil {
			return repository.Order{}, fmt.Errorf(
				"failed committing savepoint with error=%w",
				err,
			)
		}
		return order, nil
	}
	return repository.Order{}, fmt.Errorf(
		"failed inserting order after %d attempts with error=%w",
		maxOrderNumberAttempts,
		inErrors.ErrOrderNumberCollision,
	)
}

func (s *OrderService) FindOrderById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	cacheKey := cacheKeyOrder + orderID.String()
	cached, err := s.cache.Get(c, cacheKey).Result()
	if err == nil && cached != "" {
		res := response.Order{}
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			if res.UserID != userID {
				return response.Order{}, inErrors.ErrOrderNotFound
			}
			logger.Debug().Str(log.KeyCacheKey, cacheKey).Msg("found order in cache")
			return res, nil
		}
	}

	logger = logger.With().Str(log.KeyProcess, "finding order by id").Logger()
	logger.Trace().Msg("finding order by id")
	row, err := s.queries.FindOrderById(c, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding order by id with error=%w", inErrors.ErrOrderNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, inErrors.ErrOrderNotFound
		}
		err = fmt.Errorf("failed finding order by id with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	res, err := row.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if res.UserID != userID {
		err = fmt.Errorf("failed finding order by id with error=%w", inErrors.ErrOrderNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrOrderNotFound
	}
	logger.Info().Msg("found order by id")

	if encoded, err := json.Marshal(res); err == nil {
		if err := s.cache.Set(c, cacheKey, encoded, cacheTtlOrder).Err(); err != nil {
			logger.Warn().Err(err).Str(log.KeyCacheKey, cacheKey).Msg("failed caching order")
		}
	}

	return res, nil
}

// FindOrders lists the user's orders, newest first, optionally filtered by
// status.
func (s *OrderService) FindOrders(
	c context.Context,
	param repository.FindOrdersParams,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyUserID, param.UserID.String()).
		Str(log.KeyProcess, "finding orders").
		Logger()

	if param.Status != "" && !repository.OrderStatus(param.Status).Valid() {
		err := fmt.Errorf(
			"failed finding orders with status=%s with error=%w",
			param.Status,
			inErrors.ErrInvalidOrderState,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, inErrors.ErrInvalidOrderState
	}
	if param.Limit <= 0 {
		param.Limit = 20
	}

	logger.Trace().Msg("finding orders")
	orders, err := s.queries.FindOrders(c, param)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("orders", len(orders)).Msg("found orders")

	res := make([]response.Order, 0, len(orders))
	for _, order := range orders {
		res = append(res, order.Response())
	}
	return res, nil
}

// UpdateOrderStatus applies one lifecycle transition. Cancelling restores the
// stock every order line had reserved, inside the same transaction as the
// status change.
func (s *OrderService) UpdateOrderStatus(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	next repository.OrderStatus,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService UpdateOrderStatus").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyOrderStatus, string(next)).
		Logger()

	if !next.Valid() {
		err := fmt.Errorf(
			"failed updating order status to %s with error=%w",
			next,
			inErrors.ErrInvalidOrderState,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrInvalidOrderState
	}

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
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

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	row, err := qtx.FindOrderByIdForUpdate(c, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding order with error=%w", inErrors.ErrOrderNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, inErrors.ErrOrderNotFound
		}
		err = fmt.Errorf("failed finding order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if row.UserID != userID {
		err = fmt.Errorf("failed finding order with error=%w", inErrors.ErrOrderNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrOrderNotFound
	}

	if !row.Status.CanTransitionTo(next) {
		err = fmt.Errorf(
			"failed transitioning order from %s to %s with error=%w",
			row.Status,
			next,
			inErrors.ErrInvalidOrderState,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrInvalidOrderState
	}

	if next == repository.OrderStatusCancelled {
		logger = logger.With().Str(log.KeyProcess, "restoring stock").Logger()
		logger.Trace().Msg("restoring stock")
		items, err := qtx.FindOrderItemsByOrderId(c, orderID)
		if err != nil {
			err = fmt.Errorf("failed finding order items with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		for _, item := range items {
			err = qtx.IncrementStock(
				c,
				repository.IncrementStockParams{ID: item.ProductID, Quantity: item.Quantity},
			)
			if err != nil {
				err = fmt.Errorf(
					"failed restoring stock for productId=%s with error=%w",
					item.ProductID,
					err,
				)
				inOtel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return response.Order{}, err
			}
		}
		logger.Info().Int("orderItems", len(items)).Msg("restored stock")
	}

	logger = logger.With().Str(log.KeyProcess, "updating order status").Logger()
	logger.Trace().Msg("updating order status")
	order, err := qtx.UpdateOrderStatus(
		c,
		repository.UpdateOrderStatusParams{ID: orderID, Status: next},
	)
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	err = tx.Commit(c)
	if err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("updated order status")

	s.invalidateOrderCache(c, orderID)

	return order.Response(), nil
}

// UpdateOrder edits shipping details while the order is still pending.
func (s *OrderService) UpdateOrder(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	param request.UpdateOrder,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService UpdateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService UpdateOrder").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	row, err := s.queries.FindOrderById(c, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding order with error=%w", inErrors.ErrOrderNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, inErrors.ErrOrderNotFound
		}
		err = fmt.Errorf("failed finding order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if row.UserID != userID {
		err = fmt.Errorf("failed finding order with error=%w", inErrors.ErrOrderNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrOrderNotFound
	}
	if row.Status != repository.OrderStatusPending {
		err = fmt.Errorf(
			"failed updating order in status=%s with error=%w",
			row.Status,
			inErrors.ErrInvalidOrderState,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, inErrors.ErrInvalidOrderState
	}

	logger = logger.With().Str(log.KeyProcess, "updating order").Logger()
	logger.Trace().Msg("updating order")
	order, err := s.queries.UpdateOrderInfo(c, repository.UpdateOrderInfoParams{
		ID:              orderID,
		ShippingAddress: param.ShippingAddress,
		Notes:           param.Notes,
	})
	if err != nil {
		err = fmt.Errorf("failed updating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("updated order")

	s.invalidateOrderCache(c, orderID)

	return order.Response(), nil
}

func (s *OrderService) invalidateOrderCache(c context.Context, orderID uuid.UUID) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderService invalidateOrderCache").Logger()
	cacheKey := cacheKeyOrder + orderID.String()
	if err := s.cache.Del(c, cacheKey).Err(); err != nil {
		logger.Warn().Err(err).Str(log.KeyCacheKey, cacheKey).Msg("failed invalidating order cache")
	}
}
