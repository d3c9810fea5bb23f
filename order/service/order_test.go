package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/latienda/backend/internal/errors"
	"github.com/latienda/backend/internal/repository"
	"github.com/latienda/backend/order/pkg/request"
)

func checkoutRequest() request.Checkout {
	return request.Checkout{
		ShippingAddress: "123 Example Street, Springfield",
		CardNumber:      "4242424242424242",
		CardHolder:      "Alice Example",
	}
}

func cartItemCount(t *testing.T, c context.Context, env *testEnv, cartID uuid.UUID) int {
	t.Helper()

	var n int
	err := env.pool.QueryRow(c, "SELECT count(*) FROM cart_items WHERE cart_id = $1", cartID).
		Scan(&n)
	require.NoError(t, err)
	return n
}

func TestCheckoutCreatesOrder(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	cart := seedCart(t, c, env.queries, userAlice, cartLine(productMouse, 2, "19.99"))

	order, err := env.service.Checkout(c, userAlice, checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, string(repository.OrderStatusPending), order.Status)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-[A-Z0-9]{6}$`), order.OrderNumber)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("39.98")),
		"expected total 39.98 got %s", order.Total)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, int32(2), order.OrderItems[0].Quantity)
	assert.NotEqual(t, uuid.Nil, order.OrderItems[0].ID, "items come back from the stored order")
	assert.Equal(t, "****4242 ref=local-"+order.OrderNumber, order.PaymentNote)

	// stock was reserved for the order
	assert.Equal(t, int32(3), stockOf(t, c, env.queries, productMouse))

	// the cart survives checkout emptied, ready for the next purchase
	_, err = env.queries.FindActiveCartByUserId(c, userAlice)
	require.NoError(t, err)
	assert.Equal(t, 0, cartItemCount(t, c, env, cart.ID))

	// the gateway reference was recorded after authorization, card masked
	found, err := env.service.FindOrderById(c, userAlice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "****4242 ref=local-"+order.OrderNumber, found.PaymentNote)

	// the emptied cart cannot be converted again
	_, err = env.service.Checkout(c, userAlice, checkoutRequest())
	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
	assert.Equal(t, int32(3), stockOf(t, c, env.queries, productMouse))
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	cart := seedCart(t, c, env.queries, userAlice, cartLine(productKeyboard, 2, "89.50"))

	_, err := env.service.Checkout(c, userAlice, checkoutRequest())
	require.Error(t, err)
	assert.True(t, inErrors.IsInsufficientStock(err), "expected insufficient stock got %s", err)

	var stockErr *inErrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, productKeyboard, stockErr.ProductID)
	assert.Equal(t, int32(1), stockErr.Available)
	assert.Equal(t, int32(2), stockErr.Requested)

	// nothing was committed
	assert.Equal(t, int32(1), stockOf(t, c, env.queries, productKeyboard))
	assert.Equal(t, 1, cartItemCount(t, c, env, cart.ID))

	var orderCount int
	err = env.pool.QueryRow(c, "SELECT count(*) FROM orders").Scan(&orderCount)
	require.NoError(t, err)
	assert.Equal(t, 0, orderCount)
}

func TestCheckoutRejectsUnusableCart(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	_, err := env.service.Checkout(c, userAlice, checkoutRequest())
	assert.ErrorIs(t, err, inErrors.ErrNoActiveCart)

	seedCart(t, c, env.queries, userAlice)
	_, err = env.service.Checkout(c, userAlice, checkoutRequest())
	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)

	seedCart(t, c, env.queries, userBob, cartLine(productWebcam, 1, "45.00"))
	_, err = env.service.Checkout(c, userBob, checkoutRequest())
	assert.ErrorIs(t, err, inErrors.ErrProductUnavailable)
	assert.Equal(t, int32(10), stockOf(t, c, env.queries, productWebcam))
}

func TestCheckoutConcurrentLastUnit(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	seedCart(t, c, env.queries, userAlice, cartLine(productKeyboard, 1, "89.50"))
	seedCart(t, c, env.queries, userBob, cartLine(productKeyboard, 1, "89.50"))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, userID := range []uuid.UUID{userAlice, userBob} {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := env.service.Checkout(c, id, checkoutRequest())
			results <- err
		}(userID)
	}
	wg.Wait()
	close(results)

	succeeded, insufficient := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case inErrors.IsInsufficientStock(err):
			insufficient++
			var stockErr *inErrors.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			assert.Equal(t, int32(0), stockErr.Available,
				"the loser sees the stock left after the winning checkout")
		default:
			t.Fatalf("unexpected checkout error: %s", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one checkout should win the last unit")
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int32(0), stockOf(t, c, env.queries, productKeyboard))
}

func TestCheckoutSameCartConvertsOnce(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	// stock 5 covers the decrement twice, so only the cart lock can stop a
	// second conversion of the same lines
	seedCart(t, c, env.queries, userAlice, cartLine(productMouse, 2, "19.99"))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Checkout(c, userAlice, checkoutRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, empty := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, inErrors.ErrEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected checkout error: %s", err)
		}
	}
	assert.Equal(t, 1, succeeded, "the cart converts into exactly one order")
	assert.Equal(t, 1, empty)
	assert.Equal(t, int32(3), stockOf(t, c, env.queries, productMouse))

	var orderCount int
	err := env.pool.QueryRow(c, "SELECT count(*) FROM orders WHERE user_id = $1", userAlice).
		Scan(&orderCount)
	require.NoError(t, err)
	assert.Equal(t, 1, orderCount)
}

func TestCancelRestocksInventory(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	seedCart(t, c, env.queries, userAlice, cartLine(productMouse, 2, "19.99"))
	order, err := env.service.Checkout(c, userAlice, checkoutRequest())
	require.NoError(t, err)
	require.Equal(t, int32(3), stockOf(t, c, env.queries, productMouse))

	cancelled, err := env.service.UpdateOrderStatus(
		c,
		userAlice,
		order.ID,
		repository.OrderStatusCancelled,
	)
	require.NoError(t, err)
	assert.Equal(t, string(repository.OrderStatusCancelled), cancelled.Status)
	assert.Equal(t, int32(5), stockOf(t, c, env.queries, productMouse))

	// a cancelled order is terminal
	_, err = env.service.UpdateOrderStatus(
		c,
		userAlice,
		order.ID,
		repository.OrderStatusProcessing,
	)
	assert.ErrorIs(t, err, inErrors.ErrInvalidOrderState)
}

func TestUpdateOrderStatusFollowsLifecycle(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	seedCart(t, c, env.queries, userAlice, cartLine(productMouse, 1, "19.99"))
	order, err := env.service.Checkout(c, userAlice, checkoutRequest())
	require.NoError(t, err)

	// pending cannot jump straight to completed
	_, err = env.service.UpdateOrderStatus(
		c,
		userAlice,
		order.ID,
		repository.OrderStatusCompleted,
	)
	assert.ErrorIs(t, err, inErrors.ErrInvalidOrderState)

	processing, err := env.service.UpdateOrderStatus(
		c,
		userAlice,
		order.ID,
		repository.OrderStatusProcessing,
	)
	require.NoError(t, err)
	assert.Equal(t, string(repository.OrderStatusProcessing), processing.Status)

	completed, err := env.service.UpdateOrderStatus(
		c,
		userAlice,
		order.ID,
		repository.OrderStatusCompleted,
	)
	require.NoError(t, err)
	assert.Equal(t, string(repository.OrderStatusCompleted), completed.Status)

	// completing does not touch stock
	assert.Equal(t, int32(4), stockOf(t, c, env.queries, productMouse))
}

func TestOrderOwnership(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	seedCart(t, c, env.queries, userAlice, cartLine(productMouse, 1, "19.99"))
	order, err := env.service.Checkout(c, userAlice, checkoutRequest())
	require.NoError(t, err)

	_, err = env.service.FindOrderById(c, userBob, order.ID)
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)

	_, err = env.service.UpdateOrderStatus(
		c,
		userBob,
		order.ID,
		repository.OrderStatusCancelled,
	)
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)
}

func TestFindOrdersFiltersByStatus(t *testing.T) {
	c := context.Background()
	env := setup(t, c)
	defer env.teardown(t)

	seedCart(t, c, env.queries, userAlice, cartLine(productMouse, 1, "19.99"))
	first, err := env.service.Checkout(c, userAlice, checkoutRequest())
	require.NoError(t, err)
	_, err = env.service.UpdateOrderStatus(
		c,
		userAlice,
		first.ID,
		repository.OrderStatusCancelled,
	)
	require.NoError(t, err)

	seedCart(t, c, env.queries, userBob, cartLine(productMouse, 2, "19.99"))
	_, err = env.service.Checkout(c, userBob, checkoutRequest())
	require.NoError(t, err)

	all, err := env.service.FindOrders(c, repository.FindOrdersParams{UserID: userAlice})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)

	cancelled, err := env.service.FindOrders(c, repository.FindOrdersParams{
		UserID: userAlice,
		Status: string(repository.OrderStatusCancelled),
	})
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)

	pending, err := env.service.FindOrders(c, repository.FindOrdersParams{
		UserID: userAlice,
		Status: string(repository.OrderStatusPending),
	})
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = env.service.FindOrders(c, repository.FindOrdersParams{
		UserID: userAlice,
		Status: "shipped",
	})
	assert.ErrorIs(t, err, inErrors.ErrInvalidOrderState)
}
