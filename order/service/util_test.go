package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/latienda/backend/internal/repository"
	"github.com/latienda/backend/order/payment"
)

// fixture ids from seed/users.seed.sql and seed/products.seed.sql
var (
	userAlice = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae1")
	userBob   = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae2")

	productMouse    = uuid.MustParse("b5c0a0d1-0001-4000-8000-000000000001")
	productKeyboard = uuid.MustParse("b5c0a0d1-0002-4000-8000-000000000002")
	productWebcam   = uuid.MustParse("b5c0a0d1-0003-4000-8000-000000000003")
)

type testEnv struct {
	cache          *redis.Client
	pool           *pgxpool.Pool
	pgContainer    *postgres.PostgresContainer
	redisContainer *testRedis.RedisContainer
	queries        *repository.Queries
	service        *OrderService
}

func setup(t *testing.T, c context.Context) *testEnv {
	t.Helper()

	root := filepath.Join("..", "..")
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join(root, "migrations", "20250110000001_create_users.up.sql"),
			filepath.Join(root, "migrations", "20250110000002_create_categories.up.sql"),
			filepath.Join(root, "migrations", "20250110000003_create_products.up.sql"),
			filepath.Join(root, "migrations", "20250110000004_create_carts.up.sql"),
			filepath.Join(root, "migrations", "20250110000005_create_orders.up.sql"),
			filepath.Join(root, "seed", "users.seed.sql"),
			filepath.Join(root, "seed", "products.seed.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	pgConnStr, err := pgContainer.ConnectionString(c, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pgConfig, err := pgxpool.ParseConfig(pgConnStr)
	if err != nil {
		t.Fatalf("failed parsing pgx config with error: %s", err)
	}

	pool, err := pgxpool.NewWithConfig(c, pgConfig)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}

	queries := repository.New(pool)
	orderService := NewOrderService(pool, queries, redisClient, payment.NewAuthorizer(""))
	return &testEnv{
		cache:          redisClient,
		pool:           pool,
		pgContainer:    pgContainer,
		redisContainer: redisContainer,
		queries:        queries,
		service:        orderService,
	}
}

func (e *testEnv) teardown(t *testing.T) {
	t.Helper()

	e.cache.Close()
	e.pool.Close()
	if err := testcontainers.TerminateContainer(e.pgContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
	if err := testcontainers.TerminateContainer(e.redisContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}

func seedCart(
	t *testing.T,
	c context.Context,
	queries *repository.Queries,
	userID uuid.UUID,
	items ...repository.UpsertCartItemParams,
) repository.Cart {
	t.Helper()

	cart, err := queries.InsertCart(c, userID)
	if err != nil {
		t.Fatalf("failed inserting cart with error: %s", err)
	}
	for _, item := range items {
		item.CartID = cart.ID
		if _, err := queries.UpsertCartItem(c, item); err != nil {
			t.Fatalf("failed inserting cart item with error: %s", err)
		}
	}
	return cart
}

func cartLine(productID uuid.UUID, quantity int32, price string) repository.UpsertCartItemParams {
	return repository.UpsertCartItemParams{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: repository.NumericFromDecimal(decimal.RequireFromString(price)),
	}
}

func stockOf(t *testing.T, c context.Context, queries *repository.Queries, productID uuid.UUID) int32 {
	t.Helper()

	product, err := queries.FindProductById(c, productID)
	if err != nil {
		t.Fatalf("failed finding product with error: %s", err)
	}
	return product.Stock
}
