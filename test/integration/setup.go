package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"saniteetti/internal/cart"
	"saniteetti/internal/catalog"
	"saniteetti/internal/config"
	"saniteetti/internal/database"
	"saniteetti/internal/handler"
	"saniteetti/internal/notify"
	"saniteetti/internal/repository"
	"saniteetti/internal/router"
	"saniteetti/internal/service"
	"saniteetti/internal/storage"
	"saniteetti/internal/storefront"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Admin credentials accepted by the test server.
const (
	testAdminUser = "admin"
	testAdminPass = "test-pass"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the order schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{MaxConnections: 10, MinConnections: 2, MaxConnLifetime: 300}
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes every stored order.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), "DELETE FROM orders"); err != nil {
		t.Logf("failed to clean orders: %v", err)
	}
}

// TestServer is the full HTTP stack over in-memory catalog blobs.
type TestServer struct {
	Handler  http.Handler
	Notifier *notify.Recorder
	Blobs    *storage.MemoryStore
	Sessions *storefront.Registry
}

// NewTestServer wires the application around repo the way main does.
func NewTestServer(t *testing.T, repo repository.OrderRepository) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	blobs := storage.NewMemoryStore()
	store, err := catalog.NewStore(context.Background(), blobs, logger)
	require.NoError(t, err)

	notifier := &notify.Recorder{}
	sessions := storefront.NewRegistry(cart.DefaultPricing(), logger)

	orderService := service.NewOrderService(repo, notifier, config.ShippedEmailAlways, logger)
	catalogService := service.NewCatalogService(store, sessions, logger)

	h := router.New(
		handler.NewProductHandler(catalogService, logger),
		handler.NewOrderHandler(orderService, logger),
		handler.NewStorefrontHandler(sessions, store, orderService, logger),
		config.AuthConfig{AdminUser: testAdminUser, AdminPass: testAdminPass},
		logger,
	)

	return &TestServer{Handler: h, Notifier: notifier, Blobs: blobs, Sessions: sessions}
}
