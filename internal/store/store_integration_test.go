package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/migrations"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite runs PgStore and PgImageStore against a real PostgreSQL.
type ProductStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       *PgStore
	images      *PgImageStore
	logger      *slog.Logger
	ctx         context.Context
}

func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = bootstrap.NewDbPool(s.ctx, connStr, 30*time.Second)
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL")

	require.NoError(s.T(), bootstrap.Migrate(migrations.FS, connStr), "Failed to apply migrations")
	s.logger.Info("Migrations applied")

	s.store = NewPgStore(s.dbPool)
	s.images = NewPgImageStore(s.dbPool, "http://localhost:8080/images")
}

func (s *ProductStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest empties the tables before each test.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products, product_images")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func TestProductStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(ProductStoreSuite))
}

func (s *ProductStoreSuite) save(products ...Product) {
	s.T().Helper()
	for _, p := range products {
		require.NoError(s.T(), s.store.Save(s.ctx, p))
	}
}

func (s *ProductStoreSuite) TestSaveAndFindByID() {
	// given
	p := Product{
		ID: "p1", Name: "Baby Blanket", Brand: "Acme", Description: "Soft wool", Category: "bedding",
		Price: 2599, MaxQuantity: 5, Sizes: []string{"s", "m"}, Keywords: []string{"baby", "blanket", "acme"},
		NameLower: "baby blanket", BrandLower: "acme", DescriptionLower: "soft wool",
		IsFeatured: true, DateAdded: 1700000000000, Image: "http://img/1", ImageCollection: []string{"http://img/1"},
	}
	s.save(p)

	// when
	found, err := s.store.FindByID(s.ctx, "p1")

	// then
	require.NoError(s.T(), err)
	assert.Equal(s.T(), p, *found)
}

func (s *ProductStoreSuite) TestSave_ReplacesWholeDocument() {
	// given
	s.save(Product{ID: "p1", Name: "Old", Keywords: []string{"old"}, MaxQuantity: 1, DateAdded: 1})

	// when
	s.save(Product{ID: "p1", Name: "New", MaxQuantity: 1, DateAdded: 1})

	// then
	found, err := s.store.FindByID(s.ctx, "p1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "New", found.Name)
	assert.Empty(s.T(), found.Keywords)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, "missing")
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDelete() {
	s.save(Product{ID: "p1", Name: "Bib Set", MaxQuantity: 1})

	require.NoError(s.T(), s.store.Delete(s.ctx, "p1"))
	require.ErrorIs(s.T(), s.store.Delete(s.ctx, "p1"), perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestQuery() {
	s.save(
		Product{ID: "a", Name: "Baby Blanket", NameLower: "baby blanket", BrandLower: "acme", Keywords: []string{"baby", "blanket"}, MaxQuantity: 1, DateAdded: 1, IsRecommended: true},
		Product{ID: "b", Name: "Bib Set", NameLower: "bib set", BrandLower: "babyco", Keywords: []string{"bib", "set"}, MaxQuantity: 1, DateAdded: 3},
		Product{ID: "c", Name: "Burp Cloth", NameLower: "burp cloth", BrandLower: "acme", Keywords: []string{"burp", "cloth"}, MaxQuantity: 1, DateAdded: 2, IsRecommended: true},
	)

	testCases := []struct {
		name     string
		query    Query
		expected []string
	}{
		{"name prefix", Query{Kind: KindPrefixRange, Field: FieldNameLower, From: "bab", To: "bab\uf8ff", Limit: 25}, []string{"a"}},
		{"name prefix ordered", Query{Kind: KindPrefixRange, Field: FieldNameLower, From: "b", To: "b\uf8ff", Limit: 25}, []string{"a", "b", "c"}},
		{"brand prefix", Query{Kind: KindPrefixRange, Field: FieldBrandLower, From: "bab", To: "bab\uf8ff", Limit: 25}, []string{"b"}},
		{"keywords any", Query{Kind: KindContainsAny, Field: FieldKeywords, Values: []string{"cloth", "baby"}, Limit: 25}, []string{"c", "a"}},
		{"recommended", Query{Kind: KindFlag, Field: FieldRecommended, Limit: 12}, []string{"c", "a"}},
		{"limit", Query{Kind: KindPrefixRange, Field: FieldNameLower, From: "b", To: "b\uf8ff", Limit: 2}, []string{"a", "b"}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			got, err := s.store.Query(s.ctx, tc.query)
			require.NoError(s.T(), err)
			assert.Equal(s.T(), tc.expected, ids(got))
		})
	}
}

func (s *ProductStoreSuite) TestListAndCount() {
	s.save(
		Product{ID: "b", MaxQuantity: 1, DateAdded: 10},
		Product{ID: "a", MaxQuantity: 1, DateAdded: 10},
		Product{ID: "c", MaxQuantity: 1, DateAdded: 20},
		Product{ID: "d", MaxQuantity: 1, DateAdded: 5},
	)

	first, err := s.store.List(s.ctx, ListParams{Limit: 2})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"c", "a"}, ids(first))

	after := first[1].Position()
	second, err := s.store.List(s.ctx, ListParams{After: &after, Limit: 2})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"b", "d"}, ids(second))

	n, err := s.store.Count(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(4), n)
}

func (s *ProductStoreSuite) TestImages() {
	key := ImageKey("p1")
	require.NoError(s.T(), s.images.Upload(s.ctx, key, "image/png", []byte{1, 2, 3}))

	img, err := s.images.Get(s.ctx, key)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "image/png", img.ContentType)
	assert.Equal(s.T(), []byte{1, 2, 3}, img.Data)
	assert.Equal(s.T(), "http://localhost:8080/images/products/p1", s.images.URL(key))

	require.NoError(s.T(), s.images.Delete(s.ctx, key))
	_, err = s.images.Get(s.ctx, key)
	assert.ErrorIs(s.T(), err, perrors.ErrImageNotFound)
}
