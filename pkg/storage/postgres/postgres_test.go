package postgres_test

import (
	"context"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/storage"
	"github.com/minimartco/minimart/pkg/storage/postgres"
)

func TestPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Postgres Store Suite")
}

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("MINIMART_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("MINIMART_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Postgres Store", func() {
	var (
		store *postgres.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dsn := connStr()

		var err error
		store, err = postgres.NewStore(ctx, postgres.Config{ConnStr: dsn, Dimensions: 3}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	It("round-trips a product with an embedding", func() {
		p, err := store.Insert(ctx, &catalog.Draft{
			Name:      "Blue Mug",
			Price:     10,
			Category:  "Home",
			Embedding: []float32{0.1, 0.2, 0.3},
		})
		Expect(err).NotTo(HaveOccurred())
		defer store.Delete(ctx, p.ID)

		got, err := store.GetByID(ctx, p.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("Blue Mug"))
		Expect(got.Embedding).To(HaveLen(3))
	})

	It("ranks vector matches by ascending distance", func() {
		near, err := store.Insert(ctx, &catalog.Draft{Name: "near", Price: 1, Embedding: []float32{1, 0, 0}})
		Expect(err).NotTo(HaveOccurred())
		defer store.Delete(ctx, near.ID)

		far, err := store.Insert(ctx, &catalog.Draft{Name: "far", Price: 1, Embedding: []float32{0, 1, 0}})
		Expect(err).NotTo(HaveOccurred())
		defer store.Delete(ctx, far.ID)

		matches, err := store.VectorSearch(ctx, []float32{1, 0, 0}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(matches)).To(BeNumerically(">=", 2))
		Expect(matches[0].Product.ID).To(Equal(near.ID))
	})

	It("returns NotFoundError for missing ids", func() {
		_, err := store.GetByID(ctx, 99999999)
		Expect(storage.IsNotFound(err)).To(BeTrue())

		Expect(storage.IsNotFound(store.Delete(ctx, 99999999))).To(BeTrue())
	})

	It("keyword search uses bind parameters, not LIKE patterns", func() {
		p, err := store.Insert(ctx, &catalog.Draft{Name: "Percent%Sign", Price: 1})
		Expect(err).NotTo(HaveOccurred())
		defer store.Delete(ctx, p.ID)

		results, err := store.KeywordSearch(ctx, []string{"percent%sign"})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
	})
})
