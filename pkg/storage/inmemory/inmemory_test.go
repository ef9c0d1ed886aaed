package inmemory_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/storage"
	"github.com/minimartco/minimart/pkg/storage/inmemory"
)

func TestInMemory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "InMemory Store Suite")
}

func draft(name string, price float64) *catalog.Draft {
	return &catalog.Draft{Name: name, Price: price}
}

var _ = Describe("InMemory Store", func() {
	var (
		store *inmemory.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		store = inmemory.NewStore()
		ctx = context.Background()
	})

	Describe("Insert and GetByID", func() {
		It("assigns ids and round-trips fields", func() {
			p, err := store.Insert(ctx, &catalog.Draft{
				Name: "Blue Mug", Price: 10, Category: "Home", Description: "A ceramic mug",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).NotTo(BeZero())

			got, err := store.GetByID(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Blue Mug"))
			Expect(got.Price).To(Equal(10.0))
			Expect(got.Category).To(Equal("Home"))
		})

		It("rejects drafts missing required fields", func() {
			_, err := store.Insert(ctx, draft("", 10))
			Expect(err).To(HaveOccurred())

			var verr catalog.ValidationError
			Expect(err).To(BeAssignableToTypeOf(verr))
		})

		It("stores the draft embedding", func() {
			d := draft("Blue Mug", 10)
			d.Embedding = []float32{0.1, 0.2}

			p, err := store.Insert(ctx, d)
			Expect(err).NotTo(HaveOccurred())

			got, err := store.GetByID(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Embedding).To(Equal([]float32{0.1, 0.2}))
		})

		It("returns NotFoundError for a missing id", func() {
			_, err := store.GetByID(ctx, 99999)
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("replaces mutable fields and leaves the id alone", func() {
			p, err := store.Insert(ctx, &catalog.Draft{Name: "Blue Mug", Price: 10, Category: "Home"})
			Expect(err).NotTo(HaveOccurred())

			updated, err := store.Update(ctx, p.ID, &catalog.Draft{Name: "Blue Mug", Price: 12, Category: "Kitchen"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ID).To(Equal(p.ID))
			Expect(updated.Price).To(Equal(12.0))
			Expect(updated.Category).To(Equal("Kitchen"))

			got, err := store.GetByID(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Category).To(Equal("Kitchen"))
		})

		It("returns NotFoundError for a missing id", func() {
			_, err := store.Update(ctx, 99999, draft("Blue Mug", 10))
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes the row", func() {
			p, err := store.Insert(ctx, draft("Blue Mug", 10))
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Delete(ctx, p.ID)).To(Succeed())

			_, err = store.GetByID(ctx, p.ID)
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("returns NotFoundError for a missing id", func() {
			Expect(storage.IsNotFound(store.Delete(ctx, 99999))).To(BeTrue())
		})

		It("never reuses a deleted id", func() {
			p1, err := store.Insert(ctx, draft("Blue Mug", 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Delete(ctx, p1.ID)).To(Succeed())

			p2, err := store.Insert(ctx, draft("Red Mug", 11))
			Expect(err).NotTo(HaveOccurred())
			Expect(p2.ID).To(BeNumerically(">", p1.ID))
		})
	})

	Describe("ListAll", func() {
		It("returns products newest first", func() {
			_, err := store.Insert(ctx, draft("First", 1))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Insert(ctx, draft("Second", 2))
			Expect(err).NotTo(HaveOccurred())

			all, err := store.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].Name).To(Equal("Second"))
			Expect(all[1].Name).To(Equal("First"))
		})
	})

	Describe("KeywordSearch", func() {
		BeforeEach(func() {
			_, err := store.Insert(ctx, &catalog.Draft{Name: "Blue Mug", Price: 10, Description: "ceramic"})
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Insert(ctx, &catalog.Draft{Name: "Desk Lamp", Price: 25, Description: "warm light"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("matches case-insensitive substrings of the name", func() {
			results, err := store.KeywordSearch(ctx, []string{"MUG"})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Name).To(Equal("Blue Mug"))
		})

		It("matches substrings of the description", func() {
			results, err := store.KeywordSearch(ctx, []string{"light"})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Name).To(Equal("Desk Lamp"))
		})

		It("matches if any term matches", func() {
			results, err := store.KeywordSearch(ctx, []string{"mug", "lamp"})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("behaves as ListAll for an empty term set", func() {
			all, err := store.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			results, err := store.KeywordSearch(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(Equal(all))
		})
	})

	Describe("VectorSearch", func() {
		insertEmbedded := func(name string, vec []float32) *catalog.Product {
			d := draft(name, 10)
			d.Embedding = vec
			p, err := store.Insert(ctx, d)
			Expect(err).NotTo(HaveOccurred())
			return p
		}

		It("orders by non-decreasing cosine distance", func() {
			insertEmbedded("far", []float32{0, 1})
			insertEmbedded("near", []float32{1, 0.01})

			matches, err := store.VectorSearch(ctx, []float32{1, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(2))
			Expect(matches[0].Product.Name).To(Equal("near"))
			Expect(matches[0].Distance).To(BeNumerically("<=", matches[1].Distance))
		})

		It("skips products without an embedding", func() {
			insertEmbedded("embedded", []float32{1, 0})
			_, err := store.Insert(ctx, draft("bare", 5))
			Expect(err).NotTo(HaveOccurred())

			matches, err := store.VectorSearch(ctx, []float32{1, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Product.Name).To(Equal("embedded"))
		})

		It("caps results at the limit", func() {
			insertEmbedded("a", []float32{1, 0})
			insertEmbedded("b", []float32{0.9, 0.1})
			insertEmbedded("c", []float32{0.8, 0.2})

			matches, err := store.VectorSearch(ctx, []float32{1, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(2))
		})

		It("breaks distance ties by id ascending", func() {
			p1 := insertEmbedded("twin-a", []float32{1, 0})
			p2 := insertEmbedded("twin-b", []float32{1, 0})

			matches, err := store.VectorSearch(ctx, []float32{1, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches[0].Product.ID).To(Equal(p1.ID))
			Expect(matches[1].Product.ID).To(Equal(p2.ID))
		})
	})

	Describe("embedding backfill support", func() {
		It("lists products missing an embedding, oldest first", func() {
			p1, err := store.Insert(ctx, draft("bare-1", 1))
			Expect(err).NotTo(HaveOccurred())

			d := draft("embedded", 2)
			d.Embedding = []float32{1}
			_, err = store.Insert(ctx, d)
			Expect(err).NotTo(HaveOccurred())

			p3, err := store.Insert(ctx, draft("bare-2", 3))
			Expect(err).NotTo(HaveOccurred())

			missing, err := store.ListMissingEmbeddings(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(HaveLen(2))
			Expect(missing[0].ID).To(Equal(p1.ID))
			Expect(missing[1].ID).To(Equal(p3.ID))
		})

		It("SetEmbedding fills the vector without touching other fields", func() {
			p, err := store.Insert(ctx, draft("bare", 1))
			Expect(err).NotTo(HaveOccurred())

			Expect(store.SetEmbedding(ctx, p.ID, []float32{0.5, 0.5})).To(Succeed())

			got, err := store.GetByID(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Embedding).To(Equal([]float32{0.5, 0.5}))
			Expect(got.Name).To(Equal("bare"))

			missing, err := store.ListMissingEmbeddings(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(BeEmpty())
		})

		It("SetEmbedding returns NotFoundError for a missing id", func() {
			Expect(storage.IsNotFound(store.SetEmbedding(ctx, 99999, []float32{1}))).To(BeTrue())
		})
	})
})
