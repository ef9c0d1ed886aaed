package seed_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/seed"
	testutils "github.com/minimartco/minimart/pkg/utils/test"
)

func TestSeed(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Seed Suite")
}

var _ = Describe("Run", func() {
	var (
		store    *testutils.MockStore
		embedder *testutils.MockEmbedder
		ctx      context.Context
	)

	BeforeEach(func() {
		store = testutils.NewMockStore()
		embedder = testutils.NewMockEmbedder()
		ctx = context.Background()
	})

	It("inserts every demo product with an embedding", func() {
		result, err := seed.Run(ctx, store, embedder, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Inserted).To(Equal(len(seed.DemoProducts())))
		Expect(result.Unembedded).To(BeZero())

		missing, err := store.ListMissingEmbeddings(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
	})

	It("validates as drafts", func() {
		for _, draft := range seed.DemoProducts() {
			draft := draft
			Expect(draft.Validate()).To(Succeed())
		}
	})

	It("still inserts a product when its embedding fails", func() {
		products := seed.DemoProducts()
		embedder.FailOn = products[0].EmbeddingText()

		result, err := seed.Run(ctx, store, embedder, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Inserted).To(Equal(len(products)))
		Expect(result.Unembedded).To(Equal(1))

		missing, err := store.ListMissingEmbeddings(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(HaveLen(1))
		Expect(missing[0].Name).To(Equal(products[0].Name))
	})
})
