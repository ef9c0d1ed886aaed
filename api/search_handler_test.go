package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/api/search"
	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/storage"
	testutils "github.com/minimartco/minimart/pkg/utils/test"
)

var _ = Describe("handleSearch", func() {
	var (
		server   *Server
		store    *testutils.MockStore
		embedder *testutils.MockEmbedder
		ctx      context.Context
	)

	BeforeEach(func() {
		store = testutils.NewMockStore()
		embedder = testutils.NewMockEmbedder()
		ctx = context.Background()

		var err error
		server, err = NewServer(
			Config{ListenAddr: ":0", UploadDir: GinkgoT().TempDir()},
			store,
			embedder,
			testutils.NewMockPublisher(),
			zap.NewNop(),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	get := func(url string) (*http.Response, *search.Output) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		if resp.StatusCode != fiber.StatusOK {
			return resp, nil
		}

		var output search.Output
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &output)).To(Succeed())
		return resp, &output
	}

	It("returns the full listing for an empty query", func() {
		_, err := store.Insert(ctx, &catalog.Draft{Name: "Blue Mug", Price: 10})
		Expect(err).NotTo(HaveOccurred())

		resp, output := get("/api/products/search?query=")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		Expect(output.Mode).To(Equal(search.ModeAll))
		Expect(output.Count).To(Equal(1))
		Expect(embedder.Calls).To(BeEmpty())
	})

	It("returns semantic matches with similarity scores", func() {
		mug, err := store.Insert(ctx, &catalog.Draft{Name: "Blue Mug", Price: 10})
		Expect(err).NotTo(HaveOccurred())
		store.Matches = []storage.Match{{Product: mug, Distance: 0.1}}

		resp, output := get("/api/products/search?query=ceramic+cup")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		Expect(output.Mode).To(Equal(search.ModeSemantic))
		Expect(output.Query).To(Equal("ceramic cup"))
		Expect(output.Count).To(Equal(1))
		Expect(output.Results[0].Similarity).NotTo(BeNil())
		Expect(*output.Results[0].Similarity).To(BeNumerically("~", 0.9, 1e-9))
	})

	It("falls back to keyword mode when nothing clears the threshold", func() {
		_, err := store.Insert(ctx, &catalog.Draft{Name: "Blue Mug", Price: 10, Description: "ceramic mug"})
		Expect(err).NotTo(HaveOccurred())
		store.Matches = []storage.Match{}

		resp, output := get("/api/products/search?query=mug")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		Expect(output.Mode).To(Equal(search.ModeKeyword))
		Expect(output.Count).To(Equal(1))
	})

	It("returns 503 when the embedder is down", func() {
		embedder.FailOn = "mug"

		resp, _ := get("/api/products/search?query=mug")
		Expect(resp.StatusCode).To(Equal(fiber.StatusServiceUnavailable))
	})

	It("returns 500 when the store fails", func() {
		store.FailVectorSearch = true

		resp, _ := get("/api/products/search?query=mug")
		Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
	})
})
