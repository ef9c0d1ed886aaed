package cohere_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minimartco/minimart/pkg/embeddings"
	"github.com/minimartco/minimart/pkg/embeddings/cohere"
)

func TestCohere(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cohere Embedder Suite")
}

var _ = Describe("Cohere Embedder", func() {
	var (
		server   *httptest.Server
		received map[string]any
		status   int
		respBody string
	)

	BeforeEach(func() {
		received = nil
		status = http.StatusOK
		respBody = `{"embeddings": {"float": [[0.1, 0.2, 0.3]]}}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v2/embed"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.WriteHeader(status)
			w.Write([]byte(respBody))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newEmbedder := func() *cohere.Embedder {
		e, err := cohere.NewEmbedder(cohere.EmbedderConfig{
			BaseURL: server.URL,
			APIKey:  "test-key",
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	It("requires an API key", func() {
		_, err := cohere.NewEmbedder(cohere.EmbedderConfig{})
		Expect(err).To(HaveOccurred())
	})

	It("returns the embedding vector", func() {
		vec, err := newEmbedder().Embed(context.Background(), "blue mug", embeddings.ModeDocument)
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))
	})

	It("sends the mode as input_type", func() {
		_, err := newEmbedder().Embed(context.Background(), "blue mug", embeddings.ModeQuery)
		Expect(err).NotTo(HaveOccurred())
		Expect(received["input_type"]).To(Equal("search_query"))
		Expect(received["texts"]).To(Equal([]any{"blue mug"}))
	})

	It("defaults the model", func() {
		_, err := newEmbedder().Embed(context.Background(), "blue mug", embeddings.ModeDocument)
		Expect(err).NotTo(HaveOccurred())
		Expect(received["model"]).To(Equal(cohere.DefaultEmbeddingModel))
	})

	It("wraps provider errors in ErrUnavailable", func() {
		status = http.StatusInternalServerError
		respBody = `{"message": "boom"}`

		_, err := newEmbedder().Embed(context.Background(), "blue mug", embeddings.ModeDocument)
		Expect(err).To(MatchError(embeddings.ErrUnavailable))
	})

	It("treats an empty embedding list as unavailable", func() {
		respBody = `{"embeddings": {"float": []}}`

		_, err := newEmbedder().Embed(context.Background(), "blue mug", embeddings.ModeDocument)
		Expect(err).To(MatchError(embeddings.ErrUnavailable))
	})
})
