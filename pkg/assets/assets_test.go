package assets_test

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/assets"
)

func TestAssets(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Assets Suite")
}

// uploadedFile builds a multipart.FileHeader the way an HTTP form would.
func uploadedFile(name string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("image", name)
	Expect(err).NotTo(HaveOccurred())
	_, err = fw.Write(content)
	Expect(err).NotTo(HaveOccurred())
	Expect(w.Close()).To(Succeed())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	Expect(err).NotTo(HaveOccurred())
	return form.File["image"][0]
}

var _ = Describe("Store", func() {
	var (
		store *assets.Store
		dir   string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		store, err = assets.NewStore(dir, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a directory", func() {
		_, err := assets.NewStore("", zap.NewNop())
		Expect(err).To(HaveOccurred())
	})

	Describe("Save", func() {
		It("writes the file and returns a /uploads URL", func() {
			url, err := store.Save(uploadedFile("mug.png", []byte("fake-png")))
			Expect(err).NotTo(HaveOccurred())
			Expect(url).To(HavePrefix(assets.URLPrefix + "/"))
			Expect(url).To(HaveSuffix(".png"))

			data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("fake-png")))
		})

		It("never reuses the original filename", func() {
			url, err := store.Save(uploadedFile("../../evil.png", []byte("x")))
			Expect(err).NotTo(HaveOccurred())
			Expect(url).NotTo(ContainSubstring("evil"))
			Expect(strings.Contains(url, "..")).To(BeFalse())
		})

		It("rejects disallowed extensions", func() {
			_, err := store.Save(uploadedFile("payload.exe", []byte("x")))
			Expect(err).To(HaveOccurred())
		})

		It("accepts uppercase extensions", func() {
			_, err := store.Save(uploadedFile("mug.JPG", []byte("x")))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Remove", func() {
		It("deletes a stored image", func() {
			url, err := store.Save(uploadedFile("mug.png", []byte("x")))
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Remove(url)).To(Succeed())

			_, err = os.Stat(filepath.Join(dir, filepath.Base(url)))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("ignores URLs outside the upload prefix", func() {
			Expect(store.Remove("https://cdn.example.com/mug.png")).To(Succeed())
		})

		It("ignores already-deleted files", func() {
			Expect(store.Remove(assets.URLPrefix + "/gone.png")).To(Succeed())
		})
	})
})
