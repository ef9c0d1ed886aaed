package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minimartco/minimart/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Version).To(Equal(defaults.Version))
			Expect(cfg.Storage.Provider).To(Equal(defaults.Storage.Provider))
			Expect(cfg.API.Listen).To(Equal(defaults.API.Listen))
			Expect(cfg.Embedding.Model).To(Equal(defaults.Embedding.Model))
			Expect(cfg.Search.Threshold).To(Equal(defaults.Search.Threshold))
			Expect(cfg.Events.Provider).To(Equal(defaults.Events.Provider))
		})

		It("loads a valid config file and fills missing fields from defaults", func() {
			data := `version = 0

[storage]
provider = "postgres"
postgres_dsn = "postgres://localhost/minimart"

[api]
listen = ":9090"

[embedding]
provider = "cohere"
target = "https://api.cohere.com"
model = "embed-english-v3.0"
dimensions = 1024

[search]
threshold = 0.25
max_results = 5

[events]
provider = "kafka"
brokers = "localhost:9092"
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Storage.Provider).To(Equal("postgres"))
			Expect(cfg.Storage.PostgresDSN).To(Equal("postgres://localhost/minimart"))
			Expect(cfg.API.Listen).To(Equal(":9090"))
			Expect(cfg.Embedding.Provider).To(Equal("cohere"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(1024)))
			Expect(cfg.Search.Threshold).To(Equal(0.25))
			Expect(cfg.Search.MaxResults).To(Equal(5))
			Expect(cfg.Events.Provider).To(Equal("kafka"))
			Expect(cfg.Events.Brokers).To(Equal("localhost:9092"))

			// Fields absent from the file come from defaults.
			defaults := config.NewDefaultConfig()
			Expect(cfg.API.UploadDir).To(Equal(defaults.API.UploadDir))
			Expect(cfg.Search.CandidateLimit).To(Equal(defaults.Search.CandidateLimit))
			Expect(cfg.Events.Topic).To(Equal(defaults.Events.Topic))
		})

		It("rejects an unsupported config version", func() {
			_, err := config.ParseConfigTOML([]byte("version = 7\n"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips through disk", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.API.Listen = ":7777"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.API.Listen).To(Equal(":7777"))
		})

		It("never persists the embedding API key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Embedding.APIKey = "super-secret"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).NotTo(ContainSubstring("super-secret"))
		})
	})

	Describe("config keys", func() {
		It("sets and gets values by dotted key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("search.threshold", "0.4")).To(Succeed())

			got, err := c.GetConfigValue("search.threshold")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("0.4"))
		})

		It("rejects unknown keys", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("nope.nope", "x")).NotTo(Succeed())
			_, err = c.GetConfigValue("nope.nope")
			Expect(err).To(HaveOccurred())
		})

		It("rejects non-numeric values for numeric keys", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("embedding.dimensions", "lots")).NotTo(Succeed())
		})

		It("lists every supported key", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ContainElements(
				"storage.provider",
				"api.listen",
				"embedding.model",
				"search.threshold",
				"events.topic",
			))
			for _, k := range keys {
				Expect(config.IsValidConfigKey(k)).To(BeTrue())
			}
		})
	})
})

var _ = Describe("InitViper", func() {
	It("applies precedence: env over file over defaults", func() {
		tmpDir := GinkgoT().TempDir()
		data := "[api]\nlisten = \":9090\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		GinkgoT().Setenv("MINIMART_EMBEDDING_MODEL", "embed-english-v3.0")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.API.Listen).To(Equal(":9090"))
		Expect(cfg.Embedding.Model).To(Equal("embed-english-v3.0"))
		Expect(cfg.Storage.Provider).To(Equal(config.NewDefaultConfig().Storage.Provider))
	})
})
