// Package api provides the HTTP API server for the product catalog.
package api

import (
	"github.com/minimartco/minimart/api/search"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// UploadDir is the directory product images are written to. It is also
	// served statically under /uploads.
	UploadDir string

	// Search tunes the search resolver. Zero values use the resolver defaults.
	Search search.Options
}
