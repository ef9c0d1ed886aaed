package embeddings

import "errors"

// ErrUnavailable is returned when the embedding provider is unreachable or
// returns malformed output. Callers must treat it as fatal to the operation:
// a product write must not proceed with a missing embedding.
var ErrUnavailable = errors.New("embedding provider unavailable")
