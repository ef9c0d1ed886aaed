package eventstream

import "errors"

// ErrNilProductEvent indicates a nil product event payload was provided to a publisher.
var ErrNilProductEvent = errors.New("nil product event")
