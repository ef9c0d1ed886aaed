package storage

import (
	"errors"
	"strconv"
)

// NotFoundError is returned when no product row exists for an id.
type NotFoundError struct {
	ID int
}

func (e NotFoundError) Error() string {
	return "product not found: " + strconv.Itoa(e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
