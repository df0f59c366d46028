package resource

import (
	"github.com/pkg/errors"
)

// ErrNotFound is wrapped by Fetch implementations when the resource does not exist.
var ErrNotFound = errors.New("resource not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
