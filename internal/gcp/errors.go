package gcp

import (
	"fmt"
	"gcpctl/internal/resource"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"net/http"
)

func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func IsAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

// Check marks provider 404 responses with resource.ErrNotFound and leaves every other
// error as it is.
func Check(err error) error {
	if err == nil || !IsNotFound(err) || resource.IsNotFound(err) {
		return err
	}
	return fmt.Errorf("%w: %w", resource.ErrNotFound, err)
}
