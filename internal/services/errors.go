// internal/services/errors.go
package services

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCollectionNotFound = errors.New("collection not found")
)
