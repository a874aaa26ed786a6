// Package domain holds shared domain types and sentinel errors.
package domain

import "errors"

// ErrInvalidSnapshot signals a cache snapshot that failed validation.
var ErrInvalidSnapshot = errors.New("invalid snapshot")
