package services

import (
	"errors"

	"github.com/otcheredev/hospital-visitor-access/internal/access"
)

var (
	// ErrMalformedPayload means the scanned data held no usable code
	ErrMalformedPayload = access.ErrMalformedPayload
	// ErrNotFound means the code or id does not resolve within the caller's hospital
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest means the request failed validation
	ErrInvalidRequest = errors.New("invalid request")
	// ErrScanConflict means the pass changed between decision and write; the scan may be retried
	ErrScanConflict = errors.New("guest pass was modified by a concurrent scan")
)
