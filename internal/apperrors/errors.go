package apperrors

import "errors"

// ErrBadRequest indicates the upstream source rejected the request as
// malformed. This points at a configuration or programming defect and is
// never retried.
var ErrBadRequest = errors.New("upstream rejected request")

// ErrUpstream indicates the upstream source failed in some other way
// (non-success status, timeout, transport failure).
var ErrUpstream = errors.New("upstream request failed")

// ErrConfig indicates required configuration is missing or invalid.
var ErrConfig = errors.New("invalid configuration")
