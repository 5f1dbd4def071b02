package models

import "errors"

// ErrValidation reports malformed or out-of-range input. Callers must fix the
// input; retrying the same values never succeeds.
var ErrValidation = errors.New("validation failed")
