package domain

import "errors"

// ErrDuplicate is returned by storage when a uniqueness constraint rejects
// an insert.
var ErrDuplicate = errors.New("duplicate record")
