package domain

import "errors"

// ErrTableNotFound is returned when dropping a table that does not exist.
var ErrTableNotFound = errors.New("table not found")
