// Package repository contains the data access layer, separated from HTTP
// handlers. Each entity gets a concrete repo over *sql.DB plus a not-found
// sentinel; the values below are shared across repositories so handlers can
// translate failures into fixed HTTP statuses.
package repository

import "errors"

// ErrConflict is returned when a write cannot proceed because of existing
// state, such as a captaincy that moved under a concurrent transfer.
// Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")
