// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to act on a resource owned by someone else, while
// ErrTimeConflict signals that a requested time range collides with
// an existing active reservation.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrTimeConflict is returned when a reservation cannot be created or
// re-activated because another active reservation overlaps its time
// range. Handlers should translate this into an HTTP 409 response.
var ErrTimeConflict = errors.New("room unavailable for this time range")

// ErrRoomNotFound is returned when a room cannot be found.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when a reservation cannot be
// found or is not visible to the caller.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrCPFExists is returned when registering with a CPF that is
// already taken.
var ErrCPFExists = errors.New("cpf already exists")
