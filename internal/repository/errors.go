// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrEventNotFound indicates a lookup miss on the events
// table, while ErrConflict signals that an operation cannot proceed
// due to existing dependent records (e.g. deleting an event that
// still has tickets).
package repository

import "errors"

// ErrPerformerNotFound indicates that a performer was not located in the DB.
var ErrPerformerNotFound = errors.New("performer not found")

// ErrEventNotFound indicates that an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketNotFound indicates that a ticket was not located in the DB.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete an event that still has tickets. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
