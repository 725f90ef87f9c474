package repository

import "errors"

// ErrEmailExists is returned when registration collides with an
// already-registered email. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrTicketSold is returned when a purchase finds the ticket already
// sold, including the case where a concurrent buyer won the race
// between the read and the guarded update. Handlers translate this
// into HTTP 409; the losing caller's state is untouched.
var ErrTicketSold = errors.New("ticket already sold")
