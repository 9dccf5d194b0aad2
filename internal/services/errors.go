package services

import "errors"

// ErrNotOwned is returned when a caller attempts to mutate a listing
// that belongs to a different user.
var ErrNotOwned = errors.New("listing not owned by caller")

// ErrUsernameTaken is returned when registering with a username that
// already exists.
var ErrUsernameTaken = errors.New("username already taken")

// ErrInvalidCredentials is returned when login credentials do not
// match a known user.
var ErrInvalidCredentials = errors.New("invalid credentials")
