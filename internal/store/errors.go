package store

import "errors"

// ErrSignedOut is returned by actions that need a session user.
var ErrSignedOut = errors.New("not signed in")
